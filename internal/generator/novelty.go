package generator

import (
	"context"
	"strings"

	"aigency/internal/llm"
	"aigency/internal/signature"
)

// checkNovelty compares a regenerated output with its prior and logs a warning when they
// are too similar. It never fails the stage.
func (g *Generator) checkNovelty(ctx context.Context, kind signature.Kind, mode signature.Mode, output ...string) {
	if g.embedder == nil || g.config.NoveltyThreshold <= 0 || !mode.IsRegeneration() {
		return
	}

	similarity, err := g.similarity(ctx, strings.Join(mode.Prior(), "\n"), strings.Join(output, "\n"))
	if err != nil {
		g.log.DebugContext(ctx, "novelty check skipped", "stage", kind, "error", err.Error())
		return
	}
	if similarity >= g.config.NoveltyThreshold {
		g.log.WarnContext(ctx, "regenerated output is close to the prior output",
			"stage", kind, "similarity", similarity, "threshold", g.config.NoveltyThreshold)
	}
}

func (g *Generator) similarity(ctx context.Context, a, b string) (float64, error) {
	ea, err := g.embedder.GenerateEmbedding(ctx, a)
	if err != nil {
		return 0, err
	}
	eb, err := g.embedder.GenerateEmbedding(ctx, b)
	if err != nil {
		return 0, err
	}
	return llm.CosineSimilarity(ea, eb), nil
}
