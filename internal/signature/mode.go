package signature

import (
	"errors"
	"strings"

	"aigency/internal/core"
)

// ModeKind distinguishes the ways a content kind can be generated.
type ModeKind int

const (
	ModeFresh ModeKind = iota
	ModeRegenerate
	ModeAugmented
	ModeRegenerateAugmented
)

func (k ModeKind) String() string {
	switch k {
	case ModeRegenerate:
		return "regenerate"
	case ModeAugmented:
		return "augmented"
	case ModeRegenerateAugmented:
		return "regenerate+augmented"
	default:
		return "fresh"
	}
}

// Mode is chosen by the caller: a fresh generation, a regeneration against prior output,
// an augmented generation with research text, or both.
type Mode struct {
	kind    ModeKind
	prior   []string
	augment string
}

// Fresh generates without priors or augmentation.
func Fresh() Mode { return Mode{kind: ModeFresh} }

// Regenerate asks for output that differs from prior.
func Regenerate(prior ...string) Mode {
	return Mode{kind: ModeRegenerate, prior: nonEmpty(prior)}
}

// Augmented threads research text into generation as a secondary source.
func Augmented(text string) Mode {
	return Mode{kind: ModeAugmented, augment: text}
}

// RegenerateAugmented combines both. No content kind supports it.
func RegenerateAugmented(text string, prior ...string) Mode {
	return Mode{kind: ModeRegenerateAugmented, prior: nonEmpty(prior), augment: text}
}

// ModeFor maps optional request fields to a Mode. Blank values count as absent.
func ModeFor(prior []string, augment string) Mode {
	prior = nonEmpty(prior)
	augment = strings.TrimSpace(augment)
	switch {
	case len(prior) > 0 && augment != "":
		return RegenerateAugmented(augment, prior...)
	case augment != "":
		return Augmented(augment)
	case len(prior) > 0:
		return Regenerate(prior...)
	default:
		return Fresh()
	}
}

func (m Mode) Kind() ModeKind       { return m.kind }
func (m Mode) Prior() []string      { return m.prior }
func (m Mode) Augmentation() string { return m.augment }
func (m Mode) IsAugmented() bool    { return m.kind == ModeAugmented || m.kind == ModeRegenerateAugmented }
func (m Mode) IsRegeneration() bool {
	return m.kind == ModeRegenerate || m.kind == ModeRegenerateAugmented
}

// Variant is the concrete prompt family used for a generation.
type Variant int

const (
	VariantGenerate Variant = iota
	VariantRegenerate
	VariantAugmentedGenerate
)

func (v Variant) String() string {
	switch v {
	case VariantRegenerate:
		return "regenerate"
	case VariantAugmentedGenerate:
		return "augmented_generate"
	default:
		return "generate"
	}
}

// ErrMissingPrior is returned when a regeneration is requested without prior output.
var ErrMissingPrior = errors.New("regenerate mode requires prior output")

// SelectVariant resolves the variant for a kind and mode.
func SelectVariant(kind Kind, m Mode) (Variant, error) {
	switch m.kind {
	case ModeRegenerateAugmented:
		return 0, &core.UnsupportedCombinationError{Kind: string(kind), Mode: m.kind.String()}
	case ModeAugmented:
		if !kind.supportsAugmentation() {
			return 0, &core.UnsupportedCombinationError{Kind: string(kind), Mode: m.kind.String()}
		}
		return VariantAugmentedGenerate, nil
	case ModeRegenerate:
		if !kind.supportsRegeneration() {
			return 0, &core.UnsupportedCombinationError{Kind: string(kind), Mode: m.kind.String()}
		}
		if len(m.prior) == 0 {
			return 0, ErrMissingPrior
		}
		return VariantRegenerate, nil
	default:
		return VariantGenerate, nil
	}
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
