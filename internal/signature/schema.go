package signature

import (
	"aigency/internal/core"

	"google.golang.org/genai"
)

func listSchema(field, description string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			field: {
				Type:        genai.TypeArray,
				Description: description,
				Items: &genai.Schema{
					Type: genai.TypeString,
				},
			},
		},
		Required: []string{field},
	}
}

func stringSchema(field, description string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			field: {
				Type:        genai.TypeString,
				Description: description,
			},
		},
		Required: []string{field},
	}
}

func graphSchema() *genai.Schema {
	graphTypes := make([]string, len(core.GraphTypes))
	for i, t := range core.GraphTypes {
		graphTypes[i] = string(t)
	}

	numbers := &genai.Schema{
		Type:     genai.TypeArray,
		Nullable: genai.Ptr(true),
		Items: &genai.Schema{
			Type:     genai.TypeNumber,
			Nullable: genai.Ptr(true),
		},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"gen_graph": {
				Type:        genai.TypeBoolean,
				Description: "Whether an interpretable chart can be built from the article",
			},
			"graph_type": {
				Type:     genai.TypeString,
				Enum:     graphTypes,
				Nullable: genai.Ptr(true),
			},
			"graph_title": {
				Type:     genai.TypeString,
				Nullable: genai.Ptr(true),
			},
			"graph_axis_labels": {
				Type:     genai.TypeObject,
				Nullable: genai.Ptr(true),
				Properties: map[string]*genai.Schema{
					"x_axis": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
					"y_axis": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
				},
			},
			"graph_data": {
				Type:     genai.TypeObject,
				Nullable: genai.Ptr(true),
				Properties: map[string]*genai.Schema{
					"labels": {
						Type:     genai.TypeArray,
						Nullable: genai.Ptr(true),
						Items:    &genai.Schema{Type: genai.TypeString},
					},
					"values": numbers,
					"x_vals": numbers,
					"y_vals": numbers,
				},
			},
		},
		Required:         []string{"gen_graph"},
		PropertyOrdering: []string{"gen_graph", "graph_type", "graph_title", "graph_axis_labels", "graph_data"},
	}
}
