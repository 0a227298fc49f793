package clean

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"aigency/internal/core"
)

// MinGraphPoints is the smallest number of data points worth charting.
const MinGraphPoints = 2

// dataKeys returns the label and value keys used by a chart type.
func dataKeys(t core.GraphType) (labels, values string) {
	if t == core.GraphScatter {
		return "x_vals", "y_vals"
	}
	return "labels", "values"
}

// Graph converts raw model output into a cleaned GraphSpec. Arrays encoded as strings
// are parsed and unparseable arrays count as empty.
func Graph(raw core.RawGraphSpec) core.GraphSpec {
	spec := core.GraphSpec{
		ShouldGenerate: raw.GenGraph,
		Type:           core.GraphType(strings.ToLower(strings.TrimSpace(raw.GraphType))),
		Title:          strings.TrimSpace(raw.GraphTitle),
		AxisLabels:     raw.AxisLabels,
	}
	if !spec.ShouldGenerate {
		return spec
	}
	if !spec.Type.Valid() || len(raw.GraphData) == 0 {
		spec.ShouldGenerate = false
		return spec
	}

	labelKey, valueKey := dataKeys(spec.Type)
	labels, _ := ParseList(raw.GraphData[labelKey])
	values, _ := ParseList(raw.GraphData[valueKey])

	data := &core.GraphData{}
	if spec.Type == core.GraphScatter {
		data.XVals = toNumbers(labels)
		data.YVals = toNumbers(values)
	} else {
		if spec.Type != core.GraphHistogram {
			data.Labels = toLabels(labels)
		}
		data.Values = toNumbers(values)
	}
	spec.Data = data

	return GraphData(spec)
}

// GraphData pairs labels with values and drops pairs whose value is missing.
// When fewer than MinGraphPoints pairs survive the chart is disabled and its data cleared.
// Histograms have no labels; only their missing values are dropped.
func GraphData(spec core.GraphSpec) core.GraphSpec {
	if !spec.ShouldGenerate || spec.Data == nil {
		return spec
	}

	data := &core.GraphData{}
	var points int

	switch spec.Type {
	case core.GraphHistogram:
		for _, v := range spec.Data.Values {
			if v != nil {
				data.Values = append(data.Values, v)
			}
		}
		points = len(data.Values)

	case core.GraphScatter:
		n := min(len(spec.Data.XVals), len(spec.Data.YVals))
		for i := 0; i < n; i++ {
			x, y := spec.Data.XVals[i], spec.Data.YVals[i]
			if x == nil || y == nil {
				continue
			}
			data.XVals = append(data.XVals, x)
			data.YVals = append(data.YVals, y)
		}
		points = len(data.YVals)

	default:
		n := min(len(spec.Data.Labels), len(spec.Data.Values))
		for i := 0; i < n; i++ {
			if spec.Data.Values[i] == nil {
				continue
			}
			data.Labels = append(data.Labels, spec.Data.Labels[i])
			data.Values = append(data.Values, spec.Data.Values[i])
		}
		points = len(data.Values)
	}

	if points < MinGraphPoints {
		spec.ShouldGenerate = false
		spec.Data = nil
		return spec
	}
	spec.Data = data
	return spec
}

// ParseList decodes a JSON array, or a string holding a JSON or Python-style list literal.
// JSON null and an empty string yield an empty list.
func ParseList(raw json.RawMessage) ([]any, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("graph data is neither a list nor a string: %w", err)
	}
	encoded = strings.TrimSpace(encoded)
	if encoded == "" || encoded == "None" || encoded == "null" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(encoded), &list); err == nil {
		return list, nil
	}
	return parseLiteralList(encoded)
}

func toLabels(items []any) []string {
	labels := make([]string, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case nil:
			labels[i] = ""
		case string:
			labels[i] = strings.TrimSpace(v)
		case float64:
			labels[i] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			labels[i] = fmt.Sprint(v)
		}
	}
	return labels
}

func toNumbers(items []any) []*float64 {
	values := make([]*float64, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case float64:
			f := v
			values[i] = &f
		case string:
			values[i] = parseNumber(v)
		}
	}
	return values
}

// parseNumber reads numbers written with a decimal comma, units or percent signs.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none", "null", "nan":
		return nil
	}
	s = strings.NewReplacer("%", "", "€", "", "$", "", " ", "", "\u00a0", "").Replace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
