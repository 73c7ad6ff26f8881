package canon

import (
	"fmt"

	"github.com/thiremani/cvxsym/types"
)

// ExpandParams flattens parameter values into one binding per element.
// Scalars bind to name; a list binds name[i][0]; a list of lists binds
// name[i][j]. Values are the shapes produced by decoding YAML or JSON.
func ExpandParams(raw map[string]any) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for name, v := range raw {
		if err := expandValue(out, name, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func expandValue(out map[string]float64, name string, v any) error {
	if f, ok := toFloat(v); ok {
		out[name] = f
		return nil
	}
	rows, ok := toList(v)
	if !ok {
		return fmt.Errorf("canon: parameter %s: unsupported value %T", name, v)
	}
	for i, row := range rows {
		if f, ok := toFloat(row); ok {
			out[name+types.Index{Row: i}.String()] = f
			continue
		}
		cols, ok := toList(row)
		if !ok {
			return fmt.Errorf("canon: parameter %s row %d: unsupported value %T", name, i, row)
		}
		for j, el := range cols {
			f, ok := toFloat(el)
			if !ok {
				return fmt.Errorf("canon: parameter %s%s: unsupported value %T", name, types.Index{Row: i, Col: j}, el)
			}
			out[name+types.Index{Row: i, Col: j}.String()] = f
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func toList(v any) ([]any, bool) {
	switch v := v.(type) {
	case []any:
		return v, true
	case []float64:
		out := make([]any, len(v))
		for i, f := range v {
			out[i] = f
		}
		return out, true
	case [][]float64:
		out := make([]any, len(v))
		for i, row := range v {
			out[i] = row
		}
		return out, true
	}
	return nil, false
}
