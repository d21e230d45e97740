package manifest

// Merge returns base with override layered on top. Arrays concatenate,
// non-empty strings replace, objects merge key by key. Any other value
// already present in base is kept, and keys missing from base take the
// override. Neither argument is modified; untouched subtrees are shared.
func Merge(base, override any) any {
	switch b := base.(type) {
	case nil:
		return clone(override)
	case []any:
		o, ok := override.([]any)
		if !ok {
			return b
		}
		out := make([]any, 0, len(b)+len(o))
		out = append(out, b...)
		for _, v := range o {
			out = append(out, clone(v))
		}
		return out
	case string:
		if o, ok := override.(string); ok && o != "" {
			return o
		}
		return b
	case map[string]any:
		o, ok := override.(map[string]any)
		if !ok {
			return b
		}
		out := make(map[string]any, len(b)+len(o))
		for k, v := range b {
			out[k] = v
		}
		for k, v := range o {
			out[k] = Merge(b[k], v)
		}
		return out
	case Table:
		return Table(Merge(map[string]any(b), asObject(override)).(map[string]any))
	default:
		return base
	}
}

// MergeTable merges an override table into base.
func MergeTable(base, override Table) Table {
	if base == nil {
		base = Table{}
	}
	return Table(Merge(map[string]any(base), map[string]any(override)).(map[string]any))
}

// AssignTable overwrites base entries with override entries, one level deep.
func AssignTable(base, override Table) Table {
	out := make(Table, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = clone(v)
	}
	return out
}

func asObject(v any) any {
	if t, ok := v.(Table); ok {
		return map[string]any(t)
	}
	return v
}

func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = clone(val)
		}
		return out
	case Table:
		return Table(clone(map[string]any(t)).(map[string]any))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = clone(val)
		}
		return out
	default:
		return v
	}
}

func object(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Table:
		return map[string]any(t), true
	}
	return nil, false
}

func copyObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
