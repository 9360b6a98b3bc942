package scoring

import (
	"strconv"
	"strings"
)

// Payload mapping blocks arrive raw, in author-chosen shapes, same as the
// weight tables. The two normalizers here coerce them once, at engine build
// time; nothing downstream ever touches the raw forms.

// NormalizeFuncMeta overlays authored function metadata onto the canonical
// eight-entry table. The canonical indices are fixed; authors override keys,
// names and descriptions, never positions.
//
// Accepted shapes: a list (position is the dimension index; strings override
// the name, objects override {key, name, description}) or a map keyed by
// canonical function key or numeric index.
func NormalizeFuncMeta(raw any) []FuncMeta {
	out := DefaultFuncMeta()
	switch t := coerce(raw).(type) {
	case []any:
		for i, el := range t {
			if i >= NumDims {
				break
			}
			overlayFuncMeta(&out[i], el)
		}
	case map[string]any:
		idx := KeyIndex(out)
		for k, el := range t {
			i, ok := funcMetaIndex(idx, k)
			if !ok {
				continue
			}
			overlayFuncMeta(&out[i], el)
		}
	}
	return out
}

func funcMetaIndex(idx map[string]int, key string) (int, bool) {
	if i, ok := ResolveDim(idx, key); ok {
		return i, true
	}
	i, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || i < 0 || i >= NumDims {
		return 0, false
	}
	return i, true
}

func overlayFuncMeta(meta *FuncMeta, el any) {
	switch v := coerce(el).(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			meta.Name = s
		}
	case map[string]any:
		if s, ok := stringField(v, "key"); ok {
			meta.Key = s
		}
		if s, ok := stringField(v, "name"); ok {
			meta.Name = s
		}
		if s, ok := stringField(v, "description", "desc"); ok {
			meta.Description = s
		}
	}
}

// NormalizeTypeMap coerces authored type-mapping data into the resolver's
// tables. A shape that is not an object yields the zero TypeMap, which just
// means only the heuristic tier is reachable.
func NormalizeTypeMap(raw any) TypeMap {
	m, ok := asMap(coerce(raw))
	if !ok {
		return TypeMap{}
	}
	tm := TypeMap{}

	if pairs, ok := asMap(coerce(m["pairs"])); ok {
		tm.Pairs = make(map[string]TypeInfo, len(pairs))
		for k, v := range pairs {
			if info, ok := typeInfoFrom(v); ok {
				tm.Pairs[canonPairKey(k)] = info
			}
		}
	}
	if dom, ok := asMap(coerce(m["dominant"])); ok {
		tm.Dominant = make(map[string]TypeInfo, len(dom))
		for k, v := range dom {
			if info, ok := typeInfoFrom(v); ok {
				tm.Dominant[strings.ToLower(strings.TrimSpace(k))] = info
			}
		}
	}
	if rules, ok := coerce(m["rules"]).([]any); ok {
		for _, el := range rules {
			r, ok := asMap(coerce(el))
			if !ok {
				continue
			}
			info, ok := typeInfoFrom(el)
			if !ok {
				continue
			}
			rule := TypeRule{Info: info}
			if s, ok := stringField(r, "dominant", "dom"); ok {
				rule.Dominant = s
			}
			if s, ok := stringField(r, "auxiliary", "aux"); ok {
				rule.Auxiliary = s
			}
			tm.Rules = append(tm.Rules, rule)
		}
	}
	return tm
}

// typeInfoFrom accepts a bare code string or a {code, name, description}
// object. Entries with no code are dropped: a type the resolver cannot name
// is useless.
func typeInfoFrom(v any) (TypeInfo, bool) {
	switch t := coerce(v).(type) {
	case string:
		s := strings.TrimSpace(t)
		return TypeInfo{Code: s}, s != ""
	case map[string]any:
		var info TypeInfo
		if s, ok := stringField(t, "code", "type"); ok {
			info.Code = s
		}
		if s, ok := stringField(t, "name"); ok {
			info.Name = s
		}
		if s, ok := stringField(t, "description", "desc"); ok {
			info.Description = s
		}
		return info, info.Code != ""
	default:
		return TypeInfo{}, false
	}
}

func stringField(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s, true
			}
		}
	}
	return "", false
}
