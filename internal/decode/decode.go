// Package decode turns the generic interface{} trees a JSON, YAML or TOML
// unmarshaler produces into term.Term literals the merge core can operate
// on. Every value decode builds is a constant (spec.md §3's share-normal-
// form invariant): there is no notion of an unevaluated expression in a
// config file, so nothing here ever needs a cache handle of its own — that
// only starts once two decoded trees are merged and the field merger needs
// to defer or rebind a value (internal/eval/merge, internal/cache).
//
// Object keys become record fields in sorted order, not source order: a Go
// map has already lost the original ordering by the time Value sees it.
package decode

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/dolthub/nickelcfg/internal/term"
)

// Value converts v (typically the result of json.Unmarshal, yaml.Unmarshal
// or a toml.Decode into interface{}) into a term.Term.
func Value(pos term.Position, v interface{}) (term.Term, error) {
	switch x := v.(type) {
	case nil:
		return term.NewNull(pos), nil
	case bool:
		return term.NewBool(pos, x), nil
	case string:
		return term.NewStr(pos, x), nil
	case int:
		return term.NewNum(pos, float64(x)), nil
	case int64:
		return term.NewNum(pos, float64(x)), nil
	case float64:
		return term.NewNum(pos, x), nil
	case []interface{}:
		elems := make([]term.Term, len(x))
		for i, e := range x {
			et, err := Value(pos, e)
			if err != nil {
				return nil, errors.Wrapf(err, "array element %d", i)
			}
			elems[i] = et
		}
		return term.NewArray(pos, elems), nil
	case map[string]interface{}:
		return record(pos, x)
	case map[interface{}]interface{}:
		// gopkg.in/yaml.v2 decodes mappings into this shape rather than
		// map[string]interface{}.
		strMap := make(map[string]interface{}, len(x))
		for k, val := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, errors.Errorf("non-string config key %v (%T)", k, k)
			}
			strMap[ks] = val
		}
		return record(pos, strMap)
	default:
		return nil, errors.Errorf("cannot decode value of type %T into a term", v)
	}
}

func record(pos term.Position, m map[string]interface{}) (term.Term, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := term.NewOrderedFields()
	for _, k := range keys {
		ft, err := Value(pos, m[k])
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", k)
		}
		fields.Set(term.Ident(k), &term.Field{
			Metadata: term.Metadata{Priority: term.NeutralPriority},
			Value:    ft,
		})
	}
	return term.NewRecord(pos, fields, term.Attrs{Open: true}), nil
}

// MustRecord is a convenience for callers that already know the decoded
// root is an object; it errors out rather than panicking if it is not.
func MustRecord(pos term.Position, v interface{}) (term.Record, error) {
	t, err := Value(pos, v)
	if err != nil {
		return term.Record{}, err
	}
	r, ok := t.(term.Record)
	if !ok {
		return term.Record{}, fmt.Errorf("decode: root value is %T, not an object", t)
	}
	return r, nil
}
