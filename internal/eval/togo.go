package eval

import (
	"context"
	"fmt"

	"github.com/dolthub/nickelcfg/internal/cache"
	"github.com/dolthub/nickelcfg/internal/term"
)

// ToGo deep-forces t and converts it to plain Go data (map[string]any,
// []any, string, float64, bool, nil) suitable for a JSON/YAML/TOML
// encoder. It is the bridge cmd/mergecfg uses to print a merged
// configuration: the merge core and this package's Force never produce Go
// native values, only term.Term.
func ToGo(ctx context.Context, store *cache.MemStore, t term.Term, env term.Environment) (interface{}, error) {
	v, err := Force(ctx, store, t, env)
	if err != nil {
		return nil, err
	}

	switch val := v.(type) {
	case term.Null:
		return nil, nil
	case term.Bool:
		return val.Value, nil
	case term.Num:
		return val.Value, nil
	case term.Str:
		return val.Value, nil
	case term.EnumTag:
		return val.Tag, nil
	case term.Array:
		out := make([]interface{}, len(val.Elems))
		for i, e := range val.Elems {
			gv, err := ToGo(ctx, store, e, env)
			if err != nil {
				return nil, err
			}
			out[i] = gv
		}
		return out, nil
	case term.Record, term.RecRecord:
		inst, err := ForceRecord(ctx, store, val, env)
		if err != nil {
			return nil, err
		}
		out := make(map[string]interface{}, inst.Record.Fields.Len())
		var rerr error
		inst.Record.Fields.Range(func(id term.Ident, f *term.Field) bool {
			if !f.HasValue() {
				return true
			}
			conv, err := ToGo(ctx, store, f.Value, inst.Env)
			if err != nil {
				rerr = err
				return false
			}
			out[string(id)] = conv
			return true
		})
		if rerr != nil {
			return nil, rerr
		}
		return out, nil
	}

	return nil, fmt.Errorf("eval: cannot convert %T to a Go value", v)
}
