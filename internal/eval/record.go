package eval

import (
	"context"

	"github.com/dolthub/nickelcfg/internal/cache"
	"github.com/dolthub/nickelcfg/internal/handle"
	"github.com/dolthub/nickelcfg/internal/term"
)

// Instance is a forced record together with the environment its fields
// must be read against. The merge core never builds one of these — it
// returns a RecRecord closure and leaves instantiation to whatever drives
// reduction (spec.md §1, §9).
type Instance struct {
	Record term.Record
	Env    term.Environment
}

// ForceRecord instantiates t (a RecRecord or an already-bare Record) into
// an Instance. This is where the recursive knot spec.md §9's design notes
// describe gets tied: every field merge installed its value's thunk into
// envFinal using whatever bindings existed at the point in the merge loop
// it ran, which for a left-only or right-only field may be missing
// siblings added later in the same loop. ForceRecord rebuilds the complete
// environment — every field name bound to its value's handle — in one
// pass over the finished field map, then patches each of those handles to
// it before any field is forced, so a field that recursively names another
// field of the same record always sees the merged value, never the
// operand it happened to come from.
func ForceRecord(ctx context.Context, store *cache.MemStore, t term.Term, env term.Environment) (Instance, error) {
	switch v := t.(type) {
	case term.Record:
		return Instance{Record: v, Env: env}, nil

	case term.RecRecord:
		recEnv := env
		var patch []handle.Idx

		v.Fields.Fields.Range(func(id term.Ident, f *term.Field) bool {
			if f.HasValue() {
				if ref, ok := f.Value.(term.Var); ok {
					if idx, ok := env.Lookup(ref.Ident); ok {
						recEnv = recEnv.Extend(id, idx)
						patch = append(patch, idx)
					}
				}
			}
			return true
		})

		for _, idx := range patch {
			store.Patch(idx, recEnv)
		}

		// Fields are still looked up through env: that is what maps a
		// field's own (possibly synthetic) value identifier to its handle.
		// recEnv is what gets patched into each of those handles so that,
		// once forced, a reference by plain field name inside the handle's
		// own body resolves against the merged record instead of the
		// operand it was reverted from.
		return Instance{Record: *v.Fields, Env: env}, nil
	}

	return Instance{}, errNotARecord{t}
}

// Field forces the named field's value against the instance's environment.
// It returns (nil, false, nil) for a declared-but-undefined field.
func (inst Instance) Field(ctx context.Context, store *cache.MemStore, name term.Ident) (term.Term, bool, error) {
	f, ok := inst.Record.Fields.Get(name)
	if !ok || !f.HasValue() {
		return nil, false, nil
	}
	v, err := Force(ctx, store, f.Value, inst.Env)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

type errNotARecord struct{ t term.Term }

func (e errNotARecord) Error() string {
	return "eval: cannot instantiate a non-record term as a record"
}
