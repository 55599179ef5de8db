package cache

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dolthub/nickelcfg/internal/handle"
	"github.com/dolthub/nickelcfg/internal/term"
)

// Recorder wraps a Store and appends a JSON-lines trace of every
// add/revert/saturate call, tagged with a per-session uuid, for offline
// debugging of a merge sequence. It is a SPEC_FULL addition exercising
// google/uuid and the evaluator's logging idiom; the merge core only ever
// depends on the plain Store interface, so wrapping a Store in a Recorder
// is invisible to it.
type Recorder struct {
	Store
	session uuid.UUID
	out     io.Writer
	log     *logrus.Entry
}

// NewRecorder wraps store, writing one JSON object per cache operation to
// out and logging each operation at debug level through log.
func NewRecorder(store Store, out io.Writer, log *logrus.Logger) *Recorder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	session := uuid.New()
	return &Recorder{
		Store:   store,
		session: session,
		out:     out,
		log:     log.WithField("session", session.String()),
	}
}

type traceEvent struct {
	Session string `json:"session"`
	Op      string `json:"op"`
	Idx     uint64 `json:"idx"`
	Keys    int    `json:"keys,omitempty"`
}

func (r *Recorder) emit(ev traceEvent) {
	ev.Session = r.session.String()
	if r.out != nil {
		if b, err := json.Marshal(ev); err == nil {
			r.out.Write(append(b, '\n'))
		}
	}
	r.log.WithFields(logrus.Fields{"op": ev.Op, "idx": ev.Idx}).Debug("cache op")
}

func (r *Recorder) Add(closure Closure, kind BindingKind, bt BindingType) handle.Idx {
	idx := r.Store.Add(closure, kind, bt)
	r.emit(traceEvent{Op: "add", Idx: uint64(idx)})
	return idx
}

func (r *Recorder) Revert(idx handle.Idx) (handle.Idx, error) {
	fresh, err := r.Store.Revert(idx)
	if err == nil {
		r.emit(traceEvent{Op: "revert", Idx: uint64(fresh)})
	}
	return fresh, err
}

func (r *Recorder) Saturate(idx handle.Idx, env term.Environment, keys []term.Ident) (term.Term, error) {
	t, err := r.Store.Saturate(idx, env, keys)
	if err == nil {
		r.emit(traceEvent{Op: "saturate", Idx: uint64(idx), Keys: len(keys)})
	}
	return t, err
}
