package input_engine

import (
	"bytes"
	"iter"

	"github.com/google/uuid"

	"github.com/markdave123-py/fileinput/internal/core"
)

// Normalize maps every attempt to exactly one task, keeping order.
// Failed attempts become discarded tasks; nothing is dropped and no error
// escapes. The next attempt is pulled only after the current task was yielded.
func (f *FileInput) Normalize(source string, attempts iter.Seq[core.Attempt]) iter.Seq[core.Task] {
	return func(yield func(core.Task) bool) {
		pos := 0
		for a := range attempts {
			t := f.toTask(source, pos, a)
			pos++
			if !yield(t) {
				return
			}
		}
	}
}

func (f *FileInput) toTask(source string, pos int, a core.Attempt) core.Task {
	t := core.Task{
		ID:       uuid.NewString(),
		Source:   source,
		Position: pos,
		Name:     a.Input.Name,
	}

	if a.Err != nil {
		xe := core.AsExtractError(a.Err)
		t.Discarded = true
		t.Err = xe
		t.Data = bytes.NewReader(nil)

		f.log.Warn().
			Str("task_id", t.ID).
			Str("source", source).
			Int("position", pos).
			Str("name", t.Name).
			Str("kind", string(xe.Kind)).
			Err(xe).
			Msg("task discarded")
		return t
	}

	t.Data = bytes.NewReader(a.Input.Bytes)
	f.log.Debug().
		Str("task_id", t.ID).
		Str("source", source).
		Int("position", pos).
		Str("name", t.Name).
		Int("size", len(a.Input.Bytes)).
		Msg("task ready")
	return t
}
