package input_engine

import (
	"io"
	"iter"
	"slices"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/fileinput/internal/core"
)

var binContent = []byte("\x810\x899")

func newTestInput() *FileInput {
	return NewFileInput(zerolog.Nop())
}

func collect(seq iter.Seq[core.Task]) []core.Task {
	return slices.Collect(seq)
}

func readTask(t *testing.T, task core.Task) []byte {
	t.Helper()
	require.False(t, task.IsDiscarded(), "task discarded: %v", task.Err)
	b, err := io.ReadAll(task.Data)
	require.NoError(t, err)
	return b
}
