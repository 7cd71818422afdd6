package input_engine

import (
	"io"
	"iter"
	"os"
	"strings"

	"github.com/markdave123-py/fileinput/internal/core"
)

const inputFileFlag = "--input-file"

// ParseInputFiles collects the --input-file values from args in order.
//
// Accepted forms:
//
//	--input-file a b c          every following argument up to the next flag
//	--input-file a --input-file b
//	--input-file=a
//
// A bare "--" stops collection. Other arguments are ignored.
func ParseInputFiles(args []string) []string {
	var (
		paths      []string
		collecting bool
	)
	for _, arg := range args {
		switch {
		case arg == inputFileFlag:
			collecting = true
		case strings.HasPrefix(arg, inputFileFlag+"="):
			paths = append(paths, strings.TrimPrefix(arg, inputFileFlag+"="))
			collecting = false
		case strings.HasPrefix(arg, "-"):
			collecting = false
		case collecting:
			paths = append(paths, arg)
		}
	}
	return paths
}

func cliAttempts(paths []string) iter.Seq[core.Attempt] {
	return func(yield func(core.Attempt) bool) {
		for _, p := range paths {
			if !yield(readInputFile(p)) {
				return
			}
		}
	}
}

func readInputFile(path string) core.Attempt {
	b, err := readFile(path)
	if err != nil {
		return core.Failed(path, core.NewExtractError(core.KindPathUnreadable, err, "cannot read input file %q", path))
	}
	return core.Succeeded(path, b)
}

// readFile opens, reads and closes path; the handle never outlives the call.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
