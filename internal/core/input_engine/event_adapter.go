package input_engine

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode"

	"github.com/markdave123-py/fileinput/internal/core"
)

// Event is one serverless event. Only "body" (and "isBase64Encoded" when
// present) is read; other keys are ignored.
type Event map[string]any

var errNotText = errors.New("body is not text")

func eventAttempts(events []Event) iter.Seq[core.Attempt] {
	return func(yield func(core.Attempt) bool) {
		for i, ev := range events {
			if !yield(decodeEvent(i, ev)) {
				return
			}
		}
	}
}

func decodeEvent(i int, ev Event) core.Attempt {
	name := fmt.Sprintf("event[%d]", i)

	body, ok := ev["body"]
	if !ok || body == nil {
		return core.Failed(name, core.NewExtractError(core.KindMalformedPayload, nil, "event has no body"))
	}

	// Gateways flag plain-text bodies explicitly; those are the payload as is.
	if encoded, ok := ev["isBase64Encoded"].(bool); ok && !encoded {
		if s, ok := body.(string); ok {
			return nonEmpty(name, []byte(s))
		}
	}

	b, err := decodeBody(body)
	if err != nil {
		return core.Failed(name, core.NewExtractError(core.KindMalformedPayload, err, "cannot decode event body"))
	}
	return nonEmpty(name, b)
}

func nonEmpty(name string, b []byte) core.Attempt {
	if len(b) == 0 {
		return core.Failed(name, core.NewExtractError(core.KindMissingFile, nil, "event body is empty"))
	}
	return core.Succeeded(name, b)
}

// decodeBody decodes a base64 body in two steps: as text first, then, only if
// the body was not text at all, through its byte representation.
func decodeBody(body any) ([]byte, error) {
	b, err := decodeTextBody(body)
	if errors.Is(err, errNotText) {
		return decodeBytesBody(body)
	}
	return b, err
}

func decodeTextBody(body any) ([]byte, error) {
	s, ok := body.(string)
	if !ok {
		return nil, errNotText
	}
	return decodeBase64(s)
}

func decodeBytesBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case json.RawMessage:
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, fmt.Errorf("raw body is not a JSON string: %w", err)
		}
		return decodeBase64(s)
	case []byte:
		return decodeBase64(string(v))
	default:
		return nil, fmt.Errorf("unsupported body type %T", body)
	}
}

// decodeBase64 ignores whitespace so MIME-wrapped encodings decode too.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return base64.StdEncoding.DecodeString(s)
}

// DecodeEvents reads either a JSON array of events or a single event object.
func DecodeEvents(r io.Reader) ([]Event, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("no events")
	}

	if raw[0] == '[' {
		var events []Event
		if err := json.Unmarshal(raw, &events); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
		return events, nil
	}

	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return []Event{ev}, nil
}
