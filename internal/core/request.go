package core

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
)

// ErrBodyTooLarge is returned by RequestFromHTTP when the body exceeds the limit.
var ErrBodyTooLarge = errors.New("request body too large")

// Header is one name/value pair, in the order the request carried it.
type Header struct {
	Name  string
	Value string
}

// HTTPRequest is everything the HTTP adapter reads from a request.
type HTTPRequest interface {
	Headers() []Header
	Body() []byte
}

// Request is a plain HTTPRequest value.
type Request struct {
	HeaderList []Header
	Payload    []byte
}

var _ HTTPRequest = (*Request)(nil)

func NewRequest(headers []Header, body []byte) *Request {
	return &Request{HeaderList: headers, Payload: body}
}

func (r *Request) Headers() []Header {
	if r == nil {
		return nil
	}
	return r.HeaderList
}

func (r *Request) Body() []byte {
	if r == nil {
		return nil
	}
	return r.Payload
}

// RequestFromHTTP snapshots a net/http request. Header names are sorted since
// http.Header does not keep arrival order; values of one name keep theirs.
// A maxBytes of zero or less disables the size limit.
func RequestFromHTTP(r *http.Request, maxBytes int64) (*Request, error) {
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	headers := make([]Header, 0, len(names))
	for _, name := range names {
		for _, v := range r.Header[name] {
			headers = append(headers, Header{Name: name, Value: v})
		}
	}

	if r.Body == nil || r.Body == http.NoBody {
		return NewRequest(headers, nil), nil
	}

	var body io.Reader = r.Body
	if maxBytes > 0 {
		body = io.LimitReader(r.Body, maxBytes+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if maxBytes > 0 && int64(len(b)) > maxBytes {
		return nil, ErrBodyTooLarge
	}
	return NewRequest(headers, b), nil
}
