// internal/workers/headline/normalize-input/source.go
package normalizeinput

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	apperrors "headline-agent/internal/common/errors"
)

// A body source is any value implementing at least one of the capability
// interfaces below. Extractors are tried in order: parsed, stream, events.

// ParsedSource exposes a body that an earlier layer already decoded.
type ParsedSource interface {
	ParsedBody() (interface{}, bool)
}

// StreamSource exposes the raw body as a byte stream.
type StreamSource interface {
	BodyReader() (io.Reader, bool)
}

// EventSource pushes the body in chunks. The channel is closed after the last chunk.
type EventSource interface {
	BodyEvents() (<-chan BodyEvent, bool)
}

// BodyEvent is one pushed chunk. A non-nil Err aborts the read.
type BodyEvent struct {
	Data []byte
	Err  error
}

// ==========================
// Adapters
// ==========================

type requestSource struct{ r *http.Request }

// FromRequest adapts an inbound HTTP request.
func FromRequest(r *http.Request) interface{} {
	return requestSource{r: r}
}

func (s requestSource) BodyReader() (io.Reader, bool) {
	if s.r == nil || s.r.Body == nil || s.r.Body == http.NoBody {
		return nil, false
	}
	return s.r.Body, true
}

type bytesSource []byte

// FromBytes adapts a raw body.
func FromBytes(b []byte) interface{} {
	return bytesSource(b)
}

func (s bytesSource) BodyReader() (io.Reader, bool) {
	return bytes.NewReader(s), true
}

type valueSource struct{ v interface{} }

// FromValue adapts already-decoded data: a string prompt, a map, a struct or raw JSON bytes.
func FromValue(v interface{}) interface{} {
	return valueSource{v: v}
}

func (s valueSource) ParsedBody() (interface{}, bool) {
	return s.v, s.v != nil
}

type eventSource struct{ ch <-chan BodyEvent }

// FromEvents adapts a push-style chunk stream.
func FromEvents(ch <-chan BodyEvent) interface{} {
	return eventSource{ch: ch}
}

func (s eventSource) BodyEvents() (<-chan BodyEvent, bool) {
	return s.ch, s.ch != nil
}

// ==========================
// Extraction
// ==========================

// errUnparseable marks content that an extractor could read but not decode.
// It lets the next extractor have a go.
var errUnparseable = errors.New("unparseable body")

// payload is a decoded body plus the JSON text it came from. raw is nil for
// a bare text prompt.
type payload struct {
	value interface{}
	raw   []byte
}

type extractor struct {
	name    string
	extract func(ctx context.Context, src interface{}) (payload, bool, error)
}

var extractors = []extractor{
	{name: "parsed", extract: extractParsed},
	{name: "stream", extract: extractStream},
	{name: "events", extract: extractEvents},
}

// extractBody returns the decoded body and the name of the extractor that produced it.
func extractBody(ctx context.Context, src interface{}) (payload, string, error) {
	var reasons []string
	for _, ex := range extractors {
		body, applicable, err := ex.extract(ctx, src)
		if !applicable {
			continue
		}
		if err == nil {
			return body, ex.name, nil
		}
		if errors.Is(err, errUnparseable) {
			reasons = append(reasons, fmt.Sprintf("%s: %v", ex.name, err))
			continue
		}
		return payload{}, ex.name, apperrors.NewMalformedBodyReadError(err)
	}

	if len(reasons) == 0 {
		return payload{}, "", apperrors.NewMalformedBodyError("request has no body")
	}
	return payload{}, "", apperrors.NewMalformedBodyError(strings.Join(reasons, "; "))
}

func extractParsed(_ context.Context, src interface{}) (payload, bool, error) {
	ps, ok := src.(ParsedSource)
	if !ok {
		return payload{}, false, nil
	}
	v, ok := ps.ParsedBody()
	if !ok {
		return payload{}, false, nil
	}

	switch val := v.(type) {
	case []byte:
		body, err := decodeBytes(val)
		return body, true, err
	case json.RawMessage:
		body, err := decodeBytes(val)
		return body, true, err
	case string:
		return payload{value: val}, true, nil
	}

	// Round-trip so ids and numbers look the same as on the byte path.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return payload{}, true, fmt.Errorf("%w: %v", errUnparseable, err)
	}
	body, err := decodeJSON(bytes.TrimSpace(buf.Bytes()))
	return body, true, err
}

func extractStream(_ context.Context, src interface{}) (payload, bool, error) {
	ss, ok := src.(StreamSource)
	if !ok {
		return payload{}, false, nil
	}
	r, ok := ss.BodyReader()
	if !ok {
		return payload{}, false, nil
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return payload{}, true, err
	}
	body, err := decodeBytes(raw)
	return body, true, err
}

func extractEvents(ctx context.Context, src interface{}) (payload, bool, error) {
	es, ok := src.(EventSource)
	if !ok {
		return payload{}, false, nil
	}
	ch, ok := es.BodyEvents()
	if !ok {
		return payload{}, false, nil
	}

	var buf bytes.Buffer
	for {
		select {
		case <-ctx.Done():
			return payload{}, true, ctx.Err()
		case ev, open := <-ch:
			if !open {
				body, err := decodeBytes(buf.Bytes())
				return body, true, err
			}
			if ev.Err != nil {
				return payload{}, true, ev.Err
			}
			buf.Write(ev.Data)
		}
	}
}

// decodeBytes turns raw body bytes into a JSON value or a bare text prompt.
func decodeBytes(b []byte) (payload, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return payload{}, fmt.Errorf("%w: empty body", errUnparseable)
	}
	if !utf8.Valid(trimmed) {
		return payload{}, fmt.Errorf("%w: body is not valid UTF-8", errUnparseable)
	}

	switch trimmed[0] {
	case '"':
		return decodeJSON(trimmed)
	case '{', '[':
		body, err := decodeJSON(trimmed)
		if err != nil && !looksLikeJSON(trimmed) {
			// "[Hiring] ..." or "{Draft} ..." is a prompt, not broken JSON.
			return payload{value: string(trimmed)}, nil
		}
		return body, err
	}
	if json.Valid(trimmed) {
		return decodeJSON(trimmed)
	}
	return payload{value: string(trimmed)}, nil
}

// looksLikeJSON reports whether the byte after an opening brace or bracket
// can start a JSON object member or array element worth reporting as broken.
func looksLikeJSON(b []byte) bool {
	rest := bytes.TrimLeft(b[1:], " \t\r\n")
	if len(rest) == 0 {
		return true
	}
	switch rest[0] {
	case '"', ']', '}', '[', '{':
		return true
	}
	return false
}

func decodeJSON(b []byte) (payload, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return payload{}, fmt.Errorf("%w: invalid JSON: %v", errUnparseable, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return payload{}, fmt.Errorf("%w: trailing data after JSON value", errUnparseable)
	}
	return payload{value: v, raw: b}, nil
}
