// Package parser decodes Copilot chat exports into model values.
//
// Only the root of the document is strict: it must be a JSON object with a
// string responderUsername and a requests array. Everything below it is read
// through tolerant path lookups, so absent or mistyped fields fall back to
// zero values instead of failing the document.
package parser

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/whee/cp2md/internal/model"
)

// ErrMalformed is returned when the document is not JSON or its root lacks
// the required fields.
var ErrMalformed = errors.New("malformed chat export")

// Decode parses one chat export document.
func Decode(raw string) (*model.Conversation, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	root := gjson.Parse(raw)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: root is not an object", ErrMalformed)
	}

	responder, ok := str(root, "responderUsername")
	if !ok {
		return nil, fmt.Errorf("%w: responderUsername missing or not a string", ErrMalformed)
	}

	requests := lookup(root, "requests")
	if !requests.IsArray() {
		return nil, fmt.Errorf("%w: requests missing or not an array", ErrMalformed)
	}

	items := requests.Array()
	conv := &model.Conversation{
		ResponderName: responder,
		Exchanges:     make([]model.Exchange, 0, len(items)),
	}
	for _, item := range items {
		conv.Exchanges = append(conv.Exchanges, decodeExchange(item))
	}

	return conv, nil
}

// ReadFile loads and decodes the export stored at path.
func ReadFile(path string) (*model.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	conv, err := Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return conv, nil
}
