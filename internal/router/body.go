package router

import (
	"encoding/base64"
	"unicode/utf8"

	"github.com/segmentio/encoding/json"
)

// Body is the parsed form of a request body
type Body struct {
	Present bool   // false only for the explicit no-body value
	JSON    bool   // Value was decoded from JSON
	Value   any    // decoded JSON value, or Raw when the body is not JSON
	Raw     string // body text after transport decoding
}

// NoBody is the value returned when the request carries no body.
// It is distinct from a body holding an empty JSON object.
var NoBody = Body{}

// Object returns the body as a JSON object, if it is one
func (b Body) Object() (map[string]any, bool) {
	if !b.JSON {
		return nil, false
	}
	obj, ok := b.Value.(map[string]any)
	return obj, ok
}

// ParseBody decodes the request body. Base64 bodies must decode to valid
// UTF-8 text, otherwise a validation error is returned. JSON decoding
// failures fall back to the raw text.
func ParseBody(req *Request) (Body, error) {
	if req == nil || req.Body == nil || *req.Body == "" {
		return NoBody, nil
	}

	text := *req.Body
	if req.IsBase64 {
		decoded, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return NoBody, &Error{Kind: KindValidation, Message: "Invalid base64 request body", Err: ErrInvalidBody}
		}
		if !utf8.Valid(decoded) {
			return NoBody, &Error{Kind: KindValidation, Message: "Request body is not valid UTF-8", Err: ErrInvalidBody}
		}
		text = string(decoded)
	}

	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return Body{Present: true, Value: text, Raw: text}, nil
	}

	return Body{Present: true, JSON: true, Value: value, Raw: text}, nil
}
