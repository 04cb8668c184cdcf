package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorruptBody is returned when an event body does not decode into an enriched body.
var ErrCorruptBody = errors.New("events: corrupt event body")

// Body is the enriched event body produced by the collection pipeline's interceptors.
//
// ExtraData carries the auxiliary fields added alongside the original log line;
// Message is the original line itself.
type Body struct {
	ExtraData map[string]string `json:"extraData"`
	Message   string            `json:"message"`
}

// EncodeBody serializes the body to JSON.
func EncodeBody(b Body) ([]byte, error) {
	return json.Marshal(b)
}

// DecodeBody deserializes an enriched body. A payload that is not a JSON object
// is reported as ErrCorruptBody. Missing fields decode as empty.
func DecodeBody(data []byte) (Body, error) {
	var b Body
	if err := json.Unmarshal(data, &b); err != nil {
		return Body{}, fmt.Errorf("%w: %v", ErrCorruptBody, err)
	}
	if b.ExtraData == nil {
		b.ExtraData = make(map[string]string)
	}
	return b, nil
}

// ExtraData decodes only the extra data of an event body.
func ExtraData(data []byte) (map[string]string, error) {
	b, err := DecodeBody(data)
	if err != nil {
		return nil, err
	}
	return b.ExtraData, nil
}
