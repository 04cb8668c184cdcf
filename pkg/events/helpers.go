package events

// NewBody creates a body for the given message. The extra data map is copied.
func NewBody(message string, extra map[string]string) Body {
	b := Body{
		ExtraData: make(map[string]string, len(extra)),
		Message:   message,
	}
	for k, v := range extra {
		b.ExtraData[k] = v
	}
	return b
}

// WithExtra returns a copy of the body with key set to value in its extra data.
func (b Body) WithExtra(key, value string) Body {
	out := NewBody(b.Message, b.ExtraData)
	out.ExtraData[key] = value
	return out
}

// Lookup returns the extra data value for key.
func (b Body) Lookup(key string) (string, bool) {
	v, ok := b.ExtraData[key]
	return v, ok
}
