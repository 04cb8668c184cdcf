package topic

import "strings"

// Separator splits a pattern into keys and joins resolved values into a topic name.
const Separator = "-"

// Pattern is the ordered list of extra data keys a dynamic topic is built from,
// e.g. "region-dc" names the keys region and dc. The zero Pattern is absent.
type Pattern struct {
	raw  string
	keys []string
}

// ParsePattern parses a configured dynamic topic. Trailing empty keys are
// dropped, leading and interior ones kept. A blank value, or one made only of
// separators, yields the absent Pattern.
func ParsePattern(raw string) Pattern {
	raw = strings.TrimSpace(raw)
	keys := strings.Split(raw, Separator)
	for len(keys) > 0 && keys[len(keys)-1] == "" {
		keys = keys[:len(keys)-1]
	}
	if len(keys) == 0 {
		return Pattern{}
	}
	return Pattern{raw: raw, keys: keys}
}

// IsZero reports whether no dynamic topic is configured.
func (p Pattern) IsZero() bool {
	return len(p.keys) == 0
}

// Keys returns a copy of the pattern keys in order.
func (p Pattern) Keys() []string {
	return append([]string(nil), p.keys...)
}

func (p Pattern) String() string {
	return p.raw
}

// Build joins the values of every key in order. It returns the first missing
// key when extra does not carry all of them.
func (p Pattern) Build(extra map[string]string) (name, missing string, ok bool) {
	values := make([]string, len(p.keys))
	for i, key := range p.keys {
		v, found := extra[key]
		if !found {
			return "", key, false
		}
		values[i] = v
	}
	return strings.Join(values, Separator), "", true
}
