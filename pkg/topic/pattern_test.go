package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		raw      string
		wantKeys []string
		wantZero bool
	}{
		{raw: "", wantZero: true},
		{raw: "   ", wantZero: true},
		{raw: "region", wantKeys: []string{"region"}},
		{raw: "region-dc", wantKeys: []string{"region", "dc"}},
		{raw: " region-dc-app ", wantKeys: []string{"region", "dc", "app"}},
		{raw: "region--dc", wantKeys: []string{"region", "", "dc"}},
		{raw: "region-", wantKeys: []string{"region"}},
		{raw: "region--", wantKeys: []string{"region"}},
		{raw: "region-dc-", wantKeys: []string{"region", "dc"}},
		{raw: "-region", wantKeys: []string{"", "region"}},
		{raw: "-", wantZero: true},
		{raw: "---", wantZero: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p := ParsePattern(tt.raw)
			assert.Equal(t, tt.wantZero, p.IsZero())
			if tt.wantZero {
				assert.Empty(t, p.Keys())
				return
			}
			assert.Equal(t, tt.wantKeys, p.Keys())
		})
	}
}

func TestPatternKeysIsACopy(t *testing.T) {
	p := ParsePattern("region-dc")
	keys := p.Keys()
	keys[0] = "changed"
	assert.Equal(t, []string{"region", "dc"}, p.Keys())
	assert.Equal(t, "region-dc", p.String())
}

func TestPatternBuild(t *testing.T) {
	p := ParsePattern("region-dc")

	name, missing, ok := p.Build(map[string]string{"region": "eu", "dc": "west", "app": "x"})
	assert.True(t, ok)
	assert.Equal(t, "eu-west", name)
	assert.Empty(t, missing)

	_, missing, ok = p.Build(map[string]string{"dc": "west"})
	assert.False(t, ok)
	assert.Equal(t, "region", missing)

	_, missing, ok = p.Build(nil)
	assert.False(t, ok)
	assert.Equal(t, "region", missing)

	name, _, ok = p.Build(map[string]string{"region": "", "dc": ""})
	assert.True(t, ok)
	assert.Equal(t, "-", name)
}
