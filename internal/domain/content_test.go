package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentKind_Label(t *testing.T) {
	tests := []struct {
		name string
		kind ContentKind
		want string
	}{
		{"plant ally", KindPlantAlly, "Plant Ally"},
		{"recipe", KindRecipe, "Recipe"},
		{"seasonal wisdom", KindSeasonalWisdom, "Seasonal Wisdom"},
		{"generic", KindGeneric, "Content"},
		{"unknown kind falls back to content", ContentKind("other"), "Content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Label())
		})
	}
}

func TestKindFromType(t *testing.T) {
	tests := []struct {
		name      string
		typeValue string
		wantLabel string
	}{
		{"plant", "plant", "Plant Ally"},
		{"recipe", "recipe", "Recipe"},
		{"seasonal", "seasonal", "Seasonal Wisdom"},
		{"unknown value", "unknown-value", "Content"},
		{"empty value", "", "Content"},
		{"case sensitive", "Plant", "Content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLabel, KindFromType(tt.typeValue).Label())
		})
	}
}

func TestKindFromLabel(t *testing.T) {
	k, ok := KindFromLabel("Seasonal Wisdom")
	assert.True(t, ok)
	assert.Equal(t, KindSeasonalWisdom, k)

	k, ok = KindFromLabel("plant ally")
	assert.True(t, ok)
	assert.Equal(t, KindPlantAlly, k)

	_, ok = KindFromLabel("Newsletter")
	assert.False(t, ok)
}

func TestContentDocument_Field(t *testing.T) {
	doc := NewContentDocument("content", "doc-1", map[string]any{
		"title":   "Elderflower",
		"empty":   "",
		"nothing": nil,
		"count":   3,
	})

	v, ok := doc.Field("title")
	assert.True(t, ok)
	assert.Equal(t, "Elderflower", v)

	v, ok = doc.Field("empty")
	assert.True(t, ok, "empty string counts as present")
	assert.Equal(t, "", v)

	_, ok = doc.Field("nothing")
	assert.False(t, ok, "nil value counts as absent")

	_, ok = doc.Field("missing")
	assert.False(t, ok)

	v, ok = doc.Field("count")
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	var absent *ContentDocument
	_, ok = absent.Field("title")
	assert.False(t, ok)
}

func TestContentDocument_IsPublished(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   bool
	}{
		{"published", map[string]any{"status": "published"}, true},
		{"draft", map[string]any{"status": "draft"}, false},
		{"archived", map[string]any{"status": "archived"}, false},
		{"absent status", map[string]any{"title": "x"}, false},
		{"nil status", map[string]any{"status": nil}, false},
		{"different case", map[string]any{"status": "Published"}, false},
		{"padded", map[string]any{"status": " published"}, false},
		{"non-string status", map[string]any{"status": true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewContentDocument("content", "id", tt.fields)
			assert.Equal(t, tt.want, doc.IsPublished())
		})
	}
}

func TestContentDocument_FirstPresent(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]any
		candidates []string
		want       string
	}{
		{"first candidate wins", map[string]any{"summary": "A", "subtitle": "B"}, BodyCandidates, "A"},
		{"second candidate used when first absent", map[string]any{"subtitle": "B"}, BodyCandidates, "B"},
		{"fallback when none present", map[string]any{}, BodyCandidates, "fallback"},
		{"empty first candidate still wins", map[string]any{"summary": "", "subtitle": "B"}, BodyCandidates, ""},
		{"nil first candidate is skipped", map[string]any{"summary": nil, "subtitle": "B"}, BodyCandidates, "B"},
		{"season_name before season", map[string]any{"season": "Spring", "season_name": "Early Spring"}, SeasonCandidates, "Early Spring"},
		{"no candidates", map[string]any{"title": "x"}, nil, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewContentDocument("content", "id", tt.fields)
			assert.Equal(t, tt.want, doc.FirstPresent("fallback", tt.candidates...))
		})
	}
}

func TestContentDocument_InferredKind(t *testing.T) {
	doc := NewContentDocument("content", "id", map[string]any{"type": "seasonal"})
	assert.Equal(t, KindSeasonalWisdom, doc.InferredKind())

	doc = NewContentDocument("content", "id", map[string]any{"type": 42})
	assert.Equal(t, KindGeneric, doc.InferredKind())

	var absent *ContentDocument
	assert.Equal(t, KindGeneric, absent.InferredKind())
}
