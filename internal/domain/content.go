package domain

import (
	"fmt"
	"strings"
)

// ContentKind identifies the kind of content a document represents
type ContentKind string

const (
	KindPlantAlly      ContentKind = "plant"
	KindRecipe         ContentKind = "recipe"
	KindSeasonalWisdom ContentKind = "seasonal"
	KindGeneric        ContentKind = "content"
)

// AllKinds lists every content kind in display order
var AllKinds = []ContentKind{KindPlantAlly, KindRecipe, KindSeasonalWisdom, KindGeneric}

// Label returns the human-readable label used in notification titles
func (k ContentKind) Label() string {
	switch k {
	case KindPlantAlly:
		return "Plant Ally"
	case KindRecipe:
		return "Recipe"
	case KindSeasonalWisdom:
		return "Seasonal Wisdom"
	}
	return "Content"
}

func (k ContentKind) IsValid() bool {
	switch k {
	case KindPlantAlly, KindRecipe, KindSeasonalWisdom, KindGeneric:
		return true
	}
	return false
}

// KindFromType maps a document's type field to a content kind.
// Unknown, empty and missing values map to KindGeneric.
func KindFromType(typeValue string) ContentKind {
	switch typeValue {
	case "plant":
		return KindPlantAlly
	case "recipe":
		return KindRecipe
	case "seasonal":
		return KindSeasonalWisdom
	}
	return KindGeneric
}

// KindFromLabel is the inverse of Label
func KindFromLabel(label string) (ContentKind, bool) {
	for _, k := range AllKinds {
		if strings.EqualFold(k.Label(), label) {
			return k, true
		}
	}
	return "", false
}

// Recognized document fields
const (
	FieldStatus     = "status"
	FieldTitle      = "title"
	FieldSummary    = "summary"
	FieldSubtitle   = "subtitle"
	FieldSeasonName = "season_name"
	FieldSeason     = "season"
	FieldType       = "type"
)

// StatusPublished is the only status value that produces a notification
const StatusPublished = "published"

// ContentDocument is a read-only view of a document written to the content store
type ContentDocument struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection,omitempty"`
	Fields     map[string]any `json:"fields"`
}

// NewContentDocument creates a ContentDocument
func NewContentDocument(collection, id string, fields map[string]any) *ContentDocument {
	return &ContentDocument{
		ID:         id,
		Collection: collection,
		Fields:     fields,
	}
}

// HasData reports whether the document carries a field mapping at all
func (d *ContentDocument) HasData() bool {
	return d != nil && d.Fields != nil
}

// Field returns the string form of a field. A field is present when the key
// exists and its value is not nil, so an empty string is present.
func (d *ContentDocument) Field(name string) (string, bool) {
	if !d.HasData() {
		return "", false
	}
	v, ok := d.Fields[name]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// Status returns the document status. Non-string values never equal
// StatusPublished, so they are reported as absent.
func (d *ContentDocument) Status() (string, bool) {
	if !d.HasData() {
		return "", false
	}
	s, ok := d.Fields[FieldStatus].(string)
	return s, ok
}

// IsPublished reports whether status is exactly "published"
func (d *ContentDocument) IsPublished() bool {
	s, ok := d.Status()
	return ok && s == StatusPublished
}

// InferredKind resolves the kind from the type field
func (d *ContentDocument) InferredKind() ContentKind {
	if !d.HasData() {
		return KindGeneric
	}
	t, _ := d.Fields[FieldType].(string)
	return KindFromType(t)
}

// FirstPresent walks the candidate fields in order and returns the first
// present value, or fallback when none is present.
func (d *ContentDocument) FirstPresent(fallback string, candidates ...string) string {
	for _, name := range candidates {
		if v, ok := d.Field(name); ok {
			return v
		}
	}
	return fallback
}
