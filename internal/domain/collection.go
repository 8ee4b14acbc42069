package domain

import (
	"fmt"
	"sort"
	"strings"
)

// KindInferred marks a collection whose documents carry their kind in the type field
const KindInferred = "infer"

// CollectionBinding binds a collection to the kind its documents announce
type CollectionBinding struct {
	Collection string      `json:"collection"`
	Kind       ContentKind `json:"kind,omitempty"`
	Inferred   bool        `json:"inferred"`
}

// Resolve returns the kind for a document written to the bound collection
func (b CollectionBinding) Resolve(doc *ContentDocument) ContentKind {
	if b.Inferred {
		return doc.InferredKind()
	}
	return b.Kind
}

// Bindings is the single trigger registration table
type Bindings struct {
	byCollection map[string]CollectionBinding
}

// DefaultBindings returns the collections the content app writes to
func DefaultBindings() *Bindings {
	b, _ := NewBindings(
		CollectionBinding{Collection: "content", Inferred: true},
		CollectionBinding{Collection: "content_plant_allies", Kind: KindPlantAlly},
		CollectionBinding{Collection: "content_recipes", Kind: KindRecipe},
		CollectionBinding{Collection: "content_seasonal_wisdom", Kind: KindSeasonalWisdom},
	)
	return b
}

// NewBindings validates and indexes a set of bindings
func NewBindings(bindings ...CollectionBinding) (*Bindings, error) {
	b := &Bindings{byCollection: make(map[string]CollectionBinding, len(bindings))}
	for _, binding := range bindings {
		if binding.Collection == "" {
			return nil, NewValidationError("collection", "collection name is required")
		}
		if !binding.Inferred && !binding.Kind.IsValid() {
			return nil, NewValidationError("kind", fmt.Sprintf("invalid kind %q for collection %s", binding.Kind, binding.Collection))
		}
		if _, exists := b.byCollection[binding.Collection]; exists {
			return nil, NewValidationError("collection", "duplicate binding for "+binding.Collection)
		}
		b.byCollection[binding.Collection] = binding
	}
	return b, nil
}

// ParseBindings parses "collection=kind" pairs separated by commas, where
// kind is plant, recipe, seasonal, content or infer.
func ParseBindings(raw string) (*Bindings, error) {
	var bindings []CollectionBinding
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, kind, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, NewValidationError("bindings", "expected collection=kind, got "+pair)
		}
		binding := CollectionBinding{Collection: strings.TrimSpace(name)}
		kind = strings.TrimSpace(kind)
		if kind == KindInferred {
			binding.Inferred = true
		} else {
			binding.Kind = ContentKind(kind)
		}
		bindings = append(bindings, binding)
	}
	if len(bindings) == 0 {
		return nil, NewValidationError("bindings", "at least one collection binding is required")
	}
	return NewBindings(bindings...)
}

// Lookup returns the binding for a collection
func (b *Bindings) Lookup(collection string) (CollectionBinding, bool) {
	binding, ok := b.byCollection[collection]
	return binding, ok
}

// Collections returns the bound collection names, sorted
func (b *Bindings) Collections() []string {
	names := make([]string, 0, len(b.byCollection))
	for name := range b.byCollection {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every binding, sorted by collection
func (b *Bindings) All() []CollectionBinding {
	out := make([]CollectionBinding, 0, len(b.byCollection))
	for _, name := range b.Collections() {
		out = append(out, b.byCollection[name])
	}
	return out
}
