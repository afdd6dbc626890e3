// Package template defines the semantic email document model shared by the
// parser, generator and differ: a Template is an ordered list of Sections,
// each holding an ordered list of typed Elements. The model is exactly two
// levels deep and JSON-serializable; it is the boundary persisted to storage
// and exchanged with the editing UI and the AI orchestration layer.
package template

import (
	"encoding/json"
	"fmt"
)

// CurrentVersion is the schema generation this package reads and writes.
// Older generations are migrated outside this core.
const CurrentVersion = 2

// Template is the root document model.
type Template struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Version      int          `json:"version"`
	Sections     []Section    `json:"sections"`
	GlobalStyles GlobalStyles `json:"globalStyles"`
}

// GlobalStyles carries document-wide styling applied to the body and the
// outer container table.
type GlobalStyles struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	ContentWidth    string `json:"contentWidth,omitempty"` // pixel string, e.g. "600px"
}

// Section is one horizontal slice of the email: one outer table row with a
// single cell wrapping an inner table of element rows.
type Section struct {
	ID       string        `json:"id"`
	Elements []Element     `json:"elements"`
	Styles   SectionStyles `json:"styles"`
}

// SectionStyles holds the styling emitted on a section's wrapping cell.
// Optional fields are omitted when not set; "" never means "explicitly empty".
type SectionStyles struct {
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	Padding         *Spacing `json:"padding,omitempty"`
	Border          *Border  `json:"border,omitempty"`
}

// Spacing holds per-side CSS length strings. Absent sides are omitted.
type Spacing struct {
	Top    string `json:"top,omitempty"`
	Right  string `json:"right,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Left   string `json:"left,omitempty"`
}

// Border holds shorthand border styling.
type Border struct {
	Width string `json:"width,omitempty"`
	Style string `json:"style,omitempty"`
	Color string `json:"color,omitempty"`
}

// Typography holds text styling shared by several element property variants.
type Typography struct {
	FontFamily string `json:"fontFamily,omitempty"`
	FontSize   string `json:"fontSize,omitempty"`
	FontWeight string `json:"fontWeight,omitempty"`
	Color      string `json:"color,omitempty"`
	TextAlign  string `json:"textAlign,omitempty"`
	LineHeight string `json:"lineHeight,omitempty"`
}

// Layout holds the positioning fields shared by all element types.
type Layout struct {
	Width    string   `json:"width,omitempty"`
	Height   string   `json:"height,omitempty"`
	MaxWidth string   `json:"maxWidth,omitempty"`
	Align    string   `json:"align,omitempty"`
	Valign   string   `json:"valign,omitempty"`
	Padding  *Spacing `json:"padding,omitempty"`
	Margin   *Spacing `json:"margin,omitempty"`
}

// Element is one content unit within a section. Type determines the concrete
// shape of Properties; Content is the element's primary textual payload and
// is always present (empty string when the element carries no text).
type Element struct {
	ID         string      `json:"id"`
	Type       ElementType `json:"type"`
	Content    string      `json:"content"`
	Layout     Layout      `json:"layout"`
	Properties Properties  `json:"properties"`
}

// elementEnvelope mirrors Element with raw properties, so UnmarshalJSON can
// pick the variant struct after reading the type tag.
type elementEnvelope struct {
	ID         string          `json:"id"`
	Type       ElementType     `json:"type"`
	Content    string          `json:"content"`
	Layout     Layout          `json:"layout"`
	Properties json.RawMessage `json:"properties"`
}

// UnmarshalJSON decodes an element, dispatching the properties payload to
// the variant struct selected by the type tag. An unknown type is an error;
// a missing or null properties payload yields the type's default variant.
func (e *Element) UnmarshalJSON(data []byte) error {
	var env elementEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	props, err := NewProperties(env.Type)
	if err != nil {
		return err
	}
	if len(env.Properties) > 0 && string(env.Properties) != "null" {
		if err := json.Unmarshal(env.Properties, props); err != nil {
			return fmt.Errorf("invalid %s properties: %w", env.Type, err)
		}
	}

	e.ID = env.ID
	e.Type = env.Type
	e.Content = env.Content
	e.Layout = env.Layout
	e.Properties = props
	return nil
}

// Validate checks the model invariants: unique section and element ids,
// known element types, and properties matching their element's type.
func (t *Template) Validate() error {
	sectionIDs := make(map[string]bool, len(t.Sections))
	for _, sec := range t.Sections {
		if sec.ID == "" {
			return fmt.Errorf("section without id")
		}
		if sectionIDs[sec.ID] {
			return fmt.Errorf("duplicate section id %q", sec.ID)
		}
		sectionIDs[sec.ID] = true

		elementIDs := make(map[string]bool, len(sec.Elements))
		for _, el := range sec.Elements {
			if el.ID == "" {
				return fmt.Errorf("element without id in section %q", sec.ID)
			}
			if elementIDs[el.ID] {
				return fmt.Errorf("duplicate element id %q in section %q", el.ID, sec.ID)
			}
			elementIDs[el.ID] = true

			if !el.Type.Valid() {
				return fmt.Errorf("element %q has unknown type %q", el.ID, el.Type)
			}
			if el.Properties == nil {
				return fmt.Errorf("element %q has no properties", el.ID)
			}
			if el.Properties.ElementType() != el.Type {
				return fmt.Errorf("element %q has %s properties but type %s",
					el.ID, el.Properties.ElementType(), el.Type)
			}
		}
	}
	return nil
}

// Clone returns a deep copy via JSON round-trip. The model is fully
// JSON-serializable, so this is both correct and cheap at document scale.
func (t *Template) Clone() (*Template, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template: %w", err)
	}
	var clone Template
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template copy: %w", err)
	}
	return &clone, nil
}

// Section returns the section with the given id, or nil.
func (t *Template) Section(id string) *Section {
	for i := range t.Sections {
		if t.Sections[i].ID == id {
			return &t.Sections[i]
		}
	}
	return nil
}

// Element returns the element with the given id, or nil.
func (s *Section) Element(id string) *Element {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return &s.Elements[i]
		}
	}
	return nil
}
