// Package differ computes structured change-sets between two template
// versions. Identity is always the section/element id, never list position,
// so an entity that moves without content changes is reported with a moved
// marker instead of a remove+add pair. The diff output is a stable JSON
// contract consumed by the pending-changes review UI and the chat
// orchestration layer.
package differ

import (
	"fmt"

	"github.com/nicka06/monketer/internal/template"
)

// Status classifies a section or element within a diff.
type Status string

const (
	StatusAdded     Status = "added"
	StatusRemoved   Status = "removed"
	StatusModified  Status = "modified"
	StatusUnchanged Status = "unchanged"
)

// FieldChange records one changed value.
type FieldChange struct {
	OldValue any `json:"oldValue"`
	NewValue any `json:"newValue"`
}

// Move records a same-identity entity's position change.
type Move struct {
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

// ElementChanges holds the per-aspect changes of a modified element. Each
// field is independently optional; a moved-only element has none of them.
type ElementChanges struct {
	Content    *FieldChange    `json:"content,omitempty"`
	Layout     PropertyChanges `json:"layout,omitempty"`
	Properties PropertyChanges `json:"properties,omitempty"`
}

// ElementDiff describes one element's fate between the two versions.
// OldValue is set for removed elements, NewValue for added ones.
type ElementDiff struct {
	ElementID   string               `json:"elementId"`
	ElementType template.ElementType `json:"elementType"`
	Status      Status               `json:"status"`
	Changes     *ElementChanges      `json:"changes,omitempty"`
	Moved       *Move                `json:"moved,omitempty"`
	OldValue    *template.Element    `json:"oldValue,omitempty"`
	NewValue    *template.Element    `json:"newValue,omitempty"`
}

// SectionDiff describes one section's fate between the two versions. An
// unchanged or removed section carries an empty ElementDiffs slice: the
// per-element detail adds nothing the status does not already say.
type SectionDiff struct {
	SectionID    string          `json:"sectionId"`
	Status       Status          `json:"status"`
	StyleChanges PropertyChanges `json:"styleChanges,omitempty"`
	ElementDiffs []ElementDiff   `json:"elementDiffs"`
	Moved        *Move           `json:"moved,omitempty"`
}

// Result is the full diff between two templates.
type Result struct {
	HasChanges         bool            `json:"hasChanges"`
	NameChange         *FieldChange    `json:"nameChange,omitempty"`
	GlobalStyleChanges PropertyChanges `json:"globalStyleChanges,omitempty"`
	SectionDiffs       []SectionDiff   `json:"sectionDiffs"`
}

// Diff compares two templates and returns the typed change-set. Both inputs
// must satisfy the model's id-uniqueness invariant; duplicate ids would make
// the identity-keyed comparison ambiguous, so they fail fast here instead of
// silently picking a winner.
func Diff(old, new *template.Template) (*Result, error) {
	if err := checkIdentity(old); err != nil {
		return nil, fmt.Errorf("old template: %w", err)
	}
	if err := checkIdentity(new); err != nil {
		return nil, fmt.Errorf("new template: %w", err)
	}

	result := &Result{
		SectionDiffs: diffSections(old.Sections, new.Sections),
	}

	if old.Name != new.Name {
		result.NameChange = &FieldChange{OldValue: old.Name, NewValue: new.Name}
	}
	result.GlobalStyleChanges = diffProperties(toMap(old.GlobalStyles), toMap(new.GlobalStyles))

	result.HasChanges = result.NameChange != nil || result.GlobalStyleChanges != nil
	for _, sd := range result.SectionDiffs {
		if sd.Status != StatusUnchanged {
			result.HasChanges = true
			break
		}
	}

	return result, nil
}

// diffSections compares two section lists keyed by id. Old sections are
// visited in old order (shared and removed), then sections new to the second
// version in new order.
func diffSections(old, new []template.Section) []SectionDiff {
	oldIndex := make(map[string]int, len(old))
	for i, sec := range old {
		oldIndex[sec.ID] = i
	}
	newIndex := make(map[string]int, len(new))
	for i, sec := range new {
		newIndex[sec.ID] = i
	}

	diffs := make([]SectionDiff, 0, len(old)+len(new))

	for i, oldSec := range old {
		j, exists := newIndex[oldSec.ID]
		if !exists {
			diffs = append(diffs, SectionDiff{
				SectionID:    oldSec.ID,
				Status:       StatusRemoved,
				ElementDiffs: []ElementDiff{},
			})
			continue
		}

		newSec := new[j]
		styleChanges := diffProperties(toMap(oldSec.Styles), toMap(newSec.Styles))
		elementDiffs := diffElements(oldSec.Elements, newSec.Elements)

		var moved *Move
		if i != j {
			moved = &Move{FromIndex: i, ToIndex: j}
		}

		elementsChanged := false
		for _, ed := range elementDiffs {
			if ed.Status != StatusUnchanged {
				elementsChanged = true
				break
			}
		}

		sd := SectionDiff{
			SectionID:    oldSec.ID,
			Status:       StatusUnchanged,
			StyleChanges: styleChanges,
			ElementDiffs: elementDiffs,
			Moved:        moved,
		}
		if styleChanges != nil || elementsChanged || moved != nil {
			sd.Status = StatusModified
		} else {
			// An unchanged section need not re-enumerate unchanged elements.
			sd.ElementDiffs = []ElementDiff{}
		}
		diffs = append(diffs, sd)
	}

	for _, newSec := range new {
		if _, exists := oldIndex[newSec.ID]; exists {
			continue
		}
		added := SectionDiff{
			SectionID:    newSec.ID,
			Status:       StatusAdded,
			ElementDiffs: make([]ElementDiff, 0, len(newSec.Elements)),
		}
		for i := range newSec.Elements {
			el := newSec.Elements[i]
			added.ElementDiffs = append(added.ElementDiffs, ElementDiff{
				ElementID:   el.ID,
				ElementType: el.Type,
				Status:      StatusAdded,
				NewValue:    &el,
			})
		}
		diffs = append(diffs, added)
	}

	return diffs
}

// diffElements applies the same id-keyed algorithm one level down.
func diffElements(old, new []template.Element) []ElementDiff {
	oldIndex := make(map[string]int, len(old))
	for i, el := range old {
		oldIndex[el.ID] = i
	}
	newIndex := make(map[string]int, len(new))
	for i, el := range new {
		newIndex[el.ID] = i
	}

	diffs := make([]ElementDiff, 0, len(old)+len(new))

	for i := range old {
		oldEl := old[i]
		j, exists := newIndex[oldEl.ID]
		if !exists {
			diffs = append(diffs, ElementDiff{
				ElementID:   oldEl.ID,
				ElementType: oldEl.Type,
				Status:      StatusRemoved,
				OldValue:    &oldEl,
			})
			continue
		}

		newEl := new[j]
		changes := &ElementChanges{}
		if oldEl.Content != newEl.Content {
			changes.Content = &FieldChange{OldValue: oldEl.Content, NewValue: newEl.Content}
		}
		changes.Layout = diffProperties(toMap(oldEl.Layout), toMap(newEl.Layout))
		changes.Properties = diffProperties(toMap(oldEl.Properties), toMap(newEl.Properties))
		if oldEl.Type != newEl.Type {
			// A type change rewrites the whole properties shape; surface it
			// alongside the property-level changes.
			if changes.Properties == nil {
				changes.Properties = PropertyChanges{}
			}
			changes.Properties["type"] = FieldChange{OldValue: string(oldEl.Type), NewValue: string(newEl.Type)}
		}

		hasChanges := changes.Content != nil || changes.Layout != nil || changes.Properties != nil
		if !hasChanges {
			changes = nil
		}

		var moved *Move
		if i != j {
			moved = &Move{FromIndex: i, ToIndex: j}
		}

		status := StatusUnchanged
		if hasChanges || moved != nil {
			status = StatusModified
		}

		diffs = append(diffs, ElementDiff{
			ElementID:   oldEl.ID,
			ElementType: newEl.Type,
			Status:      status,
			Changes:     changes,
			Moved:       moved,
		})
	}

	for i := range new {
		newEl := new[i]
		if _, exists := oldIndex[newEl.ID]; exists {
			continue
		}
		diffs = append(diffs, ElementDiff{
			ElementID:   newEl.ID,
			ElementType: newEl.Type,
			Status:      StatusAdded,
			NewValue:    &newEl,
		})
	}

	return diffs
}

// checkIdentity verifies id uniqueness, the one invariant the differ cannot
// tolerate being broken.
func checkIdentity(t *template.Template) error {
	sectionIDs := make(map[string]bool, len(t.Sections))
	for _, sec := range t.Sections {
		if sectionIDs[sec.ID] {
			return fmt.Errorf("duplicate section id %q", sec.ID)
		}
		sectionIDs[sec.ID] = true

		elementIDs := make(map[string]bool, len(sec.Elements))
		for _, el := range sec.Elements {
			if elementIDs[el.ID] {
				return fmt.Errorf("duplicate element id %q in section %q", el.ID, sec.ID)
			}
			elementIDs[el.ID] = true
		}
	}
	return nil
}
