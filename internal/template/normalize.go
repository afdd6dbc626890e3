package template

// Normalize repairs a template after external input (AI merges, manual
// property edits) has been folded into the model. It fills missing or
// duplicate ids from newID, guarantees every element carries a content
// string and a properties variant matching its type, and backfills
// type-specific content fallbacks (image and icon elements fall back to
// their alt text). Ids already present are never changed, so entities that
// survive an edit keep their identity for the differ.
func Normalize(t *Template, newID IDGenerator) {
	if newID == nil {
		newID = NewID
	}

	if t.ID == "" {
		t.ID = newID()
	}
	if t.Version == 0 {
		t.Version = CurrentVersion
	}
	if t.Sections == nil {
		t.Sections = []Section{}
	}

	sectionIDs := make(map[string]bool, len(t.Sections))
	for i := range t.Sections {
		sec := &t.Sections[i]
		if sec.ID == "" || sectionIDs[sec.ID] {
			sec.ID = newID()
		}
		sectionIDs[sec.ID] = true
		normalizeSection(sec, newID)
	}
}

func normalizeSection(sec *Section, newID IDGenerator) {
	if sec.Elements == nil {
		sec.Elements = []Element{}
	}

	elementIDs := make(map[string]bool, len(sec.Elements))
	for i := range sec.Elements {
		el := &sec.Elements[i]
		if el.ID == "" || elementIDs[el.ID] {
			el.ID = newID()
		}
		elementIDs[el.ID] = true
		normalizeElement(el)
	}
}

func normalizeElement(el *Element) {
	if !el.Type.Valid() {
		el.Type = TypeText
	}
	if el.Properties == nil || el.Properties.ElementType() != el.Type {
		// A mismatched variant cannot be trusted field-by-field; start over
		// with the type's defaults.
		el.Properties, _ = NewProperties(el.Type)
	}

	if el.Content == "" {
		el.Content = contentFallback(el)
	}

	switch p := el.Properties.(type) {
	case *ListProps:
		if p.Items == nil {
			p.Items = []string{}
		}
		if p.ListType != "ordered" && p.ListType != "unordered" {
			p.ListType = "unordered"
		}
	case *NavProps:
		if p.Links == nil {
			p.Links = []NavLink{}
		}
	case *SocialProps:
		if p.Links == nil {
			p.Links = []SocialLink{}
		}
	case *HeaderProps:
		if p.Level < 1 || p.Level > 3 {
			p.Level = 1
		}
	}
}

// contentFallback returns the type-specific content default for elements
// whose primary payload lives in properties rather than free text.
func contentFallback(el *Element) string {
	switch p := el.Properties.(type) {
	case *ImageProps:
		return p.Image.Alt
	case *IconProps:
		return p.Alt
	}
	return ""
}
