// Package parser reconstructs a structured template from generated HTML.
// It walks the table skeleton the generator emits (table.email-container,
// section-/element- id conventions), infers each element's type from tag
// shape and inline styles, and extracts type-specific properties.
//
// Parsing is best-effort by design: the input is AI-generated or
// hand-edited markup, so every per-row and per-element step is isolated.
// A row that cannot be parsed is logged and skipped; only a document with
// no recognizable container at all yields an empty section list.
package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nicka06/monketer/internal/metrics"
	"github.com/nicka06/monketer/internal/style"
	"github.com/nicka06/monketer/internal/template"
)

// Parser reconstructs templates from HTML documents. It holds no state
// between calls; concurrent Parse invocations need no coordination.
type Parser struct {
	logger *slog.Logger
	newID  template.IDGenerator
}

// New creates a parser. A nil logger falls back to slog.Default, a nil id
// generator to template.NewID.
func New(logger *slog.Logger, newID template.IDGenerator) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if newID == nil {
		newID = template.NewID
	}
	return &Parser{logger: logger, newID: newID}
}

// Parse reconstructs a template from an HTML document string. The returned
// template always satisfies the model invariants; rows and elements that
// could not be understood are dropped, never fatal.
func (p *Parser) Parse(htmlStr string) (*template.Template, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	tpl := &template.Template{
		Version:  template.CurrentVersion,
		Sections: []template.Section{},
	}
	tpl.Name = strings.TrimSpace(doc.Find("title").First().Text())
	p.extractGlobalStyles(doc, tpl)

	container := p.findContainer(doc)
	if container == nil {
		p.logger.Warn("no template container found in document")
		template.Normalize(tpl, p.newID)
		return tpl, nil
	}

	rows := containerRows(container)
	rows.Each(func(i int, row *goquery.Selection) {
		sec, err := p.parseSection(row)
		if err != nil {
			p.logger.Warn("skipping unparseable section row", "row", i, "error", err)
			metrics.IncSectionsSkipped()
			return
		}
		tpl.Sections = append(tpl.Sections, *sec)
	})

	template.Normalize(tpl, p.newID)
	return tpl, nil
}

// findContainer locates the outer layout table: by the known class first,
// then by the fixed structural position, then by the loosest selector.
func (p *Parser) findContainer(doc *goquery.Document) *goquery.Selection {
	if sel := doc.Find("table.email-container").First(); sel.Length() > 0 {
		return sel
	}
	if sel := doc.Find("body > table tr > td > table").First(); sel.Length() > 0 {
		return sel
	}
	if sel := doc.Find("body table").First(); sel.Length() > 0 {
		return sel
	}
	return nil
}

// containerRows returns the direct rows of a table, tolerating a missing
// tbody (browsers insert one, raw generators may not).
func containerRows(table *goquery.Selection) *goquery.Selection {
	tbody := table.ChildrenFiltered("tbody")
	if tbody.Length() > 0 {
		return tbody.ChildrenFiltered("tr")
	}
	return table.ChildrenFiltered("tr")
}

// parseSection reconstructs one section from an outer table row.
func (p *Parser) parseSection(row *goquery.Selection) (*template.Section, error) {
	cell := row.ChildrenFiltered("td").First()
	if cell.Length() == 0 {
		return nil, fmt.Errorf("section row has no cell")
	}

	sec := &template.Section{
		ID:       idFromAttr(cell, "section-"),
		Elements: []template.Element{},
		Styles:   sectionStyles(cell),
	}

	inner := cell.ChildrenFiltered("table").First()
	if inner.Length() == 0 {
		// A section without an inner table carries no elements; keep it so
		// spacing-only slices survive the round trip.
		return sec, nil
	}

	containerRows(inner).Each(func(i int, elRow *goquery.Selection) {
		el, err := p.parseElement(elRow)
		if err != nil {
			p.logger.Warn("skipping unparseable element row",
				"section", sec.ID, "row", i, "error", err)
			return
		}
		if el != nil {
			sec.Elements = append(sec.Elements, *el)
		}
	})

	return sec, nil
}

// sectionStyles decodes the style attribute of a section's wrapping cell.
func sectionStyles(cell *goquery.Selection) template.SectionStyles {
	css := style.Decode(cell.AttrOr("style", ""))
	return template.SectionStyles{
		BackgroundColor: css["backgroundColor"],
		Padding:         spacingFrom(css, "padding"),
		Border:          borderFrom(css),
	}
}

// extractGlobalStyles pulls document-wide styling off the body and the
// container table.
func (p *Parser) extractGlobalStyles(doc *goquery.Document, tpl *template.Template) {
	bodyCSS := style.Decode(doc.Find("body").First().AttrOr("style", ""))
	tpl.GlobalStyles.BackgroundColor = bodyCSS["backgroundColor"]
	tpl.GlobalStyles.FontFamily = bodyCSS["fontFamily"]
	tpl.GlobalStyles.TextColor = bodyCSS["color"]

	containerCSS := style.Decode(doc.Find("table.email-container").First().AttrOr("style", ""))
	if w := containerCSS["maxWidth"]; w != "" {
		tpl.GlobalStyles.ContentWidth = w
	}
}

// idFromAttr derives an entity id from the DOM id convention
// ("section-<id>" / "element-<id>"). An empty result is filled in later by
// the normalization pass.
func idFromAttr(cell *goquery.Selection, prefix string) string {
	domID := cell.AttrOr("id", "")
	if strings.HasPrefix(domID, prefix) {
		return strings.TrimPrefix(domID, prefix)
	}
	return ""
}

// spacingFrom collects the four per-side keys of a group ("padding" ->
// paddingTop...) into a Spacing, or nil when none are present.
func spacingFrom(css map[string]string, group string) *template.Spacing {
	s := &template.Spacing{
		Top:    css[group+"Top"],
		Right:  css[group+"Right"],
		Bottom: css[group+"Bottom"],
		Left:   css[group+"Left"],
	}
	if s.Top == "" && s.Right == "" && s.Bottom == "" && s.Left == "" {
		return nil
	}
	return s
}

// borderFrom collects border-width/style/color into a Border, or nil.
func borderFrom(css map[string]string) *template.Border {
	b := &template.Border{
		Width: css["borderWidth"],
		Style: css["borderStyle"],
		Color: css["borderColor"],
	}
	if b.Width == "" && b.Style == "" && b.Color == "" {
		return nil
	}
	return b
}
