package parser

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/nicka06/monketer/internal/metrics"
	"github.com/nicka06/monketer/internal/style"
	"github.com/nicka06/monketer/internal/template"
)

// parseElement reconstructs one element from an inner table row. A nil
// element with nil error means the row was understood but its properties
// failed validation and the element is intentionally dropped.
func (p *Parser) parseElement(row *goquery.Selection) (*template.Element, error) {
	cell := row.ChildrenFiltered("td").First()
	if cell.Length() == 0 {
		return nil, fmt.Errorf("element row has no cell")
	}

	content := cell.Children().First()
	if content.Length() == 0 {
		return nil, fmt.Errorf("element cell is empty")
	}

	el := &template.Element{
		ID:     idFromAttr(cell, "element-"),
		Layout: elementLayout(cell),
		Type:   determineElementType(content),
	}

	props, text := p.extractProperties(el.Type, content)
	if props == nil {
		p.logger.Warn("dropping element with invalid properties",
			"id", el.ID, "type", el.Type)
		metrics.IncElementsDropped("invalid_properties")
		return nil, nil
	}
	el.Properties = props
	el.Content = text
	metrics.IncElementsParsed(string(el.Type))

	return el, nil
}

// elementLayout reads the shared layout fields off the wrapping cell: its
// inline styles plus the structural align/valign attributes.
func elementLayout(cell *goquery.Selection) template.Layout {
	css := style.Decode(cell.AttrOr("style", ""))

	layout := template.Layout{
		Width:    css["width"],
		Height:   css["height"],
		MaxWidth: css["maxWidth"],
		Align:    css["textAlign"],
		Padding:  spacingFrom(css, "padding"),
		Margin:   spacingFrom(css, "margin"),
	}
	if layout.Align == "" {
		layout.Align = cell.AttrOr("align", "")
	}
	layout.Valign = cell.AttrOr("valign", "")
	return layout
}
