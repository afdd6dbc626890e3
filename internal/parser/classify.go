package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nicka06/monketer/internal/style"
	"github.com/nicka06/monketer/internal/template"
)

// subtextFontSizeMax is the largest font size (in px) a paragraph may carry
// and still classify as subtext.
const subtextFontSizeMax = 14

// mutedColors are the gray tones the subtext heuristic accepts in addition
// to any color literally containing "gray"/"grey".
var mutedColors = map[string]bool{
	"#6c757d": true,
	"#868e96": true,
	"#999999": true,
	"#999":    true,
	"#aaaaaa": true,
	"#aaa":    true,
}

// determineElementType classifies an element from its tag shape and inline
// styles. The heuristics here are a closed contract with the generator's
// output conventions, not a general HTML classifier: anything unrecognized
// falls back to text.
func determineElementType(sel *goquery.Selection) template.ElementType {
	tag := goquery.NodeName(sel)
	css := style.Decode(sel.AttrOr("style", ""))

	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return template.TypeHeader

	case "p":
		return classifyParagraph(sel, css)

	case "a":
		if sel.Find("img").Length() > 0 {
			return template.TypeImage
		}
		if looksLikeButton(css) {
			return template.TypeButton
		}
		return template.TypeText

	case "span":
		// The generator renders placeholder-target buttons as spans to keep
		// the editor preview free of dead links.
		if looksLikeButton(css) {
			return template.TypeButton
		}
		if sel.Find("img").Length() > 0 {
			return template.TypeImage
		}
		return template.TypeText

	case "img":
		return template.TypeImage

	case "hr":
		return template.TypeDivider

	case "table":
		return classifyTable(sel)

	case "div":
		return classifyDiv(sel, css)

	case "ol", "ul":
		return template.TypeList
	}

	return template.TypeText
}

// classifyParagraph distinguishes the paragraph-shaped types: nav and social
// rows, unsubscribe/preferences links, subtext, and plain text.
func classifyParagraph(sel *goquery.Selection, css map[string]string) template.ElementType {
	links := sel.ChildrenFiltered("a")
	switch {
	case links.Length() >= 2:
		if links.Find("img").Length() > 0 {
			return template.TypeSocial
		}
		return template.TypeNav
	case links.Length() == 1:
		text := strings.ToLower(links.First().Text())
		if strings.Contains(text, "unsubscribe") {
			return template.TypeUnsubscribe
		}
		if strings.Contains(text, "preference") {
			return template.TypePreferences
		}
	}

	if isSubtext(css) {
		return template.TypeSubtext
	}
	return template.TypeText
}

// classifyTable distinguishes the table-shaped helper types by their single
// cell: a left accent border means quote, a fixed-height cell means spacer,
// and spacer is the default for anything else table-shaped.
func classifyTable(sel *goquery.Selection) template.ElementType {
	cell := sel.Find("td").First()
	if cell.Length() == 0 {
		return template.TypeSpacer
	}
	css := style.Decode(cell.AttrOr("style", ""))
	if css["borderLeft"] != "" || css["borderLeftWidth"] != "" {
		return template.TypeQuote
	}
	return template.TypeSpacer
}

func classifyDiv(sel *goquery.Selection, css map[string]string) template.ElementType {
	if sel.Find("pre code").Length() > 0 {
		return template.TypeCode
	}
	if css["display"] == "none" {
		return template.TypePreviewText
	}
	if sel.Find("img").Length() > 0 {
		return template.TypeImage
	}
	return template.TypeText
}

// looksLikeButton reports whether a link carries the block/background
// styling the generator gives buttons.
func looksLikeButton(css map[string]string) bool {
	display := css["display"]
	if display == "inline-block" || display == "block" {
		return css["backgroundColor"] != "" || css["border"] != "" || css["borderRadius"] != ""
	}
	return css["backgroundColor"] != ""
}

// isSubtext applies the muted-copy heuristic: small font size or a muted
// gray color.
func isSubtext(css map[string]string) bool {
	if size, ok := fontSizePx(css["fontSize"]); ok && size <= subtextFontSizeMax {
		return true
	}
	color := strings.ToLower(css["color"])
	if color == "" {
		return false
	}
	if strings.Contains(color, "gray") || strings.Contains(color, "grey") {
		return true
	}
	return mutedColors[color]
}

// fontSizePx parses a "<n>px" font size.
func fontSizePx(v string) (float64, bool) {
	if !strings.HasSuffix(v, "px") {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
