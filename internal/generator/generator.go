// Package generator renders a template into a complete email-client-safe
// HTML document: table-based layout, inlined styles only, Outlook/Gmail
// compatibility blocks, and data attributes marking placeholder fields for
// the editing UI. Output is deterministic: the same template always produces
// byte-identical HTML, which the round-trip and diff-stability guarantees
// depend on.
package generator

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/nicka06/monketer/internal/style"
	"github.com/nicka06/monketer/internal/template"
)

// DefaultContentWidth is used when globalStyles.contentWidth is absent.
const DefaultContentWidth = "600px"

// Generator renders templates to HTML. It holds no state between calls;
// concurrent Generate invocations need no coordination.
type Generator struct {
	logger *slog.Logger
}

// New creates a generator. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// Generate renders the template as a full HTML document string.
func (g *Generator) Generate(t *template.Template) string {
	contentWidth := t.GlobalStyles.ContentWidth
	if contentWidth == "" {
		contentWidth = DefaultContentWidth
	}
	widthValue := strings.TrimSuffix(contentWidth, "px")

	var b strings.Builder
	b.Grow(8192)

	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml" xmlns:v="urn:schemas-microsoft-com:vml" xmlns:o="urn:schemas-microsoft-com:office:office">` + "\n")
	g.writeHead(&b, t, contentWidth)

	bodyStyle := style.Encode(style.Record{
		"margin":          "0",
		"padding":         "0",
		"backgroundColor": t.GlobalStyles.BackgroundColor,
		"fontFamily":      t.GlobalStyles.FontFamily,
		"color":           t.GlobalStyles.TextColor,
	})
	b.WriteString(`<body style="` + escape(bodyStyle) + `">` + "\n")

	// Outlook ignores max-width; the conditional table pins the layout width.
	b.WriteString(fmt.Sprintf("<!--[if mso]><table role=\"presentation\" width=\"%s\" align=\"center\" cellpadding=\"0\" cellspacing=\"0\" border=\"0\"><tr><td><![endif]-->\n", escape(widthValue)))

	containerStyle := style.Encode(style.Record{
		"width":    "100%",
		"maxWidth": contentWidth,
		"margin":   "0 auto",
	})
	b.WriteString(fmt.Sprintf(`<table class="email-container" role="presentation" width="%s" align="center" cellpadding="0" cellspacing="0" border="0" style="%s">`,
		escape(widthValue), escape(containerStyle)))
	b.WriteString("\n<tbody>\n")

	for i := range t.Sections {
		g.writeSection(&b, &t.Sections[i])
	}

	b.WriteString("</tbody>\n</table>\n")
	b.WriteString("<!--[if mso]></td></tr></table><![endif]-->\n")
	b.WriteString("</body>\n</html>\n")

	return b.String()
}

// writeHead emits the fixed set of email-client compatibility resets.
func (g *Generator) writeHead(b *strings.Builder, t *template.Template, contentWidth string) {
	b.WriteString("<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")
	b.WriteString(`<meta http-equiv="X-UA-Compatible" content="IE=edge">` + "\n")
	b.WriteString(`<meta name="x-apple-disable-message-reformatting">` + "\n")
	if t.Name != "" {
		b.WriteString("<title>" + escape(t.Name) + "</title>\n")
	}

	// Forces Outlook to render at 96 DPI.
	b.WriteString("<!--[if gte mso 9]>\n<xml>\n<o:OfficeDocumentSettings>\n<o:AllowPNG/>\n<o:PixelsPerInch>96</o:PixelsPerInch>\n</o:OfficeDocumentSettings>\n</xml>\n<![endif]-->\n")

	b.WriteString("<style>\n")
	b.WriteString("body, table, td, a { -webkit-text-size-adjust: 100%; -ms-text-size-adjust: 100%; }\n")
	b.WriteString("table, td { mso-table-lspace: 0pt; mso-table-rspace: 0pt; }\n")
	b.WriteString("img { -ms-interpolation-mode: bicubic; border: 0; outline: none; text-decoration: none; }\n")
	b.WriteString(fmt.Sprintf("@media only screen and (max-width: %s) {\n", escape(contentWidth)))
	b.WriteString(".email-container { width: 100% !important; max-width: 100% !important; }\n")
	b.WriteString(".stack-column { display: block !important; width: 100% !important; }\n")
	b.WriteString("}\n")
	b.WriteString("</style>\n")
	b.WriteString("</head>\n")
}

// writeSection emits one outer table row wrapping the section's inner table.
func (g *Generator) writeSection(b *strings.Builder, sec *template.Section) {
	record := style.Record{
		"backgroundColor": sec.Styles.BackgroundColor,
	}
	if sec.Styles.Padding != nil {
		record["padding"] = spacingGroup(sec.Styles.Padding)
	}
	if sec.Styles.Border != nil {
		record["border"] = borderGroup(sec.Styles.Border)
	}

	b.WriteString(fmt.Sprintf(`<tr><td id="section-%s" style="%s">`, escape(sec.ID), escape(style.Encode(record))))
	b.WriteString("\n")
	b.WriteString(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0" border="0">` + "\n<tbody>\n")

	for i := range sec.Elements {
		g.writeElement(b, &sec.Elements[i])
	}

	b.WriteString("</tbody>\n</table>\n")
	b.WriteString("</td></tr>\n")
}

// writeElement emits one inner table row for an element: the wrapping cell
// carries the id convention and the layout styles, the cell body carries the
// type-specific markup.
func (g *Generator) writeElement(b *strings.Builder, el *template.Element) {
	layoutCSS := style.Encode(layoutRecord(&el.Layout))

	b.WriteString("<tr><td id=\"element-" + escape(el.ID) + "\"")
	if el.Layout.Align != "" {
		b.WriteString(` align="` + escape(el.Layout.Align) + `"`)
	}
	if el.Layout.Valign != "" {
		b.WriteString(` valign="` + escape(el.Layout.Valign) + `"`)
	}
	b.WriteString(` style="` + escape(layoutCSS) + `">`)
	b.WriteString(g.renderElement(el))
	b.WriteString("</td></tr>\n")
}

// layoutRecord converts the shared layout fields into a style record.
func layoutRecord(l *template.Layout) style.Record {
	record := style.Record{
		"width":     l.Width,
		"height":    l.Height,
		"maxWidth":  l.MaxWidth,
		"textAlign": l.Align,
	}
	if l.Padding != nil {
		record["padding"] = spacingGroup(l.Padding)
	}
	if l.Margin != nil {
		record["margin"] = spacingGroup(l.Margin)
	}
	return record
}

func spacingGroup(s *template.Spacing) map[string]string {
	return map[string]string{
		"top":    s.Top,
		"right":  s.Right,
		"bottom": s.Bottom,
		"left":   s.Left,
	}
}

func borderGroup(b *template.Border) map[string]string {
	return map[string]string{
		"width": b.Width,
		"style": b.Style,
		"color": b.Color,
	}
}

// escape escapes text for use in HTML content and attribute values.
func escape(s string) string {
	return html.EscapeString(s)
}
