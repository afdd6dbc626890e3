package generator

import (
	"fmt"
	"strings"

	"github.com/nicka06/monketer/internal/style"
	"github.com/nicka06/monketer/internal/template"
)

// Documented defaults for absent property sub-fields.
const (
	defaultButtonBackground = "#007bff"
	defaultButtonTextColor  = "#ffffff"
	defaultButtonRadius     = "5px"
	defaultImageWidth       = "300"
	defaultImageHeight      = "200"
	defaultImageObjectFit   = "cover"
	defaultDividerColor     = "#e0e0e0"
	defaultSpacerHeight     = "20"
	defaultMutedColor       = "#6c757d"
	defaultQuoteBorderColor = "#007bff"
	defaultCodeBackground   = "#f5f5f5"
	defaultBoxBackground    = "#f8f9fa"
)

// renderElement dispatches on the element's type. The type set is closed;
// an unknown value is a programming-error-class condition and renders as an
// HTML comment so one bad element cannot blank the whole email.
func (g *Generator) renderElement(el *template.Element) string {
	switch props := el.Properties.(type) {
	case *template.HeaderProps:
		return g.renderHeader(el, props)
	case *template.TextProps:
		return g.renderText(el, props.Typography)
	case *template.SubtextProps:
		return g.renderSubtext(el, props)
	case *template.ButtonProps:
		return g.renderButton(el, props)
	case *template.ImageProps:
		return g.renderImage(el, props)
	case *template.DividerProps:
		return g.renderDivider(props)
	case *template.SpacerProps:
		return g.renderSpacer(props)
	case *template.QuoteProps:
		return g.renderQuote(el, props)
	case *template.CodeProps:
		return g.renderCode(el, props)
	case *template.ListProps:
		return g.renderList(el, props)
	case *template.IconProps:
		return g.renderIcon(el, props)
	case *template.NavProps:
		return g.renderNav(el, props)
	case *template.SocialProps:
		return g.renderSocial(el, props)
	case *template.AppStoreBadgeProps:
		return g.renderAppStoreBadge(el, props)
	case *template.UnsubscribeProps:
		return g.renderFooterLink(el, props.Href, "unsubscribe.href", "Unsubscribe", props.Typography)
	case *template.PreferencesProps:
		return g.renderFooterLink(el, props.Href, "preferences.href", "Manage preferences", props.Typography)
	case *template.PreviewTextProps:
		return g.renderPreviewText(el)
	case *template.ContainerProps:
		return g.renderBoxLike(el, props.BackgroundColor, props.Border, props.BorderRadius)
	case *template.BoxProps:
		bg := props.BackgroundColor
		if bg == "" {
			bg = defaultBoxBackground
		}
		return g.renderBoxLike(el, bg, props.Border, props.BorderRadius)
	case *template.FooterProps:
		return g.renderFooter(el, props)
	default:
		g.logger.Error("unknown element type", "id", el.ID, "type", el.Type)
		return fmt.Sprintf("<!-- unsupported element type %q -->", el.Type)
	}
}

// typographyRecord always populates every key, so callers can test
// record["fontSize"] == "" for "not set". A bare lookup on an absent key
// would yield a nil any, which never compares equal to the empty string.
func typographyRecord(t *template.Typography) style.Record {
	if t == nil {
		t = &template.Typography{}
	}
	return style.Record{
		"fontFamily": t.FontFamily,
		"fontSize":   t.FontSize,
		"fontWeight": t.FontWeight,
		"color":      t.Color,
		"textAlign":  t.TextAlign,
		"lineHeight": t.LineHeight,
	}
}

func (g *Generator) renderHeader(el *template.Element, props *template.HeaderProps) string {
	level := props.Level
	if level < 1 || level > 3 {
		level = 1
	}
	record := typographyRecord(props.Typography)
	record["margin"] = "0"
	return fmt.Sprintf(`<h%d style="%s">%s</h%d>`, level, escape(style.Encode(record)), escape(el.Content), level)
}

// renderText emits a body-copy paragraph. Body copy never forces a font
// size below the parser's subtext threshold, so text and subtext stay
// distinguishable on re-parse.
func (g *Generator) renderText(el *template.Element, typography *template.Typography) string {
	record := typographyRecord(typography)
	record["margin"] = "0"
	return `<p style="` + escape(style.Encode(record)) + `">` + escape(el.Content) + `</p>`
}

// renderSubtext emits muted secondary copy. The 14px size and gray color
// defaults are what the parser's subtext heuristic keys off, so they are
// part of the parser/generator contract.
func (g *Generator) renderSubtext(el *template.Element, props *template.SubtextProps) string {
	record := typographyRecord(props.Typography)
	record["margin"] = "0"
	if record["fontSize"] == "" {
		record["fontSize"] = "14px"
	}
	if record["color"] == "" {
		record["color"] = defaultMutedColor
	}
	return `<p style="` + escape(style.Encode(record)) + `">` + escape(el.Content) + `</p>`
}

// renderButton emits the call-to-action. When the target is still a
// placeholder the button renders as a span so the editor preview has no
// navigable dead link, but keeps the button chrome and the marker attrs.
func (g *Generator) renderButton(el *template.Element, props *template.ButtonProps) string {
	href := props.Button.Href
	if href == "" {
		href = PlaceholderHref
	}
	background := props.Button.BackgroundColor
	if background == "" {
		background = defaultButtonBackground
	}
	textColor := props.Button.TextColor
	if textColor == "" {
		textColor = defaultButtonTextColor
	}
	radius := props.Button.BorderRadius
	if radius == "" {
		radius = defaultButtonRadius
	}

	record := typographyRecord(props.Typography)
	record["display"] = "inline-block"
	record["backgroundColor"] = background
	record["borderRadius"] = radius
	record["padding"] = "12px 24px"
	record["textDecoration"] = "none"
	if record["color"] == "" {
		record["color"] = textColor
	}
	css := escape(style.Encode(record))

	if isPlaceholderLink(href) {
		return `<span style="` + css + `"` + placeholderAttrs(el.ID, "button.href", "link") + `>` +
			escape(el.Content) + `</span>`
	}

	target := ""
	if props.Button.Target != "" {
		target = ` target="` + escape(props.Button.Target) + `"`
	}
	return `<a href="` + escape(href) + `"` + target + ` style="` + css + `">` + escape(el.Content) + `</a>`
}

// renderImage emits a fixed-size wrapper div plus the img tag. Pixel width
// and height are mandatory on output; absent or non-pixel values fall back
// to 300x200 with a warning.
func (g *Generator) renderImage(el *template.Element, props *template.ImageProps) string {
	width := pixelValue(props.Image.Width)
	if width == "" {
		width = pixelValue(el.Layout.Width)
	}
	height := pixelValue(props.Image.Height)
	if height == "" {
		height = pixelValue(el.Layout.Height)
	}
	if width == "" || height == "" {
		g.logger.Warn("image without pixel dimensions, using fallback size",
			"id", el.ID, "width", props.Image.Width, "height", props.Image.Height)
		if width == "" {
			width = defaultImageWidth
		}
		if height == "" {
			height = defaultImageHeight
		}
	}

	objectFit := props.Image.ObjectFit
	if objectFit == "" {
		objectFit = defaultImageObjectFit
	}

	src := props.Image.Src
	placeholder := isPlaceholderImage(src)
	if src == "" || src == PlaceholderHref || src == PlaceholderImage {
		src = fmt.Sprintf(fallbackImageSrc, width, height)
	}

	imgRecord := style.Record{
		"display":   "block",
		"width":     "100%",
		"height":    "100%",
		"objectFit": objectFit,
	}
	if props.Border != nil {
		imgRecord["border"] = borderGroup(props.Border)
	}

	img := `<img src="` + escape(src) + `" alt="` + escape(props.Image.Alt) +
		`" width="` + width + `" height="` + height +
		`" style="` + escape(style.Encode(imgRecord)) + `"`
	if placeholder {
		img += placeholderAttrs(el.ID, "image.src", "image")
	}
	img += ">"

	wrapper := fmt.Sprintf(`<div style="height: %spx; overflow: hidden; width: %spx;">%s</div>`, height, width, img)

	link := props.Image.Link
	if link == "" {
		return wrapper
	}
	if isPlaceholderLink(link) {
		return `<span` + placeholderAttrs(el.ID, "image.link", "link") + `>` + wrapper + `</span>`
	}
	return `<a href="` + escape(link) + `">` + wrapper + `</a>`
}

func (g *Generator) renderDivider(props *template.DividerProps) string {
	thickness := props.Thickness
	if thickness == "" {
		thickness = "1px"
	}
	lineStyle := props.Style
	if lineStyle == "" {
		lineStyle = "solid"
	}
	color := props.Color
	if color == "" {
		color = defaultDividerColor
	}
	css := style.Encode(style.Record{
		"border":    "none",
		"borderTop": thickness + " " + lineStyle + " " + color,
		"margin":    "0",
	})
	return `<hr style="` + escape(css) + `">`
}

// renderSpacer emits the standard email-client spacer hack: a table cell
// with explicit height, line-height and a tiny font size.
func (g *Generator) renderSpacer(props *template.SpacerProps) string {
	height := pixelValue(props.Height)
	if height == "" {
		height = defaultSpacerHeight
	}
	return fmt.Sprintf(`<table role="presentation" width="100%%" cellpadding="0" cellspacing="0" border="0"><tbody><tr><td height="%s" style="font-size: 1px; height: %spx; line-height: %spx;">&nbsp;</td></tr></tbody></table>`,
		height, height, height)
}

// renderQuote emits a table cell with the left accent border the parser's
// quote classifier looks for.
func (g *Generator) renderQuote(el *template.Element, props *template.QuoteProps) string {
	borderColor := props.BorderColor
	if borderColor == "" {
		borderColor = defaultQuoteBorderColor
	}
	cellRecord := style.Record{
		"borderLeft":      "4px solid " + borderColor,
		"backgroundColor": props.BackgroundColor,
		"padding":         "12px 16px",
	}
	textRecord := typographyRecord(props.Typography)
	textRecord["margin"] = "0"
	if textRecord["fontStyle"] == nil || textRecord["fontStyle"] == "" {
		textRecord["fontStyle"] = "italic"
	}
	return fmt.Sprintf(`<table role="presentation" width="100%%" cellpadding="0" cellspacing="0" border="0"><tbody><tr><td style="%s"><p style="%s">%s</p></td></tr></tbody></table>`,
		escape(style.Encode(cellRecord)), escape(style.Encode(textRecord)), escape(el.Content))
}

func (g *Generator) renderCode(el *template.Element, props *template.CodeProps) string {
	background := props.BackgroundColor
	if background == "" {
		background = defaultCodeBackground
	}
	divRecord := style.Record{
		"backgroundColor": background,
		"borderRadius":    "4px",
		"padding":         "12px 16px",
	}
	preRecord := style.Record{
		"margin":     "0",
		"fontFamily": "monospace",
		"fontSize":   "13px",
		"whiteSpace": "pre-wrap",
		"color":      props.TextColor,
	}
	classAttr := ""
	if props.Language != "" {
		classAttr = ` class="language-` + escape(props.Language) + `"`
	}
	return `<div style="` + escape(style.Encode(divRecord)) + `"><pre style="` + escape(style.Encode(preRecord)) + `"><code` + classAttr + `>` +
		escape(el.Content) + `</code></pre></div>`
}

func (g *Generator) renderList(el *template.Element, props *template.ListProps) string {
	tag := "ul"
	if props.ListType == "ordered" {
		tag = "ol"
	}
	record := style.Record{
		"margin":        "0",
		"paddingLeft":   "24px",
		"listStyleType": props.MarkerStyle,
	}
	var b strings.Builder
	b.WriteString("<" + tag + ` style="` + escape(style.Encode(record)) + `">`)
	for _, item := range props.Items {
		b.WriteString("<li>" + escape(item) + "</li>")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

func (g *Generator) renderIcon(el *template.Element, props *template.IconProps) string {
	size := pixelValue(props.Size)
	if size == "" {
		size = "24"
	}
	alt := props.Alt
	if alt == "" {
		alt = el.Content
	}
	img := `<img src="` + escape(props.Src) + `" alt="` + escape(alt) +
		`" width="` + size + `" height="` + size + `" style="display: inline-block;"`
	if isPlaceholderImage(props.Src) {
		img += placeholderAttrs(el.ID, "src", "image")
	}
	img += ">"
	if props.Link == "" || isPlaceholderLink(props.Link) {
		return img
	}
	return `<a href="` + escape(props.Link) + `">` + img + `</a>`
}

// renderNav emits a single paragraph holding multiple text links, which is
// the shape the parser's multi-link classifier reads back as nav.
func (g *Generator) renderNav(el *template.Element, props *template.NavProps) string {
	record := typographyRecord(props.Typography)
	record["margin"] = "0"
	var b strings.Builder
	b.WriteString(`<p style="` + escape(style.Encode(record)) + `">`)
	for i, link := range props.Links {
		if i > 0 {
			b.WriteString(" ")
		}
		href := link.Href
		attrs := ""
		if isPlaceholderLink(href) {
			href = PlaceholderHref
			attrs = placeholderAttrs(el.ID, fmt.Sprintf("links.%d.href", i), "link")
		}
		b.WriteString(`<a href="` + escape(href) + `" style="margin: 0 8px; text-decoration: none;"` + attrs + `>` +
			escape(link.Text) + `</a>`)
	}
	b.WriteString("</p>")
	return b.String()
}

// renderSocial emits a paragraph of image links; the image inside each link
// is what distinguishes social from nav on re-parse.
func (g *Generator) renderSocial(el *template.Element, props *template.SocialProps) string {
	var b strings.Builder
	b.WriteString(`<p style="margin: 0;">`)
	for i, link := range props.Links {
		if i > 0 {
			b.WriteString(" ")
		}
		href := link.Href
		attrs := ""
		if isPlaceholderLink(href) {
			href = PlaceholderHref
			attrs = placeholderAttrs(el.ID, fmt.Sprintf("links.%d.href", i), "link")
		}
		b.WriteString(`<a href="` + escape(href) + `" style="margin: 0 6px; text-decoration: none;"` + attrs + `>`)
		b.WriteString(`<img src="` + escape(link.IconSrc) + `" alt="` + escape(link.Platform) + `" width="24" height="24" style="display: inline-block;">`)
		b.WriteString("</a>")
	}
	b.WriteString("</p>")
	return b.String()
}

func (g *Generator) renderAppStoreBadge(el *template.Element, props *template.AppStoreBadgeProps) string {
	alt := "Download on the App Store"
	if props.Store == "google" {
		alt = "Get it on Google Play"
	}
	img := `<img src="` + escape(props.BadgeSrc) + `" alt="` + alt + `" height="40" style="display: inline-block; height: 40px;"`
	if isPlaceholderImage(props.BadgeSrc) {
		img += placeholderAttrs(el.ID, "badgeSrc", "image")
	}
	img += ">"
	if props.Href == "" || isPlaceholderLink(props.Href) {
		return `<span` + placeholderAttrs(el.ID, "href", "link") + `>` + img + `</span>`
	}
	return `<a href="` + escape(props.Href) + `">` + img + `</a>`
}

// renderFooterLink covers unsubscribe and preferences: a small muted
// paragraph with a single link whose text the parser matches on.
func (g *Generator) renderFooterLink(el *template.Element, href, propertyPath, fallbackText string, typography *template.Typography) string {
	text := el.Content
	if text == "" {
		text = fallbackText
	}
	record := typographyRecord(typography)
	record["margin"] = "0"
	if record["fontSize"] == "" {
		record["fontSize"] = "12px"
	}
	if record["color"] == "" {
		record["color"] = defaultMutedColor
	}

	attrs := ""
	linkHref := href
	if isPlaceholderLink(linkHref) {
		linkHref = PlaceholderHref
		attrs = placeholderAttrs(el.ID, propertyPath, "link")
	}
	return `<p style="` + escape(style.Encode(record)) + `"><a href="` + escape(linkHref) +
		`" style="color: ` + defaultMutedColor + `; text-decoration: underline;"` + attrs + `>` +
		escape(text) + `</a></p>`
}

// renderPreviewText emits the hidden inbox-preview line.
func (g *Generator) renderPreviewText(el *template.Element) string {
	css := style.Encode(style.Record{
		"display":    "none",
		"fontSize":   "1px",
		"lineHeight": "1px",
		"maxHeight":  "0",
		"maxWidth":   "0",
		"opacity":    "0",
		"overflow":   "hidden",
		"msoHide":    "all",
	})
	return `<div style="` + escape(css) + `">` + escape(el.Content) + `</div>`
}

func (g *Generator) renderBoxLike(el *template.Element, background string, border *template.Border, radius string) string {
	record := style.Record{
		"backgroundColor": background,
		"borderRadius":    radius,
		"padding":         "16px",
	}
	if border != nil {
		record["border"] = borderGroup(border)
	}
	return `<div style="` + escape(style.Encode(record)) + `">` + escape(el.Content) + `</div>`
}

func (g *Generator) renderFooter(el *template.Element, props *template.FooterProps) string {
	record := typographyRecord(props.Typography)
	record["margin"] = "0"
	if record["fontSize"] == "" {
		record["fontSize"] = "12px"
	}
	if record["color"] == "" {
		record["color"] = defaultMutedColor
	}
	if props.BackgroundColor != "" {
		record["backgroundColor"] = props.BackgroundColor
	}
	return `<p style="` + escape(style.Encode(record)) + `">` + escape(el.Content) + `</p>`
}

// pixelValue returns the numeric part of a "<n>px" string, or "" when the
// value is absent or not a plain pixel length.
func pixelValue(s string) string {
	if !strings.HasSuffix(s, "px") {
		return ""
	}
	n := strings.TrimSuffix(s, "px")
	if n == "" {
		return ""
	}
	for _, r := range n {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return n
}
