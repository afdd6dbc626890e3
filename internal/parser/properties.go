package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nicka06/monketer/internal/style"
	"github.com/nicka06/monketer/internal/template"
)

// extractProperties performs the type-specific extraction and validation.
// It returns the populated variant plus the element's content string, or a
// nil variant when validation fails and the element must be dropped. Each
// branch is total over its own well-formed input; failure is always local
// to the one element.
func (p *Parser) extractProperties(t template.ElementType, sel *goquery.Selection) (template.Properties, string) {
	css := style.Decode(sel.AttrOr("style", ""))

	switch t {
	case template.TypeHeader:
		return extractHeader(sel, css)
	case template.TypeText:
		return &template.TextProps{Typography: typographyFrom(css)}, elementText(sel)
	case template.TypeSubtext:
		return &template.SubtextProps{Typography: typographyFrom(css)}, elementText(sel)
	case template.TypeButton:
		return extractButton(sel, css)
	case template.TypeImage:
		return extractImage(sel, css)
	case template.TypeDivider:
		return extractDivider(css), ""
	case template.TypeSpacer:
		return extractSpacer(sel), ""
	case template.TypeQuote:
		return extractQuote(sel)
	case template.TypeCode:
		return extractCode(sel, css)
	case template.TypeList:
		return extractList(sel, css)
	case template.TypeNav:
		return extractNav(sel, css)
	case template.TypeSocial:
		return extractSocial(sel)
	case template.TypeUnsubscribe:
		props, text := extractFooterLink(sel)
		if props == nil {
			return nil, ""
		}
		return &template.UnsubscribeProps{Href: props.Href, Typography: props.Typography}, text
	case template.TypePreferences:
		props, text := extractFooterLink(sel)
		if props == nil {
			return nil, ""
		}
		return &template.PreferencesProps{Href: props.Href, Typography: props.Typography}, text
	case template.TypePreviewText:
		return &template.PreviewTextProps{}, elementText(sel)
	}

	// Types without a dedicated extraction branch re-enter the model as
	// plain text rather than being dropped.
	return &template.TextProps{Typography: typographyFrom(css)}, elementText(sel)
}

func extractHeader(sel *goquery.Selection, css map[string]string) (template.Properties, string) {
	level := 1
	switch goquery.NodeName(sel) {
	case "h2":
		level = 2
	case "h3":
		level = 3
	}
	return &template.HeaderProps{Level: level, Typography: typographyFrom(css)}, elementText(sel)
}

// extractButton validates the one hard requirement of a button: a link
// target. Placeholder spans carry the sentinel instead of a real href.
func extractButton(sel *goquery.Selection, css map[string]string) (template.Properties, string) {
	href := ""
	switch goquery.NodeName(sel) {
	case "a":
		href = sel.AttrOr("href", "")
	case "span":
		href = "#"
	}
	if href == "" {
		return nil, ""
	}

	return &template.ButtonProps{
		Button: template.ButtonStyle{
			Href:            href,
			Target:          sel.AttrOr("target", ""),
			BackgroundColor: css["backgroundColor"],
			TextColor:       css["color"],
			BorderRadius:    css["borderRadius"],
		},
	}, elementText(sel)
}

func extractImage(sel *goquery.Selection, css map[string]string) (template.Properties, string) {
	img := sel
	if goquery.NodeName(sel) != "img" {
		img = sel.Find("img").First()
		if img.Length() == 0 {
			return nil, ""
		}
	}

	imgCSS := style.Decode(img.AttrOr("style", ""))
	props := &template.ImageProps{
		Image: template.ImageStyle{
			Src:       img.AttrOr("src", ""),
			Alt:       img.AttrOr("alt", ""),
			Width:     pixelString(img.AttrOr("width", "")),
			Height:    pixelString(img.AttrOr("height", "")),
			ObjectFit: imgCSS["objectFit"],
		},
	}
	if goquery.NodeName(sel) == "a" {
		props.Image.Link = sel.AttrOr("href", "")
	}
	return props, props.Image.Alt
}

// extractDivider reads the rule styling off the border-top shorthand the
// generator emits ("<thickness> <style> <color>").
func extractDivider(css map[string]string) template.Properties {
	props := &template.DividerProps{}
	parts := strings.Fields(css["borderTop"])
	if len(parts) >= 3 {
		props.Thickness = parts[0]
		props.Style = parts[1]
		props.Color = strings.Join(parts[2:], " ")
	}
	return props
}

func extractSpacer(sel *goquery.Selection) template.Properties {
	cell := sel.Find("td").First()
	props := &template.SpacerProps{}
	if h := cell.AttrOr("height", ""); h != "" {
		props.Height = h + "px"
	} else {
		cellCSS := style.Decode(cell.AttrOr("style", ""))
		props.Height = cellCSS["height"]
	}
	return props
}

func extractQuote(sel *goquery.Selection) (template.Properties, string) {
	cell := sel.Find("td").First()
	cellCSS := style.Decode(cell.AttrOr("style", ""))

	props := &template.QuoteProps{
		BackgroundColor: cellCSS["backgroundColor"],
	}
	// border-left shorthand: "<width> <style> <color>".
	if parts := strings.Fields(cellCSS["borderLeft"]); len(parts) >= 3 {
		props.BorderColor = strings.Join(parts[2:], " ")
	}

	text := cell.Find("p").First()
	if text.Length() > 0 {
		props.Typography = typographyFrom(style.Decode(text.AttrOr("style", "")))
		return props, elementText(text)
	}
	return props, elementText(cell)
}

func extractCode(sel *goquery.Selection, css map[string]string) (template.Properties, string) {
	code := sel.Find("pre code").First()
	props := &template.CodeProps{
		BackgroundColor: css["backgroundColor"],
	}
	if class := code.AttrOr("class", ""); strings.HasPrefix(class, "language-") {
		props.Language = strings.TrimPrefix(class, "language-")
	}
	preCSS := style.Decode(sel.Find("pre").First().AttrOr("style", ""))
	props.TextColor = preCSS["color"]
	return props, code.Text()
}

func extractList(sel *goquery.Selection, css map[string]string) (template.Properties, string) {
	props := &template.ListProps{
		Items:       []string{},
		ListType:    "unordered",
		MarkerStyle: css["listStyleType"],
	}
	if goquery.NodeName(sel) == "ol" {
		props.ListType = "ordered"
	}
	sel.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		props.Items = append(props.Items, elementText(li))
	})
	return props, ""
}

func extractNav(sel *goquery.Selection, css map[string]string) (template.Properties, string) {
	props := &template.NavProps{
		Links:      []template.NavLink{},
		Typography: typographyFrom(css),
	}
	sel.ChildrenFiltered("a").Each(func(_ int, a *goquery.Selection) {
		props.Links = append(props.Links, template.NavLink{
			Text: elementText(a),
			Href: a.AttrOr("href", ""),
		})
	})
	return props, ""
}

func extractSocial(sel *goquery.Selection) (template.Properties, string) {
	props := &template.SocialProps{Links: []template.SocialLink{}}
	sel.ChildrenFiltered("a").Each(func(_ int, a *goquery.Selection) {
		img := a.Find("img").First()
		props.Links = append(props.Links, template.SocialLink{
			Platform: img.AttrOr("alt", ""),
			Href:     a.AttrOr("href", ""),
			IconSrc:  img.AttrOr("src", ""),
		})
	})
	return props, ""
}

// extractFooterLink handles the shared shape of unsubscribe/preferences.
func extractFooterLink(sel *goquery.Selection) (*template.UnsubscribeProps, string) {
	link := sel.ChildrenFiltered("a").First()
	if link.Length() == 0 {
		return nil, ""
	}
	return &template.UnsubscribeProps{
		Href:       link.AttrOr("href", ""),
		Typography: typographyFrom(style.Decode(sel.AttrOr("style", ""))),
	}, elementText(link)
}

// typographyFrom builds a typography record from decoded styles, or nil
// when no typography key is present.
func typographyFrom(css map[string]string) *template.Typography {
	t := &template.Typography{
		FontFamily: css["fontFamily"],
		FontSize:   css["fontSize"],
		FontWeight: css["fontWeight"],
		Color:      css["color"],
		TextAlign:  css["textAlign"],
		LineHeight: css["lineHeight"],
	}
	if *t == (template.Typography{}) {
		return nil
	}
	return t
}

// elementText returns the trimmed text content of a node.
func elementText(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

// pixelString converts a bare numeric attribute value into the model's
// pixel-string convention.
func pixelString(v string) string {
	if v == "" {
		return ""
	}
	if strings.HasSuffix(v, "px") {
		return v
	}
	return v + "px"
}
