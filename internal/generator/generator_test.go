package generator

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/nicka06/monketer/internal/template"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleTemplate() *template.Template {
	return &template.Template{
		ID:      "tpl-1",
		Name:    "Monthly digest",
		Version: template.CurrentVersion,
		GlobalStyles: template.GlobalStyles{
			BackgroundColor: "#f4f4f4",
			FontFamily:      "Arial, sans-serif",
			TextColor:       "#222222",
			ContentWidth:    "640px",
		},
		Sections: []template.Section{{
			ID: "s1",
			Styles: template.SectionStyles{
				BackgroundColor: "#ffffff",
				Padding:         &template.Spacing{Top: "16px", Bottom: "16px"},
			},
			Elements: []template.Element{
				{ID: "e1", Type: template.TypeHeader, Content: "Hello",
					Properties: &template.HeaderProps{Level: 2}},
				{ID: "e2", Type: template.TypeText, Content: "Some copy",
					Properties: &template.TextProps{}},
			},
		}},
	}
}

func TestGenerate_DocumentSkeleton(t *testing.T) {
	html := New(testLogger()).Generate(sampleTemplate())

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<meta charset="utf-8">`,
		"<title>Monthly digest</title>",
		`<table class="email-container" role="presentation" width="640"`,
		"max-width: 640px",
		`<td id="section-s1"`,
		`<td id="element-e1"`,
		`<td id="element-e2"`,
		`<h2 style="margin: 0;">Hello</h2>`,
		"<!--[if mso]>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	g := New(testLogger())
	tpl := sampleTemplate()

	first := g.Generate(tpl)
	for i := 0; i < 5; i++ {
		if got := g.Generate(tpl); got != first {
			t.Fatalf("run %d produced different output", i)
		}
	}
}

func TestGenerate_DefaultContentWidth(t *testing.T) {
	tpl := sampleTemplate()
	tpl.GlobalStyles.ContentWidth = ""
	html := New(testLogger()).Generate(tpl)

	if !strings.Contains(html, `width="600"`) {
		t.Error("default content width not applied")
	}
	if !strings.Contains(html, "max-width: 600px") {
		t.Error("default max-width not applied")
	}
}

func TestGenerate_SectionStyles(t *testing.T) {
	html := New(testLogger()).Generate(sampleTemplate())

	if !strings.Contains(html, "background-color: #ffffff") {
		t.Error("section background missing")
	}
	if !strings.Contains(html, "padding-top: 16px") || !strings.Contains(html, "padding-bottom: 16px") {
		t.Error("section padding missing")
	}
}

func TestGenerate_PlaceholderImage(t *testing.T) {
	tpl := &template.Template{
		ID: "tpl-1",
		Sections: []template.Section{{
			ID: "s1",
			Elements: []template.Element{{
				ID: "e1", Type: template.TypeImage,
				Properties: &template.ImageProps{Image: template.ImageStyle{
					Src: "@@PLACEHOLDER_IMAGE@@", Alt: "Hero",
					Width: "300px", Height: "200px",
				}},
			}},
		}},
	}
	html := New(testLogger()).Generate(tpl)

	for _, want := range []string{
		`src="https://placehold.co/300x200"`,
		`data-element-id="e1"`,
		`data-property-path="image.src"`,
		`data-placeholder="true"`,
		`data-placeholder-type="image"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerate_PlaceholderButton(t *testing.T) {
	tpl := &template.Template{
		ID: "tpl-1",
		Sections: []template.Section{{
			ID: "s1",
			Elements: []template.Element{{
				ID: "e1", Type: template.TypeButton, Content: "Buy",
				Properties: &template.ButtonProps{Button: template.ButtonStyle{Href: "@@PLACEHOLDER_LINK@@"}},
			}},
		}},
	}
	html := New(testLogger()).Generate(tpl)

	if strings.Contains(html, "<a ") {
		t.Error("placeholder button must not render a navigable link")
	}
	for _, want := range []string{
		"<span",
		`data-property-path="button.href"`,
		`data-placeholder-type="link"`,
		">Buy</span>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerate_ImageFallbackDimensions(t *testing.T) {
	tpl := &template.Template{
		ID: "tpl-1",
		Sections: []template.Section{{
			ID: "s1",
			Elements: []template.Element{{
				ID: "e1", Type: template.TypeImage,
				Properties: &template.ImageProps{Image: template.ImageStyle{
					Src: "https://example.com/a.png", Alt: "A", Width: "50%",
				}},
			}},
		}},
	}
	html := New(testLogger()).Generate(tpl)

	if !strings.Contains(html, `width="300" height="200"`) {
		t.Error("non-pixel dimensions must fall back to 300x200")
	}
}

func TestGenerate_UnknownTypeRendersComment(t *testing.T) {
	tpl := sampleTemplate()
	tpl.Sections[0].Elements = append(tpl.Sections[0].Elements, template.Element{
		ID: "e-bad", Type: "mystery",
	})
	html := New(testLogger()).Generate(tpl)

	if !strings.Contains(html, `<!-- unsupported element type "mystery" -->`) {
		t.Error("unknown element type must render as a comment")
	}
	if !strings.Contains(html, "<h2") {
		t.Error("remaining elements must still render")
	}
}

func TestGenerate_EscapesContent(t *testing.T) {
	tpl := sampleTemplate()
	tpl.Sections[0].Elements[1].Content = `<script>alert("x")</script>`
	html := New(testLogger()).Generate(tpl)

	if strings.Contains(html, "<script>") {
		t.Error("content must be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("escaped content missing")
	}
}

func TestGenerate_ElementMarkup(t *testing.T) {
	tests := []struct {
		name    string
		element template.Element
		want    []string
	}{
		{
			name: "subtext defaults",
			element: template.Element{ID: "e1", Type: template.TypeSubtext, Content: "Fine print",
				Properties: &template.SubtextProps{}},
			want: []string{"font-size: 14px", "color: #6c757d", ">Fine print</p>"},
		},
		{
			name: "button defaults",
			element: template.Element{ID: "e1", Type: template.TypeButton, Content: "Go",
				Properties: &template.ButtonProps{Button: template.ButtonStyle{Href: "https://x.test"}}},
			want: []string{`<a href="https://x.test"`, "background-color: #007bff", "border-radius: 5px", "display: inline-block"},
		},
		{
			name: "divider defaults",
			element: template.Element{ID: "e1", Type: template.TypeDivider,
				Properties: &template.DividerProps{}},
			want: []string{"<hr", "border-top: 1px solid #e0e0e0"},
		},
		{
			name: "spacer height",
			element: template.Element{ID: "e1", Type: template.TypeSpacer,
				Properties: &template.SpacerProps{Height: "32px"}},
			want: []string{`height="32"`, "line-height: 32px", "&nbsp;"},
		},
		{
			name: "quote accent border",
			element: template.Element{ID: "e1", Type: template.TypeQuote, Content: "Said so",
				Properties: &template.QuoteProps{}},
			want: []string{"border-left: 4px solid #007bff", "font-style: italic", ">Said so</p>"},
		},
		{
			name: "code block",
			element: template.Element{ID: "e1", Type: template.TypeCode, Content: "x := 1",
				Properties: &template.CodeProps{Language: "go"}},
			want: []string{`<code class="language-go">`, "font-family: monospace", "background-color: #f5f5f5"},
		},
		{
			name: "ordered list",
			element: template.Element{ID: "e1", Type: template.TypeList,
				Properties: &template.ListProps{Items: []string{"One", "Two"}, ListType: "ordered"}},
			want: []string{"<ol", "<li>One</li>", "<li>Two</li>", "</ol>"},
		},
		{
			name: "nav links",
			element: template.Element{ID: "e1", Type: template.TypeNav,
				Properties: &template.NavProps{Links: []template.NavLink{
					{Text: "Docs", Href: "https://x.test/docs"},
					{Text: "Blog", Href: "https://x.test/blog"},
				}}},
			want: []string{`<a href="https://x.test/docs"`, ">Docs</a>", `<a href="https://x.test/blog"`, ">Blog</a>"},
		},
		{
			name: "social icons",
			element: template.Element{ID: "e1", Type: template.TypeSocial,
				Properties: &template.SocialProps{Links: []template.SocialLink{
					{Platform: "twitter", Href: "https://x.test/t", IconSrc: "https://x.test/tw.png"},
				}}},
			want: []string{`<img src="https://x.test/tw.png" alt="twitter" width="24" height="24"`},
		},
		{
			name: "unsubscribe fallback text",
			element: template.Element{ID: "e1", Type: template.TypeUnsubscribe,
				Properties: &template.UnsubscribeProps{Href: "https://x.test/u"}},
			want: []string{`<a href="https://x.test/u"`, ">Unsubscribe</a>", "font-size: 12px"},
		},
		{
			name: "preview text hidden",
			element: template.Element{ID: "e1", Type: template.TypePreviewText, Content: "Teaser",
				Properties: &template.PreviewTextProps{}},
			want: []string{"display: none", "mso-hide: all", ">Teaser</div>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := &template.Template{
				ID:       "tpl-1",
				Sections: []template.Section{{ID: "s1", Elements: []template.Element{tt.element}}},
			}
			html := New(testLogger()).Generate(tpl)
			for _, want := range tt.want {
				if !strings.Contains(html, want) {
					t.Errorf("output missing %q", want)
				}
			}
		})
	}
}
