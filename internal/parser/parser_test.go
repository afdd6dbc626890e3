package parser

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/nicka06/monketer/internal/generator"
	"github.com/nicka06/monketer/internal/template"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seqIDs returns a deterministic id generator for tests.
func seqIDs() template.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func roundTripTemplate() *template.Template {
	return &template.Template{
		ID:      "tpl-1",
		Name:    "Launch announcement",
		Version: template.CurrentVersion,
		GlobalStyles: template.GlobalStyles{
			BackgroundColor: "#f4f4f4",
			FontFamily:      "Arial, sans-serif",
			TextColor:       "#222222",
			ContentWidth:    "600px",
		},
		Sections: []template.Section{
			{
				ID: "hero",
				Styles: template.SectionStyles{
					BackgroundColor: "#ffffff",
					Padding:         &template.Spacing{Top: "24px", Bottom: "24px"},
				},
				Elements: []template.Element{
					{ID: "e-header", Type: template.TypeHeader, Content: "Welcome aboard",
						Properties: &template.HeaderProps{Level: 2}},
					{ID: "e-text", Type: template.TypeText, Content: "We shipped something new.",
						Properties: &template.TextProps{}},
					{ID: "e-subtext", Type: template.TypeSubtext, Content: "Sent to early adopters only.",
						Properties: &template.SubtextProps{}},
					{ID: "e-button", Type: template.TypeButton, Content: "Get started",
						Properties: &template.ButtonProps{Button: template.ButtonStyle{
							Href: "https://example.com/start",
						}}},
					{ID: "e-image", Type: template.TypeImage, Content: "Product shot",
						Properties: &template.ImageProps{Image: template.ImageStyle{
							Src: "https://example.com/hero.png", Alt: "Product shot",
							Width: "300px", Height: "200px",
						}}},
				},
			},
			{
				ID: "body",
				Elements: []template.Element{
					{ID: "e-divider", Type: template.TypeDivider,
						Properties: &template.DividerProps{}},
					{ID: "e-spacer", Type: template.TypeSpacer,
						Properties: &template.SpacerProps{Height: "32px"}},
					{ID: "e-quote", Type: template.TypeQuote, Content: "It just works.",
						Properties: &template.QuoteProps{}},
					{ID: "e-code", Type: template.TypeCode, Content: "fmt.Println(42)",
						Properties: &template.CodeProps{Language: "go"}},
					{ID: "e-list", Type: template.TypeList,
						Properties: &template.ListProps{Items: []string{"One", "Two"}, ListType: "ordered"}},
				},
			},
			{
				ID: "footer",
				Elements: []template.Element{
					{ID: "e-nav", Type: template.TypeNav,
						Properties: &template.NavProps{Links: []template.NavLink{
							{Text: "Docs", Href: "https://example.com/docs"},
							{Text: "Blog", Href: "https://example.com/blog"},
						}}},
					{ID: "e-social", Type: template.TypeSocial,
						Properties: &template.SocialProps{Links: []template.SocialLink{
							{Platform: "twitter", Href: "https://twitter.com/example", IconSrc: "https://example.com/tw.png"},
							{Platform: "github", Href: "https://github.com/example", IconSrc: "https://example.com/gh.png"},
						}}},
					{ID: "e-unsub", Type: template.TypeUnsubscribe, Content: "Unsubscribe",
						Properties: &template.UnsubscribeProps{Href: "https://example.com/unsubscribe"}},
				},
			},
		},
	}
}

// Generated HTML must re-parse into the same structure: same section and
// element ids, same types, same content.
func TestParse_RoundTrip(t *testing.T) {
	want := roundTripTemplate()
	html := generator.New(testLogger()).Generate(want)

	got, err := New(testLogger(), seqIDs()).Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got.Name != want.Name {
		t.Errorf("Name = %q, want %q", got.Name, want.Name)
	}
	if got.GlobalStyles != want.GlobalStyles {
		t.Errorf("GlobalStyles = %+v, want %+v", got.GlobalStyles, want.GlobalStyles)
	}
	if len(got.Sections) != len(want.Sections) {
		t.Fatalf("got %d sections, want %d", len(got.Sections), len(want.Sections))
	}

	for i, wantSec := range want.Sections {
		gotSec := got.Sections[i]
		if gotSec.ID != wantSec.ID {
			t.Errorf("section %d: ID = %q, want %q", i, gotSec.ID, wantSec.ID)
		}
		if len(gotSec.Elements) != len(wantSec.Elements) {
			t.Fatalf("section %q: got %d elements, want %d",
				wantSec.ID, len(gotSec.Elements), len(wantSec.Elements))
		}
		for j, wantEl := range wantSec.Elements {
			gotEl := gotSec.Elements[j]
			if gotEl.ID != wantEl.ID {
				t.Errorf("element %q: ID = %q, want %q", wantEl.ID, gotEl.ID, wantEl.ID)
			}
			if gotEl.Type != wantEl.Type {
				t.Errorf("element %q: Type = %q, want %q", wantEl.ID, gotEl.Type, wantEl.Type)
			}
			if gotEl.Content != wantEl.Content {
				t.Errorf("element %q: Content = %q, want %q", wantEl.ID, gotEl.Content, wantEl.Content)
			}
		}
	}
}

func TestParse_RoundTripSectionStyles(t *testing.T) {
	html := generator.New(testLogger()).Generate(roundTripTemplate())

	got, err := New(testLogger(), seqIDs()).Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	hero := got.Section("hero")
	if hero == nil {
		t.Fatal("hero section missing")
	}
	if hero.Styles.BackgroundColor != "#ffffff" {
		t.Errorf("hero background = %q, want %q", hero.Styles.BackgroundColor, "#ffffff")
	}
	if hero.Styles.Padding == nil || hero.Styles.Padding.Top != "24px" || hero.Styles.Padding.Bottom != "24px" {
		t.Errorf("hero padding = %+v, want top/bottom 24px", hero.Styles.Padding)
	}
}

// A placeholder button renders as a span; re-parsing must still recover a
// button element with the sentinel href.
func TestParse_PlaceholderButton(t *testing.T) {
	tpl := &template.Template{
		ID: "tpl-1",
		Sections: []template.Section{{
			ID: "s1",
			Elements: []template.Element{{
				ID: "e1", Type: template.TypeButton, Content: "Buy now",
				Properties: &template.ButtonProps{},
			}},
		}},
	}
	html := generator.New(testLogger()).Generate(tpl)

	got, err := New(testLogger(), seqIDs()).Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got.Sections) != 1 || len(got.Sections[0].Elements) != 1 {
		t.Fatalf("unexpected shape: %+v", got.Sections)
	}
	el := got.Sections[0].Elements[0]
	if el.Type != template.TypeButton {
		t.Fatalf("Type = %q, want %q", el.Type, template.TypeButton)
	}
	props, ok := el.Properties.(*template.ButtonProps)
	if !ok {
		t.Fatalf("Properties = %T, want *ButtonProps", el.Properties)
	}
	if props.Button.Href != "#" {
		t.Errorf("Href = %q, want placeholder %q", props.Button.Href, "#")
	}
}

func TestParse_SkipsBadRows(t *testing.T) {
	html := `<html><body>
<table class="email-container"><tbody>
<tr><td id="section-s1">
<table><tbody>
<tr><td id="element-ok"><p style="">Hello</p></td></tr>
<tr><td id="element-empty"></td></tr>
<tr><td id="element-badbutton"><a style="display: inline-block; background-color: #000000;">No target</a></td></tr>
</tbody></table>
</td></tr>
</tbody></table>
</body></html>`

	got, err := New(testLogger(), seqIDs()).Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(got.Sections))
	}
	els := got.Sections[0].Elements
	if len(els) != 1 {
		t.Fatalf("got %d elements, want 1 (bad rows skipped): %+v", len(els), els)
	}
	if els[0].ID != "ok" || els[0].Content != "Hello" {
		t.Errorf("surviving element = %+v, want id ok content Hello", els[0])
	}
}

func TestParse_NoContainer(t *testing.T) {
	got, err := New(testLogger(), seqIDs()).Parse("<html><body><p>plain page</p></body></html>")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got.Sections) != 0 {
		t.Errorf("got %d sections, want 0", len(got.Sections))
	}
	if got.ID == "" {
		t.Error("template id not assigned")
	}
}

// Markup without our id conventions still parses; missing ids are filled
// deterministically by the supplied generator.
func TestParse_AssignsMissingIDs(t *testing.T) {
	html := `<html><body>
<table class="email-container"><tbody>
<tr><td>
<table><tbody>
<tr><td><p>First</p></td></tr>
<tr><td><p>Second</p></td></tr>
</tbody></table>
</td></tr>
</tbody></table>
</body></html>`

	got, err := New(testLogger(), seqIDs()).Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(got.Sections))
	}
	sec := got.Sections[0]
	if sec.ID == "" {
		t.Error("section id not assigned")
	}
	for i, el := range sec.Elements {
		if el.ID == "" {
			t.Errorf("element %d id not assigned", i)
		}
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate() after parse = %v", err)
	}
}

func TestParse_ElementLayout(t *testing.T) {
	html := `<html><body>
<table class="email-container"><tbody>
<tr><td id="section-s1">
<table><tbody>
<tr><td id="element-e1" align="center" valign="top" style="padding-top: 8px; width: 200px;"><p>Hi</p></td></tr>
</tbody></table>
</td></tr>
</tbody></table>
</body></html>`

	got, err := New(testLogger(), seqIDs()).Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	sec := got.Section("s1")
	if sec == nil {
		t.Fatal("section s1 missing")
	}
	el := sec.Element("e1")
	if el == nil {
		t.Fatal("element e1 missing")
	}
	if el.Layout.Align != "center" {
		t.Errorf("Align = %q, want center", el.Layout.Align)
	}
	if el.Layout.Valign != "top" {
		t.Errorf("Valign = %q, want top", el.Layout.Valign)
	}
	if el.Layout.Width != "200px" {
		t.Errorf("Width = %q, want 200px", el.Layout.Width)
	}
	if el.Layout.Padding == nil || el.Layout.Padding.Top != "8px" {
		t.Errorf("Padding = %+v, want top 8px", el.Layout.Padding)
	}
}

func TestParse_EmptySection(t *testing.T) {
	html := `<html><body>
<table class="email-container"><tbody>
<tr><td id="section-gap" style="padding-top: 40px;"></td></tr>
</tbody></table>
</body></html>`

	got, err := New(testLogger(), seqIDs()).Parse(html)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(got.Sections))
	}
	sec := got.Sections[0]
	if sec.ID != "gap" {
		t.Errorf("section id = %q, want gap", sec.ID)
	}
	if len(sec.Elements) != 0 {
		t.Errorf("got %d elements, want 0", len(sec.Elements))
	}
	if sec.Styles.Padding == nil || sec.Styles.Padding.Top != "40px" {
		t.Errorf("Styles.Padding = %+v, want top 40px", sec.Styles.Padding)
	}
}
