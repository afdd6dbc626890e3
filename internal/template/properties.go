package template

import "fmt"

// ElementType identifies an element's kind and determines the concrete shape
// of its Properties. The set is closed; anything else is a construction error.
type ElementType string

const (
	TypeHeader        ElementType = "header"
	TypeText          ElementType = "text"
	TypeButton        ElementType = "button"
	TypeImage         ElementType = "image"
	TypeDivider       ElementType = "divider"
	TypeSpacer        ElementType = "spacer"
	TypeSubtext       ElementType = "subtext"
	TypeQuote         ElementType = "quote"
	TypeCode          ElementType = "code"
	TypeList          ElementType = "list"
	TypeIcon          ElementType = "icon"
	TypeNav           ElementType = "nav"
	TypeSocial        ElementType = "social"
	TypeAppStoreBadge ElementType = "appStoreBadge"
	TypeUnsubscribe   ElementType = "unsubscribe"
	TypePreferences   ElementType = "preferences"
	TypePreviewText   ElementType = "previewText"
	TypeContainer     ElementType = "container"
	TypeBox           ElementType = "box"
	TypeFooter        ElementType = "footer"
)

// Valid reports whether t is one of the closed element types.
func (t ElementType) Valid() bool {
	switch t {
	case TypeHeader, TypeText, TypeButton, TypeImage, TypeDivider, TypeSpacer,
		TypeSubtext, TypeQuote, TypeCode, TypeList, TypeIcon, TypeNav,
		TypeSocial, TypeAppStoreBadge, TypeUnsubscribe, TypePreferences,
		TypePreviewText, TypeContainer, TypeBox, TypeFooter:
		return true
	}
	return false
}

// Properties is the sealed type-specific payload of an element. Each variant
// reports the element type it belongs to, which must match Element.Type.
type Properties interface {
	ElementType() ElementType
}

// NewProperties returns the zero-value variant for the given element type.
func NewProperties(t ElementType) (Properties, error) {
	switch t {
	case TypeHeader:
		return &HeaderProps{}, nil
	case TypeText:
		return &TextProps{}, nil
	case TypeButton:
		return &ButtonProps{}, nil
	case TypeImage:
		return &ImageProps{}, nil
	case TypeDivider:
		return &DividerProps{}, nil
	case TypeSpacer:
		return &SpacerProps{}, nil
	case TypeSubtext:
		return &SubtextProps{}, nil
	case TypeQuote:
		return &QuoteProps{}, nil
	case TypeCode:
		return &CodeProps{}, nil
	case TypeList:
		return &ListProps{}, nil
	case TypeIcon:
		return &IconProps{}, nil
	case TypeNav:
		return &NavProps{}, nil
	case TypeSocial:
		return &SocialProps{}, nil
	case TypeAppStoreBadge:
		return &AppStoreBadgeProps{}, nil
	case TypeUnsubscribe:
		return &UnsubscribeProps{}, nil
	case TypePreferences:
		return &PreferencesProps{}, nil
	case TypePreviewText:
		return &PreviewTextProps{}, nil
	case TypeContainer:
		return &ContainerProps{}, nil
	case TypeBox:
		return &BoxProps{}, nil
	case TypeFooter:
		return &FooterProps{}, nil
	}
	return nil, fmt.Errorf("unknown element type %q", t)
}

// HeaderProps styles a heading element. Level selects the h1-h3 tag.
type HeaderProps struct {
	Level      int         `json:"level,omitempty"`
	Typography *Typography `json:"typography,omitempty"`
}

func (*HeaderProps) ElementType() ElementType { return TypeHeader }

// TextProps styles a body-copy paragraph.
type TextProps struct {
	Typography *Typography `json:"typography,omitempty"`
}

func (*TextProps) ElementType() ElementType { return TypeText }

// SubtextProps styles secondary, muted copy.
type SubtextProps struct {
	Typography *Typography `json:"typography,omitempty"`
}

func (*SubtextProps) ElementType() ElementType { return TypeSubtext }

// ButtonStyle holds the link target and chrome of a button.
type ButtonStyle struct {
	Href            string `json:"href,omitempty"`
	Target          string `json:"target,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	BorderRadius    string `json:"borderRadius,omitempty"`
}

// ButtonProps styles a call-to-action button.
type ButtonProps struct {
	Button     ButtonStyle `json:"button"`
	Typography *Typography `json:"typography,omitempty"`
}

func (*ButtonProps) ElementType() ElementType { return TypeButton }

// ImageStyle holds the source and sizing of an image.
type ImageStyle struct {
	Src       string `json:"src,omitempty"`
	Alt       string `json:"alt,omitempty"`
	Width     string `json:"width,omitempty"`  // pixel string, e.g. "300px"
	Height    string `json:"height,omitempty"` // pixel string, e.g. "200px"
	ObjectFit string `json:"objectFit,omitempty"`
	Link      string `json:"link,omitempty"`
}

// ImageProps styles an image element, optionally wrapped in a link.
type ImageProps struct {
	Image  ImageStyle `json:"image"`
	Border *Border    `json:"border,omitempty"`
}

func (*ImageProps) ElementType() ElementType { return TypeImage }

// DividerProps styles a horizontal rule.
type DividerProps struct {
	Color     string `json:"color,omitempty"`
	Thickness string `json:"thickness,omitempty"`
	Style     string `json:"style,omitempty"` // solid, dashed, dotted
}

func (*DividerProps) ElementType() ElementType { return TypeDivider }

// SpacerProps sets the height of an empty spacing row.
type SpacerProps struct {
	Height string `json:"height,omitempty"`
}

func (*SpacerProps) ElementType() ElementType { return TypeSpacer }

// QuoteProps styles a pull-quote with its accent border.
type QuoteProps struct {
	BorderColor     string      `json:"borderColor,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	Typography      *Typography `json:"typography,omitempty"`
}

func (*QuoteProps) ElementType() ElementType { return TypeQuote }

// CodeProps styles a preformatted code block.
type CodeProps struct {
	Language        string `json:"language,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
}

func (*CodeProps) ElementType() ElementType { return TypeCode }

// ListProps holds an ordered or unordered list's items.
type ListProps struct {
	Items       []string `json:"items"`
	ListType    string   `json:"listType,omitempty"` // ordered or unordered
	MarkerStyle string   `json:"markerStyle,omitempty"`
}

func (*ListProps) ElementType() ElementType { return TypeList }

// IconProps styles a small inline icon image.
type IconProps struct {
	Src  string `json:"src,omitempty"`
	Alt  string `json:"alt,omitempty"`
	Size string `json:"size,omitempty"`
	Link string `json:"link,omitempty"`
}

func (*IconProps) ElementType() ElementType { return TypeIcon }

// NavLink is one entry of a navigation row.
type NavLink struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// NavProps holds a horizontal row of navigation links.
type NavProps struct {
	Links      []NavLink   `json:"links"`
	Typography *Typography `json:"typography,omitempty"`
}

func (*NavProps) ElementType() ElementType { return TypeNav }

// SocialLink is one entry of a social-icons row.
type SocialLink struct {
	Platform string `json:"platform,omitempty"`
	Href     string `json:"href"`
	IconSrc  string `json:"iconSrc,omitempty"`
}

// SocialProps holds a horizontal row of social-network icon links.
type SocialProps struct {
	Links []SocialLink `json:"links"`
}

func (*SocialProps) ElementType() ElementType { return TypeSocial }

// AppStoreBadgeProps holds an app-store download badge.
type AppStoreBadgeProps struct {
	Store    string `json:"store,omitempty"` // apple or google
	Href     string `json:"href,omitempty"`
	BadgeSrc string `json:"badgeSrc,omitempty"`
}

func (*AppStoreBadgeProps) ElementType() ElementType { return TypeAppStoreBadge }

// UnsubscribeProps holds the unsubscribe link target.
type UnsubscribeProps struct {
	Href       string      `json:"href,omitempty"`
	Typography *Typography `json:"typography,omitempty"`
}

func (*UnsubscribeProps) ElementType() ElementType { return TypeUnsubscribe }

// PreferencesProps holds the email-preferences link target.
type PreferencesProps struct {
	Href       string      `json:"href,omitempty"`
	Typography *Typography `json:"typography,omitempty"`
}

func (*PreferencesProps) ElementType() ElementType { return TypePreferences }

// PreviewTextProps has no fields; the element's content carries the inbox
// preview line, rendered invisibly at the top of the body.
type PreviewTextProps struct{}

func (*PreviewTextProps) ElementType() ElementType { return TypePreviewText }

// ContainerProps styles a generic grouping cell.
type ContainerProps struct {
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	Border          *Border `json:"border,omitempty"`
	BorderRadius    string  `json:"borderRadius,omitempty"`
}

func (*ContainerProps) ElementType() ElementType { return TypeContainer }

// BoxProps styles an emphasized callout box.
type BoxProps struct {
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	Border          *Border `json:"border,omitempty"`
	BorderRadius    string  `json:"borderRadius,omitempty"`
}

func (*BoxProps) ElementType() ElementType { return TypeBox }

// FooterProps styles the closing footer block.
type FooterProps struct {
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	Typography      *Typography `json:"typography,omitempty"`
}

func (*FooterProps) ElementType() ElementType { return TypeFooter }
