package generator

import "strings"

// Reserved placeholder sentinels. These are a cross-component contract with
// the editing surface: the generator always marks fields holding one of
// these values with data attributes, and never resolves them itself.
const (
	PlaceholderHref  = "#"
	PlaceholderImage = "@@PLACEHOLDER_IMAGE@@"
	PlaceholderLink  = "@@PLACEHOLDER_LINK@@"

	// placeholderImageHost prefixes stand-in image URLs the AI may emit
	// before the user uploads a real asset.
	placeholderImageHost = "https://placehold.co/"

	// fallbackImageSrc is what an unresolved image sentinel renders as, so
	// the preview shows a visible placeholder instead of a broken image.
	fallbackImageSrc = "https://placehold.co/%sx%s"
)

// isPlaceholderLink reports whether a link target still needs user input.
func isPlaceholderLink(v string) bool {
	return v == "" || v == PlaceholderHref || v == PlaceholderLink
}

// isPlaceholderImage reports whether an image source still needs user input.
func isPlaceholderImage(v string) bool {
	return v == "" || v == PlaceholderHref || v == PlaceholderImage ||
		strings.HasPrefix(v, placeholderImageHost)
}

// placeholderAttrs builds the marker attributes the editing UI keys off.
// kind is "link" or "image".
func placeholderAttrs(elementID, propertyPath, kind string) string {
	return ` data-element-id="` + escape(elementID) +
		`" data-property-path="` + escape(propertyPath) +
		`" data-placeholder="true" data-placeholder-type="` + kind + `"`
}
