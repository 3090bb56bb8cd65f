package book

import (
	"net/url"
	"strings"
)

const placeholderCoverURL = "https://via.placeholder.com/128x196/e3e3e3/666666?text="

// componentEscaper turns query escaping into the narrower component escaping
// browsers use, which leaves spaces as %20 and keeps !'()* literal.
var componentEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// ResolveCoverURL picks the first present image in the order explicit cover,
// thumbnail, small thumbnail. Without any image it returns a placeholder
// labelled with the first 20 characters of the title.
func ResolveCoverURL(explicit, thumbnail, smallThumbnail *string, title string) string {
	for _, candidate := range []*string{explicit, thumbnail, smallThumbnail} {
		if candidate != nil && strings.TrimSpace(*candidate) != "" {
			return *candidate
		}
	}

	label := []rune(title)
	if len(label) > 20 {
		label = label[:20]
	}
	return placeholderCoverURL + componentEscaper.Replace(url.QueryEscape(string(label)))
}
