package googlebooks

import (
	"regexp"
	"strings"
)

const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
	UnknownGenre  = "Unknown"
)

// Book is the canonical, normalized form of a catalog volume. It is what the
// rest of the application sees; the raw volume shape stays in this package.
type Book struct {
	GoogleBooksID  string   `json:"google_books_id"`
	Title          string   `json:"title"`
	Authors        []string `json:"authors"`
	Author         string   `json:"author"`
	Description    *string  `json:"description,omitempty"`
	PublishedDate  *string  `json:"published_date"`
	PageCount      *int     `json:"page_count,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	Genre          string   `json:"genre"`
	AverageRating  *float64 `json:"average_rating,omitempty"`
	RatingsCount   int      `json:"ratings_count"`
	Language       string   `json:"language,omitempty"`
	Publisher      *string  `json:"publisher,omitempty"`
	ISBN10         *string  `json:"isbn10"`
	ISBN13         *string  `json:"isbn13"`
	Thumbnail      *string  `json:"thumbnail,omitempty"`
	SmallThumbnail *string  `json:"small_thumbnail,omitempty"`
	CoverImageURL  *string  `json:"cover_image_url,omitempty"`
	PreviewLink    *string  `json:"preview_link,omitempty"`
	InfoLink       *string  `json:"info_link,omitempty"`
}

type volumeList struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	AverageRating       *float64             `json:"averageRating"`
	RatingsCount        int                  `json:"ratingsCount"`
	ImageLinks          *imageLinks          `json:"imageLinks"`
	Language            string               `json:"language"`
	PreviewLink         string               `json:"previewLink"`
	InfoLink            string               `json:"infoLink"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

var (
	yearOnly     = regexp.MustCompile(`^\d{4}$`)
	yearAndMonth = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// NormalizePublishedDate lifts partial dates to day precision. "2017" becomes
// "2017-01-01" and "2017-03" becomes "2017-03-01"; anything else non-empty is
// returned unchanged and an empty value yields nil.
func NormalizePublishedDate(s string) *string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil
	case yearOnly.MatchString(s):
		s += "-01-01"
	case yearAndMonth.MatchString(s):
		s += "-01"
	}
	return &s
}

func extractISBN(ids []industryIdentifier, kind string) *string {
	for _, id := range ids {
		if id.Type == kind && id.Identifier != "" {
			v := id.Identifier
			return &v
		}
	}
	return nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) *string {
	for _, v := range values {
		if v != "" {
			return &v
		}
	}
	return nil
}

func normalize(v volume) Book {
	info := v.VolumeInfo

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = UnknownTitle
	}

	authors := make([]string, 0, len(info.Authors))
	for _, a := range info.Authors {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	if len(authors) == 0 {
		authors = []string{UnknownAuthor}
	}

	genre := UnknownGenre
	if len(info.Categories) > 0 && info.Categories[0] != "" {
		genre = info.Categories[0]
	}

	var pageCount *int
	if info.PageCount > 0 {
		n := info.PageCount
		pageCount = &n
	}

	b := Book{
		GoogleBooksID: v.ID,
		Title:         title,
		Authors:       authors,
		Author:        strings.Join(authors, ", "),
		Description:   optional(info.Description),
		PublishedDate: NormalizePublishedDate(info.PublishedDate),
		PageCount:     pageCount,
		Categories:    info.Categories,
		Genre:         genre,
		AverageRating: info.AverageRating,
		RatingsCount:  info.RatingsCount,
		Language:      info.Language,
		Publisher:     optional(info.Publisher),
		ISBN10:        extractISBN(info.IndustryIdentifiers, "ISBN_10"),
		ISBN13:        extractISBN(info.IndustryIdentifiers, "ISBN_13"),
		PreviewLink:   optional(info.PreviewLink),
		InfoLink:      optional(info.InfoLink),
	}
	if info.ImageLinks != nil {
		b.Thumbnail = firstNonEmpty(info.ImageLinks.Thumbnail, info.ImageLinks.SmallThumbnail)
		b.SmallThumbnail = optional(info.ImageLinks.SmallThumbnail)
		b.CoverImageURL = b.Thumbnail
	}
	return b
}
