package readinglist

import (
	"encoding/xml"
	"io"

	"github.com/opds-community/libopds2-go/opds1"
)

const (
	atomNamespace       = "http://www.w3.org/2005/Atom"
	AcquisitionFeedType = "application/atom+xml;profile=opds-catalog;kind=acquisition"
	relImage            = "http://opds-spec.org/image"
	relThumbnail        = "http://opds-spec.org/image/thumbnail"
	googleBooksPage     = "https://books.google.com/books?id="
)

// atomFeed gives the OPDS feed its Atom root element.
type atomFeed struct {
	XMLName xml.Name `xml:"feed"`
	Xmlns   string   `xml:"xmlns,attr"`
	opds1.Feed
}

// Feed renders a reading list as an OPDS 1 acquisition feed. Each item
// becomes an entry; books known to the catalog link to their catalog page.
func Feed(l ReadingList, selfURL string) opds1.Feed {
	updated := l.CreatedAt
	for _, it := range l.Items {
		if it.AddedAt.After(updated) {
			updated = it.AddedAt
		}
	}

	f := opds1.Feed{
		ID:      "urn:uuid:" + l.ID,
		Title:   l.Name,
		Updated: updated.UTC(),
		Links: []opds1.Link{
			{Rel: "self", Href: selfURL, TypeLink: AcquisitionFeedType},
			{Rel: "start", Href: selfURL, TypeLink: AcquisitionFeedType},
		},
	}
	for _, it := range l.Items {
		f.Entries = append(f.Entries, entry(it))
	}
	return f
}

func entry(it Item) opds1.Entry {
	b := it.Book
	e := opds1.Entry{
		ID:     "urn:uuid:" + it.BookID,
		Title:  b.Title,
		Author: []opds1.Author{{Name: b.Author}},
	}
	if b.PublicationDate != nil {
		e.Issued = *b.PublicationDate
	}
	if b.Genre != nil {
		e.Category = []opds1.Category{{Term: *b.Genre}}
	}
	if b.Description != nil {
		e.Content.Content = *b.Description
	}
	if b.CoverImageURL != nil {
		e.Links = append(e.Links,
			opds1.Link{Rel: relImage, Href: *b.CoverImageURL, TypeLink: "image/jpeg"},
			opds1.Link{Rel: relThumbnail, Href: *b.CoverImageURL, TypeLink: "image/jpeg"},
		)
	}
	if b.GoogleBooksID != nil {
		e.Links = append(e.Links, opds1.Link{Rel: "alternate", Href: googleBooksPage + *b.GoogleBooksID, TypeLink: "text/html"})
	}
	return e
}

// WriteFeed encodes f as an Atom document.
func WriteFeed(w io.Writer, f opds1.Feed) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(atomFeed{Xmlns: atomNamespace, Feed: f})
}
