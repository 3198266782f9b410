package arxiv

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/papertrail/internal/core/domain"
)

// atomFeed is the subset of the arXiv Atom response we read. encoding/xml
// collects one or many <entry> and <author> elements into the same slices.
type atomFeed struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

// parseFeed decodes an Atom document into paper descriptors in feed order.
func parseFeed(data []byte) ([]domain.PaperDescriptor, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	papers := make([]domain.PaperDescriptor, 0, len(feed.Entries))
	for i, e := range feed.Entries {
		p, err := e.descriptor()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		papers = append(papers, p)
	}
	return papers, nil
}

func (e atomEntry) descriptor() (domain.PaperDescriptor, error) {
	link := strings.TrimSpace(e.ID)
	if link == "" {
		return domain.PaperDescriptor{}, fmt.Errorf("missing id")
	}

	var published time.Time
	if s := strings.TrimSpace(e.Published); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return domain.PaperDescriptor{}, fmt.Errorf("published: %w", err)
		}
		published = t.UTC()
	}

	authors := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	return domain.PaperDescriptor{
		Title:       strings.Join(strings.Fields(e.Title), " "),
		Authors:     authors,
		Link:        link,
		Published:   published,
		DocumentURL: DocumentURL(link),
	}, nil
}

// DocumentURL derives the PDF location from an abstract link by replacing
// the first "abs" with "pdf".
func DocumentURL(link string) string {
	return strings.Replace(link, "abs", "pdf", 1)
}
