package persistence

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/helixml/bookshelf/domain/book"
)

//go:embed data/books.yaml
var sampleCatalog []byte

type catalogFile struct {
	Books []catalogEntry `yaml:"books"`
}

type catalogEntry struct {
	Title         string `yaml:"title"`
	Author        string `yaml:"author"`
	Description   string `yaml:"description"`
	CoverImageURL string `yaml:"coverImageUrl"`
}

// SampleCatalog returns the built-in sample books.
func SampleCatalog() ([]book.Book, error) {
	return LoadCatalog(strings.NewReader(string(sampleCatalog)))
}

// LoadCatalog parses a YAML catalog into new books. Entries need a title
// and an author.
func LoadCatalog(r io.Reader) ([]book.Book, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	books := make([]book.Book, 0, len(file.Books))
	for i, e := range file.Books {
		title := strings.TrimSpace(e.Title)
		author := strings.TrimSpace(e.Author)
		if title == "" || author == "" {
			return nil, fmt.Errorf("catalog entry %d: title and author are required", i+1)
		}
		books = append(books, book.NewBook(title, author, strings.TrimSpace(e.Description), strings.TrimSpace(e.CoverImageURL)))
	}
	return books, nil
}
