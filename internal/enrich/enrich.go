// Package enrich refreshes a stored book with metadata from the external
// catalog and, when the book has none, a cover image copied into object
// storage.
package enrich

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"bookshelf/internal/book"
	"bookshelf/internal/platform/googlebooks"
)

// ErrNoCatalogMatch is returned when the catalog search yields no volumes.
var ErrNoCatalogMatch = errors.New("no catalog match")

// ImageExtension is appended to the book id to name its stored cover.
const ImageExtension = ".jpg"

type Catalog interface {
	Search(ctx context.Context, query string) (*googlebooks.VolumesResponse, error)
}

type ImageStore interface {
	FetchAndStore(ctx context.Context, sourceURL, name string) (string, error)
}

// Counter counts books whose update has been issued.
type Counter struct {
	n atomic.Int64
}

func (c *Counter) Inc() {
	c.n.Add(1)
}

func (c *Counter) Value() int64 {
	return c.n.Load()
}

// Merge applies a catalog volume to b. Title, author and publication date
// always come from the catalog; the description only fills an empty one.
func Merge(b book.Book, v googlebooks.VolumeInfo) book.Book {
	b.Title = v.Title
	b.Author = strings.Join(v.Authors, ", ")
	b.PublishedDate = v.PublishedDate
	if b.Description == "" {
		b.Description = v.Description
	}
	return b
}

// ImageName is the object name used for a book's cover.
func ImageName(bookID string) string {
	return bookID + ImageExtension
}
