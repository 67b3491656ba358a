package enrich

import (
	"context"
	"fmt"

	"bookshelf/internal/book"
	"bookshelf/internal/platform/googlebooks"

	"github.com/rs/zerolog/log"
)

type Pipeline struct {
	books   book.Repository
	catalog Catalog
	images  ImageStore
}

func NewPipeline(books book.Repository, catalog Catalog, images ImageStore) *Pipeline {
	return &Pipeline{
		books:   books,
		catalog: catalog,
		images:  images,
	}
}

// Process loads the book, looks it up in the catalog, merges the first match,
// copies a cover when the book has none and writes the result back as a
// partial update. processed is incremented once the write has been issued,
// whatever its outcome.
func (p *Pipeline) Process(ctx context.Context, bookID string, processed *Counter) error {
	b, err := p.books.Read(ctx, bookID)
	if err != nil {
		return fmt.Errorf("load book %s: %w", bookID, err)
	}

	res, err := p.catalog.Search(ctx, b.Title)
	if err != nil {
		return fmt.Errorf("search catalog for %q: %w", b.Title, err)
	}
	if res == nil || len(res.Items) == 0 {
		return fmt.Errorf("search catalog for %q: %w", b.Title, ErrNoCatalogMatch)
	}
	top := res.Items[0].VolumeInfo

	b = Merge(b, top)

	if b.ImageURL == "" {
		if url, ok := p.cover(ctx, bookID, top.ImageLinks); ok {
			b.ImageURL = url
		}
	}

	err = p.books.Update(ctx, bookID, b, true)
	processed.Inc()
	if err != nil {
		return fmt.Errorf("update book %s: %w", bookID, err)
	}
	return nil
}

// cover copies the best catalog thumbnail into the image store. It reports
// false when there is nothing to copy or the copy failed.
func (p *Pipeline) cover(ctx context.Context, bookID string, links *googlebooks.ImageLinks) (string, bool) {
	src := links.Best()
	if src == "" {
		return "", false
	}

	url, err := p.images.FetchAndStore(ctx, src, ImageName(bookID))
	if err != nil {
		log.Warn().Err(err).Str("book_id", bookID).Str("source", src).Msg("Cover image not stored")
		return "", false
	}
	return url, true
}
