package enrich

import (
	"testing"

	"bookshelf/internal/book"
	"bookshelf/internal/platform/googlebooks"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		in   book.Book
		v    googlebooks.VolumeInfo
		want book.Book
	}{
		{
			name: "fills empty description",
			in:   book.Book{ID: "42", Title: "Foo"},
			v:    googlebooks.VolumeInfo{Title: "Foo: A Novel", Authors: []string{"A", "B"}, PublishedDate: "2001", Description: "d"},
			want: book.Book{ID: "42", Title: "Foo: A Novel", Author: "A, B", PublishedDate: "2001", Description: "d"},
		},
		{
			name: "keeps existing description",
			in:   book.Book{ID: "42", Title: "Foo", Description: "local"},
			v:    googlebooks.VolumeInfo{Title: "Foo", Description: "remote"},
			want: book.Book{ID: "42", Title: "Foo", Description: "local"},
		},
		{
			name: "catalog fields overwrite local ones",
			in:   book.Book{ID: "42", Title: "Foo", Author: "Someone", PublishedDate: "1999"},
			v:    googlebooks.VolumeInfo{Title: "Bar", Authors: []string{"C"}, PublishedDate: "2010"},
			want: book.Book{ID: "42", Title: "Bar", Author: "C", PublishedDate: "2010"},
		},
		{
			name: "three authors",
			in:   book.Book{ID: "1"},
			v:    googlebooks.VolumeInfo{Authors: []string{"A", "B", "C"}},
			want: book.Book{ID: "1", Author: "A, B, C"},
		},
		{
			name: "image url untouched",
			in:   book.Book{ID: "1", ImageURL: "https://existing"},
			v:    googlebooks.VolumeInfo{ImageLinks: &googlebooks.ImageLinks{Thumbnail: "t"}},
			want: book.Book{ID: "1", ImageURL: "https://existing"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.in, tt.v))
		})
	}
}

func TestImageName(t *testing.T) {
	assert.Equal(t, "42.jpg", ImageName("42"))
}

func TestCounter(t *testing.T) {
	var c Counter
	assert.Equal(t, int64(0), c.Value())
	c.Inc()
	c.Inc()
	assert.Equal(t, int64(2), c.Value())
}
