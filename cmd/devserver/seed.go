package main

import (
	"context"

	"github.com/XenoAmess/jackrabbit/internal/index"
	"github.com/XenoAmess/jackrabbit/internal/index/gormindex"
	"github.com/XenoAmess/jackrabbit/internal/name"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

type sampleBook struct {
	name     string
	title    string
	price    int64
	category string
	blurb    string
}

var sampleShelves = map[string][]sampleBook{
	"classics": {
		{"moby-dick", "Moby-Dick", 12, "fiction", "a whale pursued across the seas"},
		{"war-and-peace", "War and Peace", 25, "fiction", "families in the napoleonic wars"},
	},
	"reference": {
		{"gopl", "The Go Programming Language", 40, "tech", "a thorough tour of the language"},
		{"learning-sql", "Learning SQL", 8, "tech", "queries joins and aggregates"},
	},
}

// seedCatalog creates a shelf node per group and a book node per entry, and
// returns the number of nodes created.
func seedCatalog(store *gormindex.Store) (int, error) {
	ctx := context.Background()
	count := 0
	for shelf, books := range sampleShelves {
		shelfID, err := store.AddNode(ctx, store.Root(), name.Local(shelf), name.Local("shelf"),
			map[name.Name]value.Value{
				name.Local("label"): value.String(shelf),
			})
		if err != nil {
			return count, err
		}
		count++
		for _, b := range books {
			if _, err := addBook(ctx, store, shelfID, b); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

func addBook(ctx context.Context, store *gormindex.Store, shelf index.NodeID, b sampleBook) (index.NodeID, error) {
	return store.AddNode(ctx, shelf, name.Local(b.name), name.Local("book"), map[name.Name]value.Value{
		name.Local("title"):    value.String(b.title),
		name.Local("price"):    value.Long(b.price),
		name.Local("category"): value.String(b.category),
		name.Local("blurb"):    value.String(b.blurb),
	})
}
