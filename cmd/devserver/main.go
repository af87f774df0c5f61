// Command devserver runs a small HTTP front end over an in-memory content
// index seeded with sample data. It exists for local development: every
// endpoint compiles and executes a query through the public API, and the
// Server-Timing response header breaks each request into compile and execute
// phases.
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	servertiming "github.com/mitchellh/go-server-timing"

	"github.com/XenoAmess/jackrabbit/internal/index/gormindex"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dbPath := flag.String("db", ":memory:", "sqlite database path")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, err := gormindex.OpenSQLite(*dbPath, logger)
	if err != nil {
		logger.Error("opening index store", "error", err)
		os.Exit(1)
	}
	count, err := seedCatalog(store)
	if err != nil {
		logger.Error("seeding catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("catalog seeded", "nodes", count)

	srv := newServer(store, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/books", srv.handleBooks)
	mux.HandleFunc("/search", srv.handleSearch)
	mux.HandleFunc("/shelves", srv.handleShelves)

	logger.Info("devserver listening", "addr", *addr)
	logger.Info("endpoints",
		"books", "GET /books?category=fiction&minPrice=10&orderby=price&desc=1&offset=0&limit=10",
		"search", "GET /search?q=quick+fox",
		"shelves", "GET /shelves")
	if err := http.ListenAndServe(*addr, servertiming.Middleware(mux, nil)); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
