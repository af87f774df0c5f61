package plan

import (
	"context"

	"github.com/XenoAmess/jackrabbit/internal/index"
)

// MultiColumnQuery is an executable base query whose candidates expose one
// node binding per selector. Implementations are stateless: Execute may be
// called concurrently, and each call owns its returned iterator.
type MultiColumnQuery interface {
	Execute(ctx context.Context) (index.RowIterator, error)
}

// drainRows consumes an iterator into a slice, closing it.
func drainRows(it index.RowIterator) ([]index.Row, error) {
	defer it.Close()
	var rows []index.Row
	for it.Next() {
		rows = append(rows, it.Row())
	}
	if err := it.Err(); err != nil {
		return nil, indexFailure(err)
	}
	return rows, nil
}
