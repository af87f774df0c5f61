package plan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/XenoAmess/jackrabbit/internal/access"
	"github.com/XenoAmess/jackrabbit/internal/index"
	"github.com/XenoAmess/jackrabbit/internal/qom"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

// LimitUnbounded is the sentinel limit meaning "no cap on the number of
// rows".
const LimitUnbounded int64 = -1

// AssembleParams carries everything the result assembler combines into one
// result sequence.
type AssembleParams struct {
	Base     MultiColumnQuery
	Filter   Predicate // nil when the tree has no constraint
	Columns  []qom.Column
	SortKeys []SortKey
	Offset   int64
	Limit    int64 // LimitUnbounded for no cap
	Policy   access.Policy

	// DocumentOrder skips sorting entirely and returns rows in the index's
	// native order; SortKeys are ignored in that mode.
	DocumentOrder bool

	Services index.Services
	Logger   *slog.Logger
}

// Assemble combines the base query, optional filter, projection, sort keys,
// pagination window and access policy into a lazily-consumed result
// sequence. With sorting in effect the qualifying rows are materialized and
// sorted before the offset/limit window applies, and the total row count is
// known up front; in document order (or with no orderings) rows stream
// straight off the index and the total is only known after exhaustion.
func Assemble(ctx context.Context, p AssembleParams) (*Rows, error) {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Policy == nil {
		p.Policy = access.AllowAll()
	}
	rows := &Rows{ctx: ctx, params: p, total: -1}
	if p.DocumentOrder || len(p.SortKeys) == 0 {
		it, err := p.Base.Execute(ctx)
		if err != nil {
			return nil, err
		}
		rows.source = it
		rows.remainingSkip = p.Offset
		return rows, nil
	}
	if err := rows.materializeSorted(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Rows is a lazily-evaluated sequence of result rows. It is single-use;
// re-running the query produces a fresh sequence starting from zero. Close
// releases the underlying index resources and is safe to call at any point,
// including after partial consumption.
type Rows struct {
	ctx    context.Context
	params AssembleParams

	// Streaming mode.
	source        index.RowIterator
	remainingSkip int64

	// Sorted mode.
	sorted []index.Row
	pos    int

	yielded int64
	total   int64
	current *ResultRow
	err     error
	closed  bool
}

// Next advances to the next result row. It returns false on exhaustion or
// error; use Err to tell the two apart.
func (r *Rows) Next() bool {
	if r.err != nil || r.closed {
		return false
	}
	if r.params.Limit != LimitUnbounded && r.yielded >= r.params.Limit {
		return false
	}
	if r.source != nil {
		return r.nextStreaming()
	}
	return r.nextSorted()
}

func (r *Rows) nextStreaming() bool {
	for r.source.Next() {
		if err := r.ctx.Err(); err != nil {
			r.err = err
			return false
		}
		row := r.source.Row()
		ok, err := r.qualifies(row)
		if err != nil {
			r.err = err
			return false
		}
		if !ok {
			continue
		}
		if r.remainingSkip > 0 {
			r.remainingSkip--
			continue
		}
		r.current = r.resultRow(row)
		r.yielded++
		return true
	}
	if err := r.source.Err(); err != nil {
		r.err = indexFailure(err)
		return false
	}
	// Exhausted: the qualifying-row count is now known.
	r.total = r.params.Offset - r.remainingSkip + r.yielded
	return false
}

func (r *Rows) nextSorted() bool {
	if r.pos >= len(r.sorted) {
		return false
	}
	r.current = r.resultRow(r.sorted[r.pos])
	r.pos++
	r.yielded++
	return true
}

// materializeSorted drains the qualifying rows, sorts them by the compiled
// key sequence and cuts the offset window. Runs once at assembly.
func (r *Rows) materializeSorted() error {
	it, err := r.params.Base.Execute(r.ctx)
	if err != nil {
		return err
	}
	defer it.Close()

	type keyedRow struct {
		row  index.Row
		keys []value.Value
		oks  []bool
	}
	var qualified []keyedRow
	for it.Next() {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		row := it.Row()
		ok, err := r.qualifies(row)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		// Extract sort keys once so the comparator stays pure.
		kr := keyedRow{
			row:  row,
			keys: make([]value.Value, len(r.params.SortKeys)),
			oks:  make([]bool, len(r.params.SortKeys)),
		}
		for i, sk := range r.params.SortKeys {
			v, present, err := sk.Extract(r.ctx, row)
			if err != nil {
				return err
			}
			kr.keys[i], kr.oks[i] = v, present
		}
		qualified = append(qualified, kr)
	}
	if err := it.Err(); err != nil {
		return indexFailure(err)
	}

	sort.SliceStable(qualified, func(a, b int) bool {
		for i, sk := range r.params.SortKeys {
			cmp := compareKeys(r.params.Services,
				qualified[a].keys[i], qualified[a].oks[i],
				qualified[b].keys[i], qualified[b].oks[i])
			if cmp == 0 {
				continue
			}
			if sk.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	r.total = int64(len(qualified))
	start := r.params.Offset
	if start > int64(len(qualified)) {
		start = int64(len(qualified))
	}
	r.sorted = make([]index.Row, 0, int64(len(qualified))-start)
	for _, kr := range qualified[start:] {
		r.sorted = append(r.sorted, kr.row)
	}
	return nil
}

// qualifies applies the compiled filter and the access policy: a row is
// included only if the filter holds and the caller may read every node bound
// by the row. Denied rows are excluded silently.
func (r *Rows) qualifies(row index.Row) (bool, error) {
	if r.params.Filter != nil {
		ok, err := r.params.Filter(r.ctx, row)
		if err != nil || !ok {
			return false, err
		}
	}
	for _, selector := range row.Selectors() {
		id, _ := row.Node(selector)
		decision, err := r.params.Policy.CanRead(r.ctx, id)
		if err != nil {
			return false, indexFailure(err)
		}
		if !decision.Allowed {
			return false, nil
		}
	}
	return true, nil
}

func (r *Rows) resultRow(row index.Row) *ResultRow {
	return &ResultRow{svc: r.params.Services, columns: r.params.Columns, row: row}
}

// Row returns the current result row. Valid only after a true Next.
func (r *Rows) Row() *ResultRow {
	return r.current
}

// Err returns the error that terminated iteration, or nil when the sequence
// simply ran out of rows.
func (r *Rows) Err() error {
	return r.err
}

// Total returns the number of qualifying rows before the offset/limit window,
// or -1 when it is not yet known. With sorting in effect the total is known
// immediately; in streaming mode it becomes known only after exhaustion.
func (r *Rows) Total() int64 {
	return r.total
}

// Close releases the underlying index resources. It is idempotent and safe
// after partial consumption.
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.source != nil {
		return r.source.Close()
	}
	return nil
}

// ResultRow is one row of the result: the selector-bound node identities plus
// the projected column values, fetched lazily on demand.
type ResultRow struct {
	svc     index.Services
	columns []qom.Column
	row     index.Row
}

// Node returns the node bound to the selector in this row, for later
// dereferencing by the caller.
func (rr *ResultRow) Node(selector string) (index.NodeID, bool) {
	return rr.row.Node(selector)
}

// Selectors returns the selector names bound in this row.
func (rr *ResultRow) Selectors() []string {
	return rr.row.Selectors()
}

// Columns returns the projected columns in output order.
func (rr *ResultRow) Columns() []qom.Column {
	return rr.columns
}

// ValueAt fetches the i-th projected column value. The bool result is false
// when the column's selector is unbound in this row (outer join) or the node
// has no such property.
func (rr *ResultRow) ValueAt(ctx context.Context, i int) (value.Value, bool, error) {
	col := rr.columns[i]
	id, bound := rr.row.Node(col.SelectorName)
	if !bound {
		return value.Value{}, false, nil
	}
	v, ok, err := rr.svc.Reader.Property(ctx, id, col.PropertyName)
	if err != nil {
		return value.Value{}, false, indexFailure(err)
	}
	return v, ok, nil
}

// Value fetches a projected column value by its exposed column name.
func (rr *ResultRow) Value(ctx context.Context, columnName string) (value.Value, bool, error) {
	for i, col := range rr.columns {
		if col.Name() == columnName {
			return rr.ValueAt(ctx, i)
		}
	}
	return value.Value{}, false, fmt.Errorf("no column named %q", columnName)
}
