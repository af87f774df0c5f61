package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/XenoAmess/jackrabbit"
	"github.com/XenoAmess/jackrabbit/internal/index/gormindex"
	"github.com/XenoAmess/jackrabbit/internal/name"
	"github.com/XenoAmess/jackrabbit/internal/observability"
	"github.com/XenoAmess/jackrabbit/internal/qom"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

type server struct {
	store  *gormindex.Store
	logger *slog.Logger
}

func newServer(store *gormindex.Store, logger *slog.Logger) *server {
	return &server{store: store, logger: logger}
}

// handleBooks lists books, optionally filtered by category and minimum price,
// sorted and paginated through query parameters.
func (s *server) handleBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var constraint qom.Constraint
	binds := map[string]value.Value{}
	if cat := r.URL.Query().Get("category"); cat != "" {
		constraint = &qom.Comparison{
			Operand:  &qom.PropertyValue{SelectorName: "b", PropertyName: name.Local("category")},
			Operator: qom.OpEqual,
			Value:    &qom.BindVariable{Name: "category"},
		}
		binds["category"] = value.String(cat)
	}
	if min := r.URL.Query().Get("minPrice"); min != "" {
		n, err := strconv.ParseInt(min, 10, 64)
		if err != nil {
			http.Error(w, "minPrice must be an integer", http.StatusBadRequest)
			return
		}
		priceFloor := &qom.Comparison{
			Operand:  &qom.PropertyValue{SelectorName: "b", PropertyName: name.Local("price")},
			Operator: qom.OpGreaterThanOrEqual,
			Value:    &qom.BindVariable{Name: "minPrice"},
		}
		binds["minPrice"] = value.Long(n)
		if constraint == nil {
			constraint = priceFloor
		} else {
			constraint = &qom.And{Left: constraint, Right: priceFloor}
		}
	}

	var orderings []qom.Ordering
	if by := r.URL.Query().Get("orderby"); by != "" {
		if by != "price" && by != "title" {
			http.Error(w, "orderby must be price or title", http.StatusBadRequest)
			return
		}
		orderings = append(orderings, qom.Ordering{
			Operand:    &qom.PropertyValue{SelectorName: "b", PropertyName: name.Local(by)},
			Descending: r.URL.Query().Get("desc") != "",
		})
	}

	opts, err := windowFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts.DocumentOrder = r.URL.Query().Get("order") == "document"

	tree, err := qom.NewQueryTree(
		&qom.Selector{SelectorName: "b", NodeType: name.Local("book")},
		constraint,
		[]qom.Column{
			{SelectorName: "b", PropertyName: name.Local("title"), ColumnName: "title"},
			{SelectorName: "b", PropertyName: name.Local("price"), ColumnName: "price"},
			{SelectorName: "b", PropertyName: name.Local("category"), ColumnName: "category"},
		},
		orderings,
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.runQuery(ctx, w, tree, binds, opts)
}

// handleSearch runs a full-text search over every string property of the
// books.
func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}
	tree, err := qom.NewQueryTree(
		&qom.Selector{SelectorName: "b", NodeType: name.Local("book")},
		&qom.FullTextSearch{SelectorName: "b", Expression: &qom.BindVariable{Name: "q"}},
		[]qom.Column{
			{SelectorName: "b", PropertyName: name.Local("title"), ColumnName: "title"},
			{SelectorName: "b", PropertyName: name.Local("blurb"), ColumnName: "blurb"},
		},
		nil,
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.runQuery(r.Context(), w, tree,
		map[string]value.Value{"q": value.String(q)},
		jackrabbit.ExecuteOptions{Limit: jackrabbit.LimitUnbounded})
}

// handleShelves joins every book to its shelf through the hierarchy.
func (s *server) handleShelves(w http.ResponseWriter, r *http.Request) {
	tree, err := qom.NewQueryTree(
		&qom.Join{
			Left:      &qom.Selector{SelectorName: "b", NodeType: name.Local("book")},
			Right:     &qom.Selector{SelectorName: "s", NodeType: name.Local("shelf")},
			JoinType:  qom.JoinTypeInner,
			Condition: &qom.ChildNodeJoinCondition{ChildSelector: "b", ParentSelector: "s"},
		},
		nil,
		[]qom.Column{
			{SelectorName: "s", PropertyName: name.Local("label"), ColumnName: "shelf"},
			{SelectorName: "b", PropertyName: name.Local("title"), ColumnName: "title"},
		},
		nil,
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.runQuery(r.Context(), w, tree, nil,
		jackrabbit.ExecuteOptions{Limit: jackrabbit.LimitUnbounded})
}

// runQuery compiles and executes the tree, then streams the projected columns
// as a JSON array. Compile and execute phases report through Server-Timing.
func (s *server) runQuery(ctx context.Context, w http.ResponseWriter, tree *qom.QueryTree,
	binds map[string]value.Value, opts jackrabbit.ExecuteOptions) {

	compileTiming := observability.StartServerTiming(ctx, "compile")
	q, err := jackrabbit.NewQueryObjectModel(tree, s.store.Services(),
		jackrabbit.WithLogger(s.logger))
	compileTiming.Stop()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	execTiming := observability.StartServerTiming(ctx, "execute")
	rows, err := q.ExecuteWith(ctx, binds, opts)
	if err != nil {
		execTiming.Stop()
		status := http.StatusInternalServerError
		if jackrabbit.IsUnboundVariable(err) || jackrabbit.IsUnsupported(err) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	defer rows.Close()

	var out []map[string]string
	for rows.Next() {
		row := rows.Row()
		entry := make(map[string]string, len(row.Columns()))
		for i, col := range row.Columns() {
			v, ok, err := row.ValueAt(ctx, i)
			if err != nil {
				execTiming.Stop()
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if ok {
				entry[col.Name()] = v.Text()
			}
		}
		out = append(out, entry)
	}
	execTiming.Stop()
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"total": rows.Total(),
		"rows":  out,
	}); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func windowFromQuery(r *http.Request) (jackrabbit.ExecuteOptions, error) {
	opts := jackrabbit.ExecuteOptions{Limit: jackrabbit.LimitUnbounded}
	if off := r.URL.Query().Get("offset"); off != "" {
		n, err := strconv.ParseInt(off, 10, 64)
		if err != nil {
			return opts, errBadWindow("offset", off)
		}
		opts.Offset = n
	}
	if lim := r.URL.Query().Get("limit"); lim != "" {
		n, err := strconv.ParseInt(lim, 10, 64)
		if err != nil {
			return opts, errBadWindow("limit", lim)
		}
		opts.Limit = n
	}
	return opts, nil
}

type badWindowError struct {
	param, got string
}

func (e badWindowError) Error() string {
	return e.param + " must be an integer, got " + strconv.Quote(e.got)
}

func errBadWindow(param, got string) error {
	return badWindowError{param: param, got: got}
}
