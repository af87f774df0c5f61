// Package jackrabbit compiles query object model trees into executable plans
// over a content node index and produces paginated, access-controlled,
// multi-column results.
//
// A QueryObjectModel is built once from an immutable QueryTree and a set of
// index collaborators; it discovers the tree's bind-variable names at
// construction. Each Execute call resolves bind values, lowers the source,
// constraint and orderings, and returns a lazily-consumed row sequence.
// A QueryObjectModel is safe for concurrent executions of the same tree with
// distinct bind-value mappings.
package jackrabbit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/XenoAmess/jackrabbit/internal/access"
	"github.com/XenoAmess/jackrabbit/internal/index"
	"github.com/XenoAmess/jackrabbit/internal/observability"
	"github.com/XenoAmess/jackrabbit/internal/plan"
	"github.com/XenoAmess/jackrabbit/internal/qom"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

// DefaultPlanCacheSize bounds the engine's cache of lowered base queries.
const DefaultPlanCacheSize = 256

// Config controls optional engine behaviours.
type Config struct {
	// Logger receives structured engine logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Policy is the access-control boundary consulted per candidate row.
	// Defaults to allowing every read.
	Policy access.Policy

	// Observability configures tracing and metrics. Defaults to noop.
	Observability *observability.Config

	// PlanCacheSize bounds the cache of lowered base queries. Zero disables
	// caching.
	PlanCacheSize int
}

// Option is a functional option for configuring a QueryObjectModel.
type Option func(*Config)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithAccessPolicy sets the access-control policy consulted per row.
func WithAccessPolicy(policy access.Policy) Option {
	return func(c *Config) {
		c.Policy = policy
	}
}

// WithObservability sets the tracing/metrics configuration.
func WithObservability(cfg *observability.Config) Option {
	return func(c *Config) {
		c.Observability = cfg
	}
}

// WithPlanCacheSize bounds the plan cache. Zero disables caching.
func WithPlanCacheSize(n int) Option {
	return func(c *Config) {
		c.PlanCacheSize = n
	}
}

// ExecuteOptions carries the per-execution pagination window and ordering
// mode.
type ExecuteOptions struct {
	// Offset skips that many qualifying rows from the front of the (possibly
	// sorted) sequence. Must be >= 0.
	Offset int64

	// Limit caps the number of rows yielded after the offset. LimitUnbounded
	// means no cap.
	Limit int64

	// DocumentOrder returns rows in the index's native order, ignoring the
	// tree's orderings entirely.
	DocumentOrder bool
}

// QueryObjectModel is a prepared query: an immutable tree plus the index
// collaborators it compiles against. The set of bind-variable names is fixed
// at construction and never grows.
type QueryObjectModel struct {
	tree    *qom.QueryTree
	factory *plan.QueryFactory
	values  *value.Factory
	cfg     Config
	cache   *plan.PlanCache
	obs     *observability.Config

	variableNames []string

	mu         sync.RWMutex
	bindValues map[string]value.Value
}

// NewQueryObjectModel prepares a query from a validated tree and the index
// collaborators. Bind-variable names are discovered here, before any
// execution.
func NewQueryObjectModel(tree *qom.QueryTree, svc index.Services, opts ...Option) (*QueryObjectModel, error) {
	if tree == nil {
		return nil, fmt.Errorf("query tree is required")
	}
	cfg := Config{PlanCacheSize: DefaultPlanCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Policy == nil {
		cfg.Policy = access.AllowAll()
	}
	if cfg.Observability == nil {
		cfg.Observability = observability.NewConfig()
	}
	q := &QueryObjectModel{
		tree:          tree,
		factory:       plan.NewQueryFactory(svc, cfg.Logger),
		values:        value.NewFactory(),
		cfg:           cfg,
		cache:         plan.NewPlanCache(cfg.PlanCacheSize),
		obs:           cfg.Observability,
		variableNames: plan.BindVariableNames(tree),
		bindValues:    make(map[string]value.Value),
	}
	return q, nil
}

// Tree returns the underlying query tree.
func (q *QueryObjectModel) Tree() *qom.QueryTree {
	return q.tree
}

// BindVariableNames returns the distinct bind-variable names the tree
// references, in discovery order.
func (q *QueryObjectModel) BindVariableNames() []string {
	names := make([]string, len(q.variableNames))
	copy(names, q.variableNames)
	return names
}

// BindValue supplies a value for a discovered variable, for use by Execute.
// Binding a name the tree does not reference is an error.
func (q *QueryObjectModel) BindValue(variable string, v value.Value) error {
	known := false
	for _, n := range q.variableNames {
		if n == variable {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("query does not reference variable %q", variable)
	}
	q.mu.Lock()
	q.bindValues[variable] = v
	q.mu.Unlock()
	return nil
}

// Execute runs the query with the values supplied through BindValue.
func (q *QueryObjectModel) Execute(ctx context.Context, opts ExecuteOptions) (*plan.Rows, error) {
	q.mu.RLock()
	binds := make(map[string]value.Value, len(q.bindValues))
	for k, v := range q.bindValues {
		binds[k] = v
	}
	q.mu.RUnlock()
	return q.ExecuteWith(ctx, binds, opts)
}

// ExecuteWith runs the query with an explicit bind-value mapping, ignoring
// values supplied through BindValue. Concurrent calls with distinct mappings
// are safe: each execution owns its resolved values, compiled closures and
// result state exclusively.
func (q *QueryObjectModel) ExecuteWith(ctx context.Context, binds map[string]value.Value, opts ExecuteOptions) (*plan.Rows, error) {
	if opts.Offset < 0 {
		return nil, fmt.Errorf("offset must be >= 0, got %d", opts.Offset)
	}
	if opts.Limit < 0 && opts.Limit != plan.LimitUnbounded {
		return nil, fmt.Errorf("limit must be >= 0 or LimitUnbounded, got %d", opts.Limit)
	}
	start := time.Now()
	attrs := []attribute.KeyValue{
		observability.SelectorCountAttr(len(q.tree.Selectors())),
		attribute.Bool(observability.AttrHasConstraint, q.tree.Constraint() != nil),
		attribute.Int(observability.AttrOrderingCount, len(q.tree.Orderings())),
		attribute.Int(observability.AttrColumnCount, len(q.tree.Columns())),
		attribute.Int(observability.AttrBindVariables, len(q.variableNames)),
		attribute.Int64(observability.AttrOffset, opts.Offset),
		attribute.Int64(observability.AttrLimit, opts.Limit),
		attribute.Bool(observability.AttrDocumentOrder, opts.DocumentOrder),
	}

	_, compileSpan := q.obs.Tracer().StartCompile(ctx, attrs...)
	compiled, err := q.compile(binds)
	observability.EndSpan(compileSpan, err)
	if err != nil {
		q.obs.Metrics().RecordError(ctx)
		q.cfg.Logger.Error("query compilation failed", "error", err)
		return nil, err
	}

	execCtx, execSpan := q.obs.Tracer().StartExecute(ctx, attrs...)
	rows, err := plan.Assemble(execCtx, plan.AssembleParams{
		Base:          compiled.base,
		Filter:        compiled.filter,
		Columns:       q.tree.Columns(),
		SortKeys:      compiled.sortKeys,
		Offset:        opts.Offset,
		Limit:         opts.Limit,
		Policy:        q.cfg.Policy,
		DocumentOrder: opts.DocumentOrder,
		Services:      q.factory.Services(),
		Logger:        q.cfg.Logger,
	})
	observability.EndSpan(execSpan, err)
	if err != nil {
		q.obs.Metrics().RecordError(ctx)
		return nil, err
	}
	q.obs.Metrics().RecordQuery(ctx, time.Since(start), rows.Total())
	return rows, nil
}

// compiledQuery holds the outcome of one compilation: the (possibly cached)
// base query and sort keys plus the bind-dependent filter.
type compiledQuery struct {
	base     plan.MultiColumnQuery
	filter   plan.Predicate
	sortKeys []plan.SortKey
}

// compile lowers the tree. Compilation is pure computation: any failure here
// is raised before the first row. The bind-independent parts (base query,
// sort keys) are served from the plan cache when the tree shape was seen
// before; the constraint filter depends on bind values and is compiled every
// time.
func (q *QueryObjectModel) compile(binds map[string]value.Value) (*compiledQuery, error) {
	resolved, err := plan.ResolveBindValues(q.variableNames, binds)
	if err != nil {
		return nil, err
	}

	key := plan.TreeKey(q.tree)
	cached, ok := q.cache.Get(key)
	if !ok {
		base, err := q.factory.Create(q.tree.Source())
		if err != nil {
			return nil, err
		}
		sortKeys, err := plan.CompileOrderings(q.tree.Orderings(), q.factory.Services())
		if err != nil {
			return nil, err
		}
		cached = &plan.CachedPlan{Base: base, SortKeys: sortKeys}
		q.cache.Put(key, cached)
	}

	compiled := &compiledQuery{base: cached.Base, sortKeys: cached.SortKeys}
	if c := q.tree.Constraint(); c != nil {
		filter, err := plan.CompileConstraint(c, resolved, q.tree.Selectors(), q.factory, q.values)
		if err != nil {
			return nil, err
		}
		compiled.filter = filter
	}
	return compiled, nil
}
