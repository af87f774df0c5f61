// Package gormindex provides a GORM-backed implementation of the index
// collaborators: a node store with typed properties, hierarchy resolution
// over materialized paths, and a namespace registry. It backs tests, the dev
// server and small deployments; sqlite and postgres are supported through
// their GORM drivers.
package gormindex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/XenoAmess/jackrabbit/internal/index"
	"github.com/XenoAmess/jackrabbit/internal/name"
	"github.com/XenoAmess/jackrabbit/internal/value"
)

// nodeRecord is the persisted form of a node.
type nodeRecord struct {
	ID       string  `gorm:"primaryKey;size:36"`
	ParentID *string `gorm:"index;size:36"`
	Path     string  `gorm:"uniqueIndex;size:1024"`
	NodeType string  `gorm:"index;size:255"`
	// Seq fixes the index's native (document) order.
	Seq int64 `gorm:"index"`
}

func (nodeRecord) TableName() string { return "nodes" }

// propertyRecord is the persisted form of one property value.
type propertyRecord struct {
	ID     uint   `gorm:"primaryKey"`
	NodeID string `gorm:"index:idx_prop_node_name;size:36"`
	Name   string `gorm:"index:idx_prop_node_name;size:512"`
	Type   string `gorm:"size:32"`
	Value  string
}

func (propertyRecord) TableName() string { return "node_properties" }

// namespaceRecord maps a prefix to a namespace URI.
type namespaceRecord struct {
	Prefix string `gorm:"primaryKey;size:64"`
	URI    string `gorm:"uniqueIndex;size:512"`
}

func (namespaceRecord) TableName() string { return "namespaces" }

// Store is a GORM-backed node index. It implements index.Reader,
// index.HierarchyResolver and name.Resolver.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger

	mu       sync.RWMutex
	byPrefix map[string]string
	byURI    map[string]string
	rootID   index.NodeID
	nextSeq  int64
}

// Open connects to the database behind dialector, migrates the schema and
// ensures the root node exists.
func Open(dialector gorm.Dialector, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	if err := db.AutoMigrate(&nodeRecord{}, &propertyRecord{}, &namespaceRecord{}); err != nil {
		return nil, fmt.Errorf("migrating index schema: %w", err)
	}
	s := &Store{
		db:       db,
		logger:   logger,
		byPrefix: make(map[string]string),
		byURI:    make(map[string]string),
	}
	if err := s.loadNamespaces(); err != nil {
		return nil, err
	}
	if err := s.ensureRoot(); err != nil {
		return nil, err
	}
	var maxSeq int64
	if err := db.Model(&nodeRecord{}).Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
		return nil, fmt.Errorf("reading sequence: %w", err)
	}
	s.nextSeq = maxSeq + 1
	return s, nil
}

func (s *Store) loadNamespaces() error {
	var records []namespaceRecord
	if err := s.db.Find(&records).Error; err != nil {
		return fmt.Errorf("loading namespaces: %w", err)
	}
	for _, r := range records {
		s.byPrefix[r.Prefix] = r.URI
		s.byURI[r.URI] = r.Prefix
	}
	return nil
}

func (s *Store) ensureRoot() error {
	var root nodeRecord
	err := s.db.Where("path = ?", "/").First(&root).Error
	if err == nil {
		s.rootID = uuid.MustParse(root.ID)
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("looking up root node: %w", err)
	}
	id := uuid.New()
	record := nodeRecord{ID: id.String(), Path: "/", NodeType: "{internal}root", Seq: 0}
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("creating root node: %w", err)
	}
	s.rootID = id
	return nil
}

// Root returns the identifier of the root node.
func (s *Store) Root() index.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootID
}

// RegisterNamespace maps a prefix to a URI for this index.
func (s *Store) RegisterNamespace(prefix, uri string) error {
	record := namespaceRecord{Prefix: prefix, URI: uri}
	if err := s.db.Save(&record).Error; err != nil {
		return fmt.Errorf("registering namespace %q: %w", prefix, err)
	}
	s.mu.Lock()
	s.byPrefix[prefix] = uri
	s.byURI[uri] = prefix
	s.mu.Unlock()
	return nil
}

// URI implements name.Resolver.
func (s *Store) URI(prefix string) (string, error) {
	s.mu.RLock()
	uri, ok := s.byPrefix[prefix]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown namespace prefix %q", prefix)
	}
	return uri, nil
}

// Prefix implements name.Resolver.
func (s *Store) Prefix(uri string) (string, error) {
	s.mu.RLock()
	prefix, ok := s.byURI[uri]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no prefix registered for namespace %q", uri)
	}
	return prefix, nil
}

// AddNode creates a node under parent with the given name, type and
// properties, and returns its identifier.
func (s *Store) AddNode(ctx context.Context, parent index.NodeID, nodeName name.Name,
	nodeType name.Name, props map[name.Name]value.Value) (index.NodeID, error) {

	var parentRecord nodeRecord
	if err := s.db.WithContext(ctx).Where("id = ?", parent.String()).First(&parentRecord).Error; err != nil {
		return index.NodeID{}, fmt.Errorf("looking up parent node: %w", err)
	}
	parentPath, err := name.ParsePath(parentRecord.Path)
	if err != nil {
		return index.NodeID{}, fmt.Errorf("corrupt parent path %q: %w", parentRecord.Path, err)
	}

	id := uuid.New()
	s.mu.Lock()
	seq := s.nextSeq
	s.nextSeq++
	s.mu.Unlock()

	parentID := parent.String()
	record := nodeRecord{
		ID:       id.String(),
		ParentID: &parentID,
		Path:     parentPath.Child(nodeName).String(),
		NodeType: nodeType.String(),
		Seq:      seq,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		for propName, propValue := range props {
			pr := propertyRecord{
				NodeID: id.String(),
				Name:   propName.String(),
				Type:   string(propValue.Type()),
				Value:  propValue.Text(),
			}
			if err := tx.Create(&pr).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return index.NodeID{}, fmt.Errorf("creating node %s: %w", nodeName, err)
	}
	return id, nil
}

// NodesOfType implements index.Reader. Candidates stream in document order,
// i.e. creation sequence.
func (s *Store) NodesOfType(ctx context.Context, nodeType name.Name) (index.NodeIterator, error) {
	var records []nodeRecord
	err := s.db.WithContext(ctx).
		Where("node_type = ?", nodeType.String()).
		Order("seq").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("scanning nodes of type %s: %w", nodeType, err)
	}
	ids := make([]index.NodeID, 0, len(records))
	for _, r := range records {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("corrupt node id %q: %w", r.ID, err)
		}
		ids = append(ids, id)
	}
	return &nodeIDIterator{ids: ids, pos: -1}, nil
}

// Property implements index.Reader.
func (s *Store) Property(ctx context.Context, id index.NodeID, prop name.Name) (value.Value, bool, error) {
	var record propertyRecord
	err := s.db.WithContext(ctx).
		Where("node_id = ? AND name = ?", id.String(), prop.String()).
		First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return value.Value{}, false, nil
	}
	if err != nil {
		return value.Value{}, false, fmt.Errorf("reading property %s: %w", prop, err)
	}
	v, err := decodeValue(record.Type, record.Value)
	if err != nil {
		return value.Value{}, false, err
	}
	return v, true, nil
}

// PropertyNames implements index.Reader.
func (s *Store) PropertyNames(ctx context.Context, id index.NodeID) ([]name.Name, error) {
	var records []propertyRecord
	err := s.db.WithContext(ctx).Where("node_id = ?", id.String()).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	names := make([]name.Name, 0, len(records))
	for _, r := range records {
		n, err := name.Parse(r.Name)
		if err != nil {
			return nil, fmt.Errorf("corrupt property name %q: %w", r.Name, err)
		}
		names = append(names, n)
	}
	return names, nil
}

// NodeName implements index.Reader.
func (s *Store) NodeName(ctx context.Context, id index.NodeID) (name.Name, error) {
	p, err := s.Path(ctx, id)
	if err != nil {
		return name.Name{}, err
	}
	return p.Name(), nil
}

// Parent implements index.HierarchyResolver.
func (s *Store) Parent(ctx context.Context, id index.NodeID) (index.NodeID, bool, error) {
	record, err := s.node(ctx, id)
	if err != nil {
		return index.NodeID{}, false, err
	}
	if record.ParentID == nil {
		return index.NodeID{}, false, nil
	}
	parent, err := uuid.Parse(*record.ParentID)
	if err != nil {
		return index.NodeID{}, false, fmt.Errorf("corrupt parent id %q: %w", *record.ParentID, err)
	}
	return parent, true, nil
}

// Path implements index.HierarchyResolver.
func (s *Store) Path(ctx context.Context, id index.NodeID) (name.Path, error) {
	record, err := s.node(ctx, id)
	if err != nil {
		return name.Path{}, err
	}
	p, err := name.ParsePath(record.Path)
	if err != nil {
		return name.Path{}, fmt.Errorf("corrupt node path %q: %w", record.Path, err)
	}
	return p, nil
}

// NodeAt implements index.HierarchyResolver.
func (s *Store) NodeAt(ctx context.Context, p name.Path) (index.NodeID, bool, error) {
	var record nodeRecord
	err := s.db.WithContext(ctx).Where("path = ?", p.String()).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return index.NodeID{}, false, nil
	}
	if err != nil {
		return index.NodeID{}, false, fmt.Errorf("looking up path %s: %w", p, err)
	}
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return index.NodeID{}, false, fmt.Errorf("corrupt node id %q: %w", record.ID, err)
	}
	return id, true, nil
}

// IsDescendant implements index.HierarchyResolver using the materialized
// paths.
func (s *Store) IsDescendant(ctx context.Context, node, ancestor index.NodeID) (bool, error) {
	nodeRec, err := s.node(ctx, node)
	if err != nil {
		return false, err
	}
	ancestorRec, err := s.node(ctx, ancestor)
	if err != nil {
		return false, err
	}
	if ancestorRec.Path == "/" {
		return nodeRec.Path != "/", nil
	}
	return strings.HasPrefix(nodeRec.Path, ancestorRec.Path+"/"), nil
}

func (s *Store) node(ctx context.Context, id index.NodeID) (*nodeRecord, error) {
	var record nodeRecord
	err := s.db.WithContext(ctx).Where("id = ?", id.String()).First(&record).Error
	if err != nil {
		return nil, fmt.Errorf("looking up node %s: %w", id, err)
	}
	return &record, nil
}

// Services bundles this store into the collaborator set a query factory
// expects, with package defaults for analysis, synonyms and collation.
func (s *Store) Services() index.Services {
	return index.Services{
		Reader:     s,
		Hierarchy:  s,
		Namespaces: s,
	}.WithDefaults()
}

// nodeIDIterator iterates a materialized id slice.
type nodeIDIterator struct {
	ids []index.NodeID
	pos int
}

func (it *nodeIDIterator) Next() bool {
	if it.pos+1 >= len(it.ids) {
		return false
	}
	it.pos++
	return true
}

func (it *nodeIDIterator) ID() index.NodeID { return it.ids[it.pos] }
func (it *nodeIDIterator) Err() error       { return nil }
func (it *nodeIDIterator) Close() error     { return nil }
