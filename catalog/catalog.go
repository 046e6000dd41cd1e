// Package catalog is the catalog spec.md §6 lists as "consumed":
// get_table/get_table_indexes, TableInfo{schema, table_heap, oid} and
// IndexInfo{index, key_schema, index_oid}. The core has no external
// catalog to import, so this is the owned implementation the executors in
// package execution call. Structurally grounded on the teacher's
// storage_engine/catalog (name-to-metadata registry, OID issuance); the
// teacher persists schemas to JSON files under a db root, which this core
// drops (persistence/DDL durability is out of scope — catalog entries live
// only as long as the process does, built via CreateTable/CreateIndex
// calls an execution-layer DDL path would make).
package catalog

import (
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"corebase/index/hash"
	"corebase/logging"
	"corebase/storage/heap"
	"corebase/storage/tuple"
)

// TableInfo exposes a table's schema, its backing heap, and its OID —
// exactly the fields spec.md §6 names.
type TableInfo struct {
	OID    int64
	Name   string
	Schema *tuple.Schema
	Heap   *heap.TableHeap
}

// IndexInfo exposes an index's key schema, key column positions, OID, and
// the index itself — spec.md §6's IndexInfo.
type IndexInfo struct {
	OID       int64
	Name      string
	TableName string
	KeySchema *tuple.Schema
	KeyAttrs  []int
	Index     *hash.ExtendibleHashTable
}

// KeyFromTuple projects t's key columns and reduces them to the single
// int64 the hash table indexes on (see DESIGN.md's Open Question on hash
// table key types: Integer keys pass through, everything else hashes its
// HashKey() bytes).
func (ii *IndexInfo) KeyFromTuple(t *tuple.Tuple, tableSchema *tuple.Schema) int64 {
	// This core's indexes are single-column (KeyAttrs[0]); a composite key
	// would need a combined encoding, which no SPEC_FULL operation needs.
	v := t.GetValue(ii.KeyAttrs[0])
	if v.Type == tuple.Integer && !v.Null {
		return v.AsInteger()
	}
	return int64(hashBytes(v.HashKey()))
}

func hashBytes(b []byte) uint64 {
	var h uint64 = 14695981039346656037
	for _, c := range b {
		h ^= uint64(c)
		h *= 1099511628211
	}
	return h
}

// Catalog is the in-memory registry of tables and their indexes, with a
// ristretto read-through cache in front of GetTableByName: every
// executor's constructor resolves its table by name, putting catalog
// resolution on the hot path of every query. GetTable and GetTableIndexes
// are not cached (DOMAIN STACK commitment: the
// teacher imports ristretto but never calls it).
type Catalog struct {
	mu sync.RWMutex

	nextOID    atomic.Int64
	tables     map[string]*TableInfo
	tablesByID map[int64]*TableInfo
	indexes    map[string][]*IndexInfo

	cache *ristretto.Cache[string, *TableInfo]
	log   *logrus.Entry
}

// NewCatalog builds an empty catalog and its lookup cache; CreateTable
// caches each new table, and GetTableByName caches on a miss.
func NewCatalog() (*Catalog, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *TableInfo]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "catalog: build cache")
	}
	return &Catalog{
		tables:     make(map[string]*TableInfo),
		tablesByID: make(map[int64]*TableInfo),
		indexes:    make(map[string][]*IndexInfo),
		cache:      cache,
		log:        logging.For("catalog"),
	}, nil
}

// CreateTable registers a new table backed by a freshly allocated heap.
func (c *Catalog) CreateTable(name string, schema *tuple.Schema, pool heap.Pool) (*TableInfo, error) {
	h, err := heap.NewTableHeap(pool, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog: create table %s", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tables[name]; exists {
		return nil, errors.Errorf("catalog: table %s already exists", name)
	}

	info := &TableInfo{
		OID:    c.nextOID.Add(1),
		Name:   name,
		Schema: schema,
		Heap:   h,
	}
	c.tables[name] = info
	c.tablesByID[info.OID] = info

	cost := int64(len(name)) + 64
	c.cache.Set(name, info, cost)
	c.cache.Wait()
	c.log.WithFields(logrus.Fields{"table": name, "cache_cost": humanize.Bytes(uint64(cost))}).Info("table created")
	return info, nil
}

// CreateIndex builds a new extendible hash index over tableName's
// keyAttrs columns.
func (c *Catalog) CreateIndex(tableName, indexName string, keyAttrs []int, pool hash.Pool, maxGlobalDepth uint32) (*IndexInfo, error) {
	c.mu.RLock()
	table, ok := c.tables[tableName]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("catalog: table %s not found", tableName)
	}

	ht, err := hash.NewExtendibleHashTable(pool, maxGlobalDepth, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog: create index %s", indexName)
	}

	keyCols := make([]tuple.Column, len(keyAttrs))
	for i, attr := range keyAttrs {
		keyCols[i] = table.Schema.Columns[attr]
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	info := &IndexInfo{
		OID:       c.nextOID.Add(1),
		Name:      indexName,
		TableName: tableName,
		KeySchema: tuple.NewSchema(keyCols...),
		KeyAttrs:  keyAttrs,
		Index:     ht,
	}
	c.indexes[tableName] = append(c.indexes[tableName], info)
	return info, nil
}

// GetTable resolves a table by OID.
func (c *Catalog) GetTable(oid int64) (*TableInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.tablesByID[oid]
	if !ok {
		return nil, errors.Errorf("catalog: no table with oid %d", oid)
	}
	return info, nil
}

// GetTableByName resolves a table by name, consulting the cache first.
func (c *Catalog) GetTableByName(name string) (*TableInfo, error) {
	if info, found := c.cache.Get(name); found {
		return info, nil
	}

	c.mu.RLock()
	info, ok := c.tables[name]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("catalog: table %s not found", name)
	}

	c.cache.Set(name, info, int64(len(name))+64)
	c.cache.Wait()
	return info, nil
}

// GetTableIndexes returns every index registered on tableName.
func (c *Catalog) GetTableIndexes(tableName string) ([]*IndexInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.tables[tableName]; !ok {
		return nil, errors.Errorf("catalog: table %s not found", tableName)
	}
	return c.indexes[tableName], nil
}
