package reference

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Catalog holds one loaded table per category. Tables are loaded once and
// treated as immutable; Reload replaces them all.
type Catalog struct {
	dataDir string
	sources map[Category]Source
	logger  *zap.Logger

	mu     sync.RWMutex
	tables []*Table
}

// NewCatalog creates an unloaded catalog. Categories missing from sources
// use their default file in dataDir.
func NewCatalog(dataDir string, sources map[Category]Source) *Catalog {
	if sources == nil {
		sources = make(map[Category]Source)
	}
	return &Catalog{
		dataDir: dataDir,
		sources: sources,
		logger:  zap.NewNop(),
	}
}

// NewStaticCatalog creates a loaded catalog from tables assembled in code.
// Categories without a table get an empty one.
func NewStaticCatalog(tables ...*Table) *Catalog {
	c := NewCatalog("", nil)
	loaded := emptyTables()
	for _, t := range tables {
		if t != nil && t.Category.valid() {
			loaded[t.Category] = t
		}
	}
	c.tables = loaded
	return c
}

// SetLogger sets the logger for load diagnostics.
func (c *Catalog) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Load reads every category's table concurrently. A table whose file does
// not exist loads as empty with a warning; any other failure aborts the load.
func (c *Catalog) Load(ctx context.Context) error {
	tables := make([]*Table, len(Categories))

	g, ctx := errgroup.WithContext(ctx)
	for _, cat := range Categories {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := c.loadOne(cat)
			if err != nil {
				return err
			}
			tables[cat] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	c.tables = tables
	c.mu.Unlock()

	for _, t := range tables {
		c.logger.Debug("loaded reference table",
			zap.String("category", t.Category.Key()),
			zap.String("source", t.Source),
			zap.Int("records", t.Len()))
	}
	return nil
}

// Reload discards the loaded tables and reads every source again.
func (c *Catalog) Reload(ctx context.Context) error {
	return c.Load(ctx)
}

func (c *Catalog) loadOne(cat Category) (*Table, error) {
	inline, path := c.sources[cat].resolve(cat, c.dataDir)
	if inline != "" {
		return ParseTable(cat, strings.NewReader(inline), "inline")
	}

	t, err := LoadTable(cat, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("reference table not found, category will have no matches",
				zap.String("category", cat.Key()),
				zap.String("path", path))
			return &Table{Category: cat, Source: path}, nil
		}
		return nil, err
	}
	return t, nil
}

// Loaded reports whether Load has completed successfully.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tables != nil
}

// Table returns the table for a category, or nil before Load.
func (c *Catalog) Table(cat Category) *Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tables == nil || !cat.valid() {
		return nil
	}
	return c.tables[cat]
}

// Tables returns all tables in category order, or nil before Load.
func (c *Catalog) Tables() []*Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tables == nil {
		return nil
	}
	out := make([]*Table, len(c.tables))
	copy(out, c.tables)
	return out
}

// RecordCount returns the total number of records across all tables.
func (c *Catalog) RecordCount() int {
	n := 0
	for _, t := range c.Tables() {
		n += t.Len()
	}
	return n
}

func emptyTables() []*Table {
	tables := make([]*Table, len(Categories))
	for _, cat := range Categories {
		tables[cat] = &Table{Category: cat, Source: "memory"}
	}
	return tables
}
