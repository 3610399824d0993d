// Package catalog holds the product fixtures and the full-text index that
// backs the product-discovery capability.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Product is one catalog entry.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Rating      float64 `json:"rating"`
	Stock       int     `json:"stock"`
}

// Match is a scored search result.
type Match struct {
	Product
	Score float64 `json:"score"`
}

// Catalog is the in-memory product set plus its search index. Reload swaps
// both under the lock, so reads during a fixture reload stay consistent.
type Catalog struct {
	path string

	mu       sync.RWMutex
	products map[string]Product
	index    bleve.Index
}

// Load reads the products fixture and builds the search index.
func Load(path string) (*Catalog, error) {
	c := &Catalog{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the fixture file and rebuilds the index.
func (c *Catalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	var doc struct {
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse catalog json: %w", err)
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create catalog index: %w", err)
	}

	products := make(map[string]Product, len(doc.Products))
	for _, p := range doc.Products {
		if p.ID == "" {
			return fmt.Errorf("catalog entry %q has no id", p.Name)
		}
		products[p.ID] = p
		if err := index.Index(p.ID, map[string]any{
			"id":          p.ID,
			"name":        p.Name,
			"category":    p.Category,
			"description": p.Description,
		}); err != nil {
			return fmt.Errorf("failed to index product %s: %w", p.ID, err)
		}
	}

	c.mu.Lock()
	old := c.index
	c.products = products
	c.index = index
	c.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	productMapping := bleve.NewDocumentMapping()

	idField := bleve.NewTextFieldMapping()
	idField.Analyzer = keyword.Name
	productMapping.AddFieldMappingsAt("id", idField)

	for _, field := range []string{"name", "category", "description"} {
		textField := bleve.NewTextFieldMapping()
		textField.Analyzer = standard.Name
		productMapping.AddFieldMappingsAt(field, textField)
	}

	indexMapping.DefaultMapping = productMapping
	return indexMapping
}

// Get returns a product by id.
func (c *Catalog) Get(id string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	return p, ok
}

// Len returns the number of products currently loaded.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// Search finds up to k products matching the query text. maxPrice <= 0
// means no price filter. Results come back sorted by relevance.
func (c *Catalog) Search(query string, maxPrice float64, k int) ([]Match, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	// Fetch extra hits so a price filter can't starve the result set.
	req.Size = k * 4
	res, err := c.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}

	matches := make([]Match, 0, k)
	for _, hit := range res.Hits {
		p, ok := c.products[hit.ID]
		if !ok {
			continue
		}
		if maxPrice > 0 && p.Price > maxPrice {
			continue
		}
		matches = append(matches, Match{Product: p, Score: hit.Score})
		if len(matches) == k {
			break
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches, nil
}

// Close releases the search index.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index == nil {
		return nil
	}
	err := c.index.Close()
	c.index = nil
	return err
}
