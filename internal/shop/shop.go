// Package shop provides the built-in capability executors, backed by JSON
// fixtures on disk and the bleve-indexed product catalog.
package shop

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shopassist/concierge/internal/catalog"
	"github.com/shopassist/concierge/internal/engine"
)

// Shop owns the loaded storefront data and exposes it through capability
// executors. The catalog reloads on file change; the rest of the fixtures
// are read once at startup.
type Shop struct {
	Catalog *catalog.Catalog

	inventory map[string]stockRecord
	deals     []deal
	coupons   map[string]coupon
	orders    map[string]order
	reviews   map[string][]review
	zones     []shippingZone
}

// Open loads every data fixture under dataDir. All files are required; a
// storefront with half its data is worse than a loud startup failure.
func Open(dataDir string) (*Shop, error) {
	cat, err := catalog.Load(filepath.Join(dataDir, "products.json"))
	if err != nil {
		return nil, err
	}
	s := &Shop{Catalog: cat}

	var inv struct {
		Inventory []stockRecord `json:"inventory"`
	}
	if err := readJSON(filepath.Join(dataDir, "inventory.json"), &inv); err != nil {
		return nil, err
	}
	s.inventory = make(map[string]stockRecord, len(inv.Inventory))
	for _, rec := range inv.Inventory {
		s.inventory[rec.ProductID] = rec
	}

	var promos struct {
		Deals   []deal   `json:"deals"`
		Coupons []coupon `json:"coupons"`
	}
	if err := readJSON(filepath.Join(dataDir, "deals.json"), &promos); err != nil {
		return nil, err
	}
	s.deals = promos.Deals
	s.coupons = make(map[string]coupon, len(promos.Coupons))
	for _, c := range promos.Coupons {
		s.coupons[strings.ToUpper(c.Code)] = c
	}

	var ord struct {
		Orders []order `json:"orders"`
	}
	if err := readJSON(filepath.Join(dataDir, "orders.json"), &ord); err != nil {
		return nil, err
	}
	s.orders = make(map[string]order, len(ord.Orders))
	for _, o := range ord.Orders {
		s.orders[strings.ToUpper(o.ID)] = o
	}

	var rev struct {
		Reviews []review `json:"reviews"`
	}
	if err := readJSON(filepath.Join(dataDir, "reviews.json"), &rev); err != nil {
		return nil, err
	}
	s.reviews = make(map[string][]review, len(rev.Reviews))
	for _, r := range rev.Reviews {
		s.reviews[r.ProductID] = append(s.reviews[r.ProductID], r)
	}

	var zones struct {
		Zones []shippingZone `json:"zones"`
	}
	if err := readJSON(filepath.Join(dataDir, "shipping_zones.json"), &zones); err != nil {
		return nil, err
	}
	s.zones = zones.Zones

	return s, nil
}

// Close releases the catalog's search index.
func (s *Shop) Close() error {
	return s.Catalog.Close()
}

// Registry builds the capability registry the engine schedules against.
func (s *Shop) Registry() (engine.Registry, error) {
	return engine.NewRegistry(
		engine.Capability{
			Name:         engine.CapProductSearch,
			Description:  "Search the product catalog, optionally capped at a maximum price",
			ParamsSchema: productSearchSchema,
			MemoryKey:    "last_products",
			Fn:           s.searchProducts,
		},
		engine.Capability{
			Name:        engine.CapStockCheck,
			Description: "Check stock levels and warehouse availability for a product",
			Fn:          s.checkStock,
		},
		engine.Capability{
			Name:        engine.CapReviews,
			Description: "Summarize customer reviews and ratings for a product",
			Fn:          s.summarizeReviews,
		},
		engine.Capability{
			Name:        engine.CapDeals,
			Description: "List active deals and promotions, validating any coupon code mentioned",
			Fn:          s.activeDeals,
		},
		engine.Capability{
			Name:         engine.CapShipping,
			Description:  "Quote shipping options and delivery estimates for a destination",
			ParamsSchema: shippingSchema,
			Fn:           s.shippingOptions,
		},
		engine.Capability{
			Name:         engine.CapOrderLookup,
			Description:  "Look up an order's status, items, and tracking details",
			ParamsSchema: orderLookupSchema,
			MemoryKey:    "last_order",
			Fn:           s.lookupOrder,
		},
		engine.Capability{
			Name:        engine.CapGeneral,
			Description: "General storefront lookup when no specific capability applies",
			Fn:          s.generalLookup,
		},
	)
}

const (
	productSearchSchema = `{
		"type": "object",
		"properties": {
			"max_price": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"}
		}
	}`
	shippingSchema = `{
		"type": "object",
		"properties": {
			"zip": {"type": "string", "pattern": "^[0-9]{5}$"}
		}
	}`
	orderLookupSchema = `{
		"type": "object",
		"properties": {
			"order_id": {"type": "string", "pattern": "^ORD-[0-9]+$"}
		}
	}`
)

var productIDPattern = regexp.MustCompile(`\bP\d{3,}\b`)

// resolveProductID finds the product a goal is about: an explicit param
// first, then ids mentioned in upstream goal outputs, then the query text.
func (s *Shop) resolveProductID(query string, params map[string]string) string {
	if id := params["product_id"]; id != "" {
		return id
	}
	for k, v := range params {
		if !strings.HasPrefix(k, engine.DepParamPrefix) {
			continue
		}
		if id := productIDPattern.FindString(v); id != "" {
			return id
		}
	}
	return productIDPattern.FindString(strings.ToUpper(query))
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func marshal(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(out), nil
}
