package shop

import (
	"context"
	"strconv"
)

const searchResultLimit = 5

// searchProducts runs the catalog query, honoring an optional max_price cap.
func (s *Shop) searchProducts(ctx context.Context, query string, params map[string]string) (string, error) {
	var maxPrice float64
	if raw, ok := params["max_price"]; ok && raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", err
		}
		maxPrice = p
	}

	matches, err := s.Catalog.Search(query, maxPrice, searchResultLimit)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return marshal(map[string]any{
			"status":  "no_results",
			"message": "No products matched the search",
		})
	}
	return marshal(map[string]any{
		"status":   "found",
		"count":    len(matches),
		"products": matches,
	})
}

// generalLookup is the catch-all capability: a plain catalog search with no
// price cap, for queries the decomposer could not map to anything sharper.
func (s *Shop) generalLookup(ctx context.Context, query string, params map[string]string) (string, error) {
	matches, err := s.Catalog.Search(query, 0, searchResultLimit)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return marshal(map[string]any{
			"status":  "no_results",
			"message": "Nothing in the storefront matched the request",
		})
	}
	return marshal(map[string]any{
		"status":   "found",
		"count":    len(matches),
		"products": matches,
	})
}
