package shop

import (
	"context"
	"sort"
)

type review struct {
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Helpful   int    `json:"helpful"`
	Date      string `json:"date"`
	Verified  bool   `json:"verified"`
}

const reviewSnippetLimit = 3

// summarizeReviews aggregates ratings for a product and quotes the most
// helpful reviews so synthesis has concrete customer language to draw on.
func (s *Shop) summarizeReviews(ctx context.Context, query string, params map[string]string) (string, error) {
	id := s.resolveProductID(query, params)
	if id == "" {
		return marshal(map[string]any{
			"status":  "unknown_product",
			"message": "No product id to summarize reviews for",
		})
	}

	revs := s.reviews[id]
	if len(revs) == 0 {
		return marshal(map[string]any{
			"status":     "no_reviews",
			"product_id": id,
			"message":    "This product has not been reviewed yet",
		})
	}

	total := 0
	counts := map[int]int{}
	for _, r := range revs {
		total += r.Rating
		counts[r.Rating]++
	}

	top := make([]review, len(revs))
	copy(top, revs)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Helpful > top[j].Helpful })
	if len(top) > reviewSnippetLimit {
		top = top[:reviewSnippetLimit]
	}

	name := id
	if p, found := s.Catalog.Get(id); found {
		name = p.Name
	}
	return marshal(map[string]any{
		"status":       "found",
		"product_id":   id,
		"product":      name,
		"review_count": len(revs),
		"avg_rating":   float64(total) / float64(len(revs)),
		"breakdown":    counts,
		"top_reviews":  top,
	})
}
