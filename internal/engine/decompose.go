package engine

import (
	"regexp"
	"strings"
)

// Capability names the built-in decomposer targets. The registry passed to
// the engine is expected to cover these; internal/shop provides the default
// executors.
const (
	CapProductSearch = "product_search"
	CapStockCheck    = "stock_check"
	CapReviews       = "review_summary"
	CapDeals         = "deals"
	CapShipping      = "shipping_options"
	CapOrderLookup   = "order_lookup"
	CapGeneral       = "general"
)

// Parameter keys extracted from query text.
const (
	ParamMaxPrice = "max_price"
	ParamZip      = "zip"
	ParamOrderID  = "order_id"
)

var (
	orderIDPattern  = regexp.MustCompile(`(?i)\bORD-\d+\b`)
	zipCodePattern  = regexp.MustCompile(`\b(\d{5})\b`)
	maxPricePattern = regexp.MustCompile(`\$(\d+(?:,\d{3})*(?:\.\d+)?)`)
)

// category is one keyword-matched goal template.
type category struct {
	goalID         string
	capability     string
	description    string
	keywords       []string
	needsDiscovery bool // depends on the product-discovery goal when one exists
}

// categories is the fixed scan table, in emission order. Discovery comes
// first so dependent goals can reference it.
var categories = []category{
	{
		goalID:      "goal_product",
		capability:  CapProductSearch,
		description: "Find and recommend products matching the query",
		keywords:    []string{"laptop", "product", "find", "search", "recommend", "buy", "headphone", "monitor"},
	},
	{
		goalID:         "goal_stock",
		capability:     CapStockCheck,
		description:    "Check stock availability for recommended products",
		keywords:       []string{"stock", "available", "availability", "inventory"},
		needsDiscovery: true,
	},
	{
		goalID:         "goal_reviews",
		capability:     CapReviews,
		description:    "Get customer reviews and ratings",
		keywords:       []string{"review", "rating", "feedback"},
		needsDiscovery: true,
	},
	{
		goalID:         "goal_pricing",
		capability:     CapDeals,
		description:    "Check for deals and best prices",
		keywords:       []string{"deal", "discount", "price", "coupon"},
		needsDiscovery: true,
	},
	{
		goalID:      "goal_shipping",
		capability:  CapShipping,
		description: "Get shipping options for the destination",
		keywords:    []string{"shipping", "delivery", "ship to"},
	},
	{
		goalID:      "goal_order",
		capability:  CapOrderLookup,
		description: "Look up order information",
		keywords:    []string{"order", "track", "ord-"},
	},
}

// matchCategories returns the categories whose keywords appear in the
// folded query, in table order. Shared with the classifier's heuristic.
func matchCategories(q string) []category {
	var matched []category
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(q, kw) {
				matched = append(matched, c)
				break
			}
		}
	}
	return matched
}

// Decomposer turns a query into an ordered list of goals with dependency
// edges and extracted parameters.
type Decomposer interface {
	Decompose(query string, mode Mode) []Goal
}

// KeywordDecomposer is the default pattern-based decomposer.
type KeywordDecomposer struct{}

// Decompose never returns zero goals for a non-simple mode: standard mode
// yields exactly one general goal, and complex mode falls back to one when
// no category matches.
func (KeywordDecomposer) Decompose(query string, mode Mode) []Goal {
	if mode != ModeComplex {
		return []Goal{generalGoal(query)}
	}

	q := strings.ToLower(query)
	matched := matchCategories(q)
	if len(matched) == 0 {
		return []Goal{generalGoal(query)}
	}

	hasDiscovery := false
	for _, c := range matched {
		if c.capability == CapProductSearch {
			hasDiscovery = true
		}
	}

	goals := make([]Goal, 0, len(matched))
	for _, c := range matched {
		g := Goal{
			ID:          c.goalID,
			Description: c.description,
			Capability:  c.capability,
			Status:      GoalPending,
		}
		if c.needsDiscovery && hasDiscovery {
			g.DependsOn = []string{"goal_product"}
		}
		if params := extractParams(c.capability, query); len(params) > 0 {
			g.Params = params
		}
		goals = append(goals, g)
	}
	return goals
}

func generalGoal(query string) Goal {
	return Goal{
		ID:          "goal_1",
		Description: query,
		Capability:  CapGeneral,
		Status:      GoalPending,
	}
}

// extractParams pulls structured parameters out of the query text for the
// goal that can use them.
func extractParams(capability, query string) map[string]string {
	params := make(map[string]string)
	switch capability {
	case CapProductSearch:
		if m := maxPricePattern.FindStringSubmatch(query); m != nil {
			params[ParamMaxPrice] = strings.ReplaceAll(m[1], ",", "")
		}
	case CapShipping:
		if m := zipCodePattern.FindStringSubmatch(query); m != nil {
			params[ParamZip] = m[1]
		}
	case CapOrderLookup:
		if m := orderIDPattern.FindString(query); m != "" {
			params[ParamOrderID] = strings.ToUpper(m)
		}
	}
	if len(params) == 0 {
		return nil
	}
	return params
}
