package shop

import (
	"context"
	"strings"
	"time"
)

type deal struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category,omitempty"`
	Type        string  `json:"type"`
	Discount    float64 `json:"discount"`
	Starts      string  `json:"starts"`
	Ends        string  `json:"ends"`
	MinPurchase float64 `json:"min_purchase,omitempty"`
}

type coupon struct {
	Code        string  `json:"code"`
	DiscountPct float64 `json:"discount_pct"`
	Expires     string  `json:"expires"`
	MinPurchase float64 `json:"min_purchase,omitempty"`
}

// dates in fixtures are plain YYYY-MM-DD strings, so a lexicographic
// comparison against today is enough.
const dateLayout = "2006-01-02"

func (d deal) activeOn(today string) bool {
	return d.Starts <= today && today <= d.Ends
}

// activeDeals lists promotions currently in their run window. If the query
// mentions a known coupon code, its validity is reported alongside.
func (s *Shop) activeDeals(ctx context.Context, query string, params map[string]string) (string, error) {
	today := time.Now().Format(dateLayout)

	active := make([]deal, 0, len(s.deals))
	for _, d := range s.deals {
		if d.activeOn(today) {
			active = append(active, d)
		}
	}

	out := map[string]any{
		"status": "found",
		"count":  len(active),
		"deals":  active,
	}
	if len(active) == 0 {
		out["status"] = "no_deals"
		out["message"] = "No promotions are running right now"
	}

	upper := strings.ToUpper(query)
	for code, c := range s.coupons {
		if !strings.Contains(upper, code) {
			continue
		}
		verdict := map[string]any{
			"code":         c.Code,
			"discount_pct": c.DiscountPct,
			"valid":        c.Expires >= today,
			"expires":      c.Expires,
		}
		if c.MinPurchase > 0 {
			verdict["min_purchase"] = c.MinPurchase
		}
		out["coupon"] = verdict
		break
	}
	return marshal(out)
}
