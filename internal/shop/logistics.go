package shop

import (
	"context"
	"strings"
)

type shippingZone struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Prefixes []string         `json:"prefixes"`
	Options  []shippingOption `json:"options"`
}

type shippingOption struct {
	Method string  `json:"method"`
	Days   int     `json:"days"`
	Cost   float64 `json:"cost"`
}

// zoneFor matches the destination zip against zone prefixes, longest match
// winning so "995" (Alaska) beats the generic "9" west-coast zone. A zone
// with no prefixes is the fallback for unmatched zips.
func (s *Shop) zoneFor(zip string) (shippingZone, bool) {
	var best shippingZone
	bestLen := -1
	for _, z := range s.zones {
		if len(z.Prefixes) == 0 && bestLen < 0 {
			best, bestLen = z, 0
			continue
		}
		for _, p := range z.Prefixes {
			if strings.HasPrefix(zip, p) && len(p) > bestLen {
				best, bestLen = z, len(p)
			}
		}
	}
	return best, bestLen >= 0
}

// shippingOptions quotes delivery methods for the destination zip. Without
// a zip it returns the generic option list so synthesis can still describe
// what shipping is available.
func (s *Shop) shippingOptions(ctx context.Context, query string, params map[string]string) (string, error) {
	zip := params["zip"]
	if zip == "" {
		methods := map[string]bool{}
		generic := make([]string, 0, 4)
		for _, z := range s.zones {
			for _, o := range z.Options {
				if !methods[o.Method] {
					methods[o.Method] = true
					generic = append(generic, o.Method)
				}
			}
		}
		return marshal(map[string]any{
			"status":  "no_destination",
			"methods": generic,
			"message": "Costs and delivery dates depend on the destination zip code",
		})
	}

	zone, ok := s.zoneFor(zip)
	if !ok {
		return marshal(map[string]any{
			"status":  "unserviceable",
			"zip":     zip,
			"message": "We do not currently ship to this destination",
		})
	}
	return marshal(map[string]any{
		"status":  "found",
		"zip":     zip,
		"zone":    zone.Name,
		"options": zone.Options,
	})
}
