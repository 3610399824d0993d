package shop

import (
	"context"
	"regexp"
	"strings"
)

type order struct {
	ID          string  `json:"id"`
	Customer    string  `json:"customer"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Total       float64 `json:"total"`
	Status      string  `json:"status"`
	Ordered     string  `json:"ordered"`
	Carrier     string  `json:"carrier,omitempty"`
	Tracking    string  `json:"tracking,omitempty"`
	ETA         string  `json:"eta,omitempty"`
	DelayReason string  `json:"delay_reason,omitempty"`
}

var orderStatusText = map[string]string{
	"processing":       "The order is being prepared for shipment",
	"shipped":          "The order has been shipped and is on its way",
	"out_for_delivery": "The order is out for delivery today",
	"delivered":        "The order has been delivered",
	"delayed":          "The order is experiencing a delay",
	"cancelled":        "The order has been cancelled",
}

var orderIDInText = regexp.MustCompile(`(?i)\bORD-\d+\b`)

// lookupOrder returns status, items, and tracking for an order. An unknown
// id is a normal not_found result, not an error: the customer typing a bad
// id should get an answer, not a degraded run.
func (s *Shop) lookupOrder(ctx context.Context, query string, params map[string]string) (string, error) {
	id := params["order_id"]
	if id == "" {
		id = strings.ToUpper(orderIDInText.FindString(query))
	}
	if id == "" {
		return marshal(map[string]any{
			"status":  "needs_order_id",
			"message": "Ask the customer for their order id, format ORD-XXXX",
		})
	}

	o, ok := s.orders[strings.ToUpper(id)]
	if !ok {
		return marshal(map[string]any{
			"status":   "not_found",
			"order_id": id,
			"message":  "No order with this id exists; have the customer double-check it",
		})
	}

	out := map[string]any{
		"status":   "found",
		"order":    o,
		"progress": orderStatusText[o.Status],
	}
	return marshal(out)
}
