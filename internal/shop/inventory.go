package shop

import "context"

type stockRecord struct {
	ProductID   string           `json:"product_id"`
	Status      string           `json:"status"`
	Total       int              `json:"total"`
	Reserved    int              `json:"reserved"`
	Warehouses  []warehouseStock `json:"warehouses"`
	RestockDate string           `json:"restock_date,omitempty"`
}

type warehouseStock struct {
	Location string `json:"location"`
	Quantity int    `json:"quantity"`
}

func (r stockRecord) available() int {
	return r.Total - r.Reserved
}

// checkStock reports stock status and warehouse distribution for the product
// the goal resolves to. With nothing to resolve it asks for a product rather
// than failing, since a synthesis step can turn that into a clarifying reply.
func (s *Shop) checkStock(ctx context.Context, query string, params map[string]string) (string, error) {
	id := s.resolveProductID(query, params)
	if id == "" {
		return marshal(map[string]any{
			"status":  "unknown_product",
			"message": "No product id to check stock for; ask the customer which product they mean",
		})
	}

	rec, ok := s.inventory[id]
	if !ok {
		return marshal(map[string]any{
			"status":     "not_tracked",
			"product_id": id,
			"message":    "No inventory record exists for this product",
		})
	}

	name := id
	if p, found := s.Catalog.Get(id); found {
		name = p.Name
	}
	out := map[string]any{
		"status":     rec.Status,
		"product_id": id,
		"product":    name,
		"total":      rec.Total,
		"reserved":   rec.Reserved,
		"available":  rec.available(),
		"warehouses": rec.Warehouses,
	}
	if rec.RestockDate != "" {
		out["restock_date"] = rec.RestockDate
	}
	return marshal(out)
}
