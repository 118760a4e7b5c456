package model

// Order is the subset of a customer order relevant to planning. Effort
// totals are precomputed upstream from the order lines; the engine never
// looks at individual lines.
type Order struct {
	ID           string  `json:"id"`
	Customer     string  `json:"customer,omitempty"`
	Status       string  `json:"status,omitempty"`
	DeliveryDate Date    `json:"deliveryDate"`
	DistanceKm   float64 `json:"distanceKm"`
	TotalProdMin int     `json:"totalProdMin"`
	TotalMontMin int     `json:"totalMontMin"`
}

// NeedsPlanning reports whether the order is a candidate for an AutoPlan
// pass over [start, end]: the delivery date falls inside the range and at
// least one effort total is nonzero.
func (o Order) NeedsPlanning(start, end Date) bool {
	if o.DeliveryDate.IsZero() || o.DeliveryDate.Before(start) || o.DeliveryDate.After(end) {
		return false
	}
	return o.TotalProdMin > 0 || o.TotalMontMin > 0
}

// Item maps a catalogue SKU to per-unit production and montage effort.
// Items feed the upstream effort precomputation; the engine reads orders
// only through their totals.
type Item struct {
	SKU            string `json:"sku"`
	Name           string `json:"name,omitempty"`
	ProdMinPerUnit int    `json:"prodMinPerUnit"`
	MontMinPerUnit int    `json:"montMinPerUnit"`
	Active         bool   `json:"active"`
}
