// Package domain provides core business rules for the leads bounded context.
package domain

// Status is a lead's position in the sales pipeline.
type Status string

const (
	StatusNew           Status = "new"
	StatusContacted     Status = "contacted"
	StatusInterested    Status = "interested"
	StatusNotInterested Status = "not_interested"
	StatusBooked        Status = "booked"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{StatusNew, StatusContacted, StatusInterested, StatusNotInterested, StatusBooked}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Product is the offering a lead is being pitched.
type Product string

const (
	ProductAI         Product = "ai_product"
	ProductConsulting Product = "consulting"
)

// Products lists every product tag.
var Products = []Product{ProductAI, ProductConsulting}

// Valid reports whether p is a known product.
func (p Product) Valid() bool {
	return p == ProductAI || p == ProductConsulting
}

// PlaceholderCompanyName is stored when a lead arrives without a company name.
const PlaceholderCompanyName = "Unbekannt"
