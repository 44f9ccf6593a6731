package ctdf

import "strings"

// Product is the transport mode tag the MVG API uses for stations and departures
type Product string

const (
	ProductUBahn Product = "UBAHN"
	ProductTram  Product = "TRAM"
	ProductBus   Product = "BUS"
	ProductSBahn Product = "SBAHN"
)

var AllProducts = []Product{ProductUBahn, ProductTram, ProductBus, ProductSBahn}

const DefaultIcon = "mdi:clock"

var productIcons = map[Product]string{
	ProductUBahn: "mdi:subway",
	ProductTram:  "mdi:tram",
	ProductBus:   "mdi:bus",
	ProductSBahn: "mdi:train",
}

// Icon returns the display icon for the product, falling back to DefaultIcon for tags we dont know about
func (p Product) Icon() string {
	if icon, exists := productIcons[p]; exists {
		return icon
	}

	return DefaultIcon
}

// ParseProducts turns configured product names into products, ignoring case and blank entries
func ParseProducts(values []string) []Product {
	products := make([]Product, 0, len(values))
	for _, value := range values {
		value = strings.ToUpper(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		products = append(products, Product(value))
	}

	return products
}
