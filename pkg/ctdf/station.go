package ctdf

import "golang.org/x/exp/slices"

type Station struct {
	Identifier        string    `json:"identifier"`
	DisplayName       string    `json:"display_name"`
	SupportedProducts []Product `json:"supported_products"`
}

func (s Station) SupportsProduct(product Product) bool {
	return slices.Contains(s.SupportedProducts, product)
}
