package repo

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/rogerio-castellano/catalog-proxy/internal/models"
)

// ProductFilter holds the optional constraints of a product listing request.
// Zero values impose no constraint.
type ProductFilter struct {
	Title    string
	Slug     string
	MinPrice *float64
	MaxPrice *float64
}

// ProductFilterFromQuery reads title, slug, minPrice and maxPrice from q.
// Blank or non-numeric price bounds are left unset.
func ProductFilterFromQuery(q url.Values) ProductFilter {
	return ProductFilter{
		Title:    q.Get("title"),
		Slug:     q.Get("slug"),
		MinPrice: parseFloatPtr(q.Get("minPrice")),
		MaxPrice: parseFloatPtr(q.Get("maxPrice")),
	}
}

// IsEmpty reports whether the filter has no active constraint.
func (pf ProductFilter) IsEmpty() bool {
	return isBlank(pf.Title) && isBlank(pf.Slug) && pf.MinPrice == nil && pf.MaxPrice == nil
}

// FilterProducts narrows a copy of products by each active constraint in turn:
// title, slug, minPrice, maxPrice. The input slice is never modified.
func FilterProducts(products []models.Product, pf ProductFilter) []models.Product {
	filtered := make([]models.Product, len(products))
	copy(filtered, products)

	if !isBlank(pf.Title) {
		needle := strings.ToLower(pf.Title)
		filtered = narrow(filtered, func(p models.Product) bool {
			return strings.Contains(strings.ToLower(p.Title()), needle)
		})
	}
	if !isBlank(pf.Slug) {
		filtered = narrow(filtered, func(p models.Product) bool {
			return p.Slug() == pf.Slug
		})
	}
	if pf.MinPrice != nil {
		lower := *pf.MinPrice
		filtered = narrow(filtered, func(p models.Product) bool {
			return p.Price() >= lower
		})
	}
	if pf.MaxPrice != nil {
		upper := *pf.MaxPrice
		filtered = narrow(filtered, func(p models.Product) bool {
			return p.Price() <= upper
		})
	}

	return filtered
}

// narrow keeps the matching products in place; products must be owned by the caller.
func narrow(products []models.Product, keep func(models.Product) bool) []models.Product {
	out := products[:0]
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func parseFloatPtr(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}
