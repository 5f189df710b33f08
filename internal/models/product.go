package models

// Product is a catalog record exactly as the upstream API returns it.
// Only title, slug and price are ever inspected; every other field is
// passed through to clients untouched.
type Product map[string]any

// Title returns the record's title, or "" when absent or not a string.
func (p Product) Title() string {
	s, _ := p["title"].(string)
	return s
}

// Slug returns the record's slug, or "" when absent or not a string.
func (p Product) Slug() string {
	s, _ := p["slug"].(string)
	return s
}

// Price returns the record's price. Records without a numeric price count as 0.
func (p Product) Price() float64 {
	switch v := p["price"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
