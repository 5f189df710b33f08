package repo

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/rogerio-castellano/catalog-proxy/internal/models"
)

func sampleProducts() []models.Product {
	return []models.Product{
		{"id": 1.0, "title": "Shoe", "slug": "shoe-1", "price": 10.0},
		{"id": 2.0, "title": "Hat", "slug": "hat-1", "price": 50.0},
		{"id": 3.0, "title": "Snowshoe", "slug": "snowshoe", "price": 120.0},
		{"id": 4.0, "slug": "mystery-box"},
	}
}

func titles(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Title())
	}
	return out
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestFilterProducts(t *testing.T) {
	tests := []struct {
		name   string
		filter ProductFilter
		want   []string
	}{
		{
			name:   "No constraints",
			filter: ProductFilter{},
			want:   []string{"Shoe", "Hat", "Snowshoe", ""},
		},
		{
			name:   "Blank strings are ignored",
			filter: ProductFilter{Title: "   ", Slug: " "},
			want:   []string{"Shoe", "Hat", "Snowshoe", ""},
		},
		{
			name:   "Title is case-insensitive substring",
			filter: ProductFilter{Title: "SHO"},
			want:   []string{"Shoe", "Snowshoe"},
		},
		{
			name:   "Slug is exact",
			filter: ProductFilter{Slug: "shoe-1"},
			want:   []string{"Shoe"},
		},
		{
			name:   "Slug does not match partially",
			filter: ProductFilter{Slug: "shoe"},
			want:   []string{},
		},
		{
			name:   "Min price",
			filter: ProductFilter{MinPrice: floatPtr(20)},
			want:   []string{"Hat", "Snowshoe"},
		},
		{
			name:   "Bounds are inclusive",
			filter: ProductFilter{MinPrice: floatPtr(10), MaxPrice: floatPtr(50)},
			want:   []string{"Shoe", "Hat"},
		},
		{
			name:   "Missing price counts as zero",
			filter: ProductFilter{MaxPrice: floatPtr(0)},
			want:   []string{""},
		},
		{
			name:   "Combined constraints",
			filter: ProductFilter{Title: "shoe", MinPrice: floatPtr(100)},
			want:   []string{"Snowshoe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(FilterProducts(sampleProducts(), tt.filter))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFilterProducts_MinPriceExample(t *testing.T) {
	products := []models.Product{
		{"title": "Shoe", "slug": "shoe-1", "price": 10.0},
		{"title": "Hat", "slug": "hat-1", "price": 50.0},
	}

	got := FilterProducts(products, ProductFilterFromQuery(url.Values{"minPrice": {"20"}}))
	if len(got) != 1 || got[0].Title() != "Hat" {
		t.Fatalf("expected only Hat, got %v", titles(got))
	}
}

func TestFilterProducts_DoesNotMutateInput(t *testing.T) {
	products := sampleProducts()
	before := titles(products)

	FilterProducts(products, ProductFilter{Title: "hat"})

	if after := titles(products); !reflect.DeepEqual(before, after) {
		t.Errorf("input was mutated: before %v, after %v", before, after)
	}
}

func TestFilterProducts_Idempotent(t *testing.T) {
	filters := []ProductFilter{
		{},
		{Title: "sho"},
		{Slug: "hat-1"},
		{MinPrice: floatPtr(20), MaxPrice: floatPtr(200)},
	}

	for _, f := range filters {
		once := FilterProducts(sampleProducts(), f)
		twice := FilterProducts(once, f)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("filter %+v not idempotent: %v vs %v", f, titles(once), titles(twice))
		}
	}
}

func TestFilterProducts_NeverNil(t *testing.T) {
	if got := FilterProducts(nil, ProductFilter{}); got == nil {
		t.Error("expected empty slice, got nil")
	}
	if got := FilterProducts(sampleProducts(), ProductFilter{Title: "nothing"}); got == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestProductFilterFromQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantMin *float64
		wantMax *float64
	}{
		{name: "Absent bounds", query: ""},
		{name: "Valid bounds", query: "minPrice=1.5&maxPrice=20", wantMin: floatPtr(1.5), wantMax: floatPtr(20)},
		{name: "Malformed max", query: "maxPrice=abc"},
		{name: "Malformed min with valid max", query: "minPrice=ten&maxPrice=30", wantMax: floatPtr(30)},
		{name: "NaN is rejected", query: "minPrice=NaN"},
		{name: "Whitespace is trimmed", query: "minPrice=%2012%20", wantMin: floatPtr(12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("bad query: %v", err)
			}
			f := ProductFilterFromQuery(q)
			if !reflect.DeepEqual(f.MinPrice, tt.wantMin) {
				t.Errorf("MinPrice: expected %v, got %v", tt.wantMin, f.MinPrice)
			}
			if !reflect.DeepEqual(f.MaxPrice, tt.wantMax) {
				t.Errorf("MaxPrice: expected %v, got %v", tt.wantMax, f.MaxPrice)
			}
		})
	}
}

func TestFilterProducts_UnparseableMaxPriceKeepsAll(t *testing.T) {
	f := ProductFilterFromQuery(url.Values{"maxPrice": {"abc"}})
	if !f.IsEmpty() {
		t.Fatalf("expected empty filter, got %+v", f)
	}
	got := FilterProducts(sampleProducts(), f)
	if len(got) != len(sampleProducts()) {
		t.Errorf("expected %d products, got %d", len(sampleProducts()), len(got))
	}
}
