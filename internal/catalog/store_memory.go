package catalog

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[int64]Product
}

func NewMemStore() *MemStore {
	s := &MemStore{m: map[int64]Product{}}
	for _, p := range seedProducts {
		s.m[p.ID] = p
	}
	return s
}

var seedProducts = []Product{
	{
		ID:          1,
		Name:        "iPhone 15 Pro",
		Brand:       "Apple",
		Price:       131999,
		Image:       "https://images.unsplash.com/photo-1592750475338-74b7b21085ab?w=300&h=300&fit=crop",
		Description: "Latest iPhone with titanium design and A17 Pro chip",
		Category:    "Electronics",
	},
	{
		ID:          2,
		Name:        "MacBook Air M3",
		Brand:       "Apple",
		Price:       171599,
		Image:       "https://images.unsplash.com/photo-1517336714731-489689fd1ca8?w=300&h=300&fit=crop",
		Description: "13-inch MacBook Air with M3 chip",
		Category:    "Electronics",
	},
	{
		ID:          3,
		Name:        "AirPods Pro",
		Brand:       "Apple",
		Price:       32999,
		Image:       "https://images.unsplash.com/photo-1572569511254-d8f925fe2cbb?w=300&h=300&fit=crop",
		Description: "Wireless earbuds with active noise cancellation",
		Category:    "Electronics",
	},
	{
		ID:          4,
		Name:        "Nike Air Max",
		Brand:       "Nike",
		Price:       17159,
		Image:       "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=300&h=300&fit=crop",
		Description: "Comfortable running shoes with air cushioning",
		Category:    "Footwear",
	},
	{
		ID:          5,
		Name:        "Samsung Galaxy S24",
		Brand:       "Samsung",
		Price:       105599,
		Image:       "https://images.unsplash.com/photo-1610945265064-0e34e5519bbf?w=300&h=300&fit=crop",
		Description: "Android smartphone with AI features",
		Category:    "Electronics",
	},
	{
		ID:          6,
		Name:        "Sony WH-1000XM5",
		Brand:       "Sony",
		Price:       52799,
		Image:       "https://images.unsplash.com/photo-1583394838336-acd977736f90?w=300&h=300&fit=crop",
		Description: "Premium wireless noise-canceling headphones",
		Category:    "Electronics",
	},
	{
		ID:          7,
		Name:        "Adidas Ultraboost",
		Brand:       "Adidas",
		Price:       23759,
		Image:       "https://images.unsplash.com/photo-1608231387042-66d1773070a5?w=300&h=300&fit=crop",
		Description: "High-performance running shoes with boost technology",
		Category:    "Footwear",
	},
	{
		ID:          8,
		Name:        "iPad Pro 12.9",
		Brand:       "Apple",
		Price:       145199,
		Image:       "https://images.unsplash.com/photo-1544244015-0df4b3ffc6b0?w=300&h=300&fit=crop",
		Description: "Professional tablet with M2 chip and Liquid Retina display",
		Category:    "Electronics",
	},
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListSortedByID(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p, ok, nil
}
