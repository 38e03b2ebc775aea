package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"boostshop/internal/domain"
)

var fold = cases.Fold()

var packages = []domain.Package{
	{
		ID:          "starter",
		Name:        "Starter Boost",
		Connections: 100,
		Price:       decimal.RequireFromString("9.99"),
		Description: "Perfect for getting started",
		Features:    []string{"100 LinkedIn connections", "Instant profile boost", "Basic analytics"},
	},
	{
		ID:          "professional",
		Name:        "Professional Pro",
		Connections: 500,
		Price:       decimal.RequireFromString("29.99"),
		Description: "Most popular choice",
		Popular:     true,
		Features:    []string{"500 LinkedIn connections", "Premium profile boost", "Advanced analytics", "Priority support"},
	},
	{
		ID:          "enterprise",
		Name:        "Ultimate Legend",
		Connections: 1000,
		Price:       decimal.RequireFromString("49.99"),
		Description: "Maximum impact",
		Features:    []string{"1000 LinkedIn connections", "Legendary status", "Full analytics suite", "VIP support"},
	},
}

// Catalog is the fixed storefront price list.
type Catalog struct {
	items []domain.Package
}

// New returns the default catalog.
func New() *Catalog {
	return &Catalog{items: packages}
}

// List returns a copy of every package in display order.
func (c *Catalog) List() []domain.Package {
	out := make([]domain.Package, len(c.items))
	copy(out, c.items)
	return out
}

// Lookup finds a package by id or display name, ignoring case.
func (c *Catalog) Lookup(label string) (domain.Package, bool) {
	key := fold.String(strings.TrimSpace(label))
	if key == "" {
		return domain.Package{}, false
	}
	for _, p := range c.items {
		if key == p.ID || key == fold.String(p.Name) {
			return p, true
		}
	}
	return domain.Package{}, false
}

// Validate checks a client selection against the price list. Amounts are
// compared exactly so a tampered price never reaches the provider.
func (c *Catalog) Validate(label string, connections int, amount decimal.Decimal) (domain.Package, error) {
	p, ok := c.Lookup(label)
	if !ok {
		return domain.Package{}, fmt.Errorf("%w: unknown package %q", domain.ErrInvalidRequest, label)
	}
	if connections != p.Connections {
		return domain.Package{}, fmt.Errorf("%w: package %s has %d connections, got %d", domain.ErrInvalidRequest, p.ID, p.Connections, connections)
	}
	if !amount.Equal(p.Price) {
		return domain.Package{}, fmt.Errorf("%w: package %s costs %s, got %s", domain.ErrInvalidRequest, p.ID, p.Price.StringFixed(2), amount.String())
	}
	return p, nil
}
