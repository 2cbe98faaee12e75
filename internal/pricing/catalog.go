package pricing

import (
	"context"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
)

// UnitPrices holds the per-category hourly prices of one instance type.
type UnitPrices struct {
	Compute *float64 `json:"ec2,omitempty"`
	Service *float64 `json:"emr,omitempty"`
}

// catalogDocument is the on-disk price catalog, JSON or YAML.
type catalogDocument struct {
	Region   string                `json:"region"`
	Currency string                `json:"currency"`
	Prices   map[string]UnitPrices `json:"prices"`
}

// StaticCatalog is a PriceCatalog backed by a fixed price table.
type StaticCatalog struct {
	Region   string
	Currency string
	prices   map[string]UnitPrices
}

// NewStaticCatalog creates a catalog from a price table keyed by instance type.
func NewStaticCatalog(region, currency string, prices map[string]UnitPrices) *StaticCatalog {
	if prices == nil {
		prices = make(map[string]UnitPrices)
	}
	return &StaticCatalog{Region: region, Currency: currency, prices: prices}
}

// ParseCatalog decodes a price catalog document. JSON and YAML are accepted.
func ParseCatalog(data []byte) (*StaticCatalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, esterrors.New(esterrors.ErrDocumentMalformed, "pricing", "decode price catalog", err)
	}
	for instanceType, p := range doc.Prices {
		for _, v := range []*float64{p.Compute, p.Service} {
			if v != nil && *v < 0 {
				return nil, esterrors.New(esterrors.ErrDocumentMalformed, "pricing",
					fmt.Sprintf("negative price for %s", instanceType), nil)
			}
		}
	}
	return NewStaticCatalog(doc.Region, doc.Currency, doc.Prices), nil
}

// LoadCatalog reads and decodes the price catalog at path.
func LoadCatalog(path string) (*StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pricing: read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// UnitCost implements PriceCatalog.
func (c *StaticCatalog) UnitCost(_ context.Context, category, instanceType string) (float64, error) {
	p, ok := c.prices[instanceType]
	if !ok {
		return 0, fmt.Errorf("%s/%s: %w", category, instanceType, ErrPriceNotFound)
	}
	var v *float64
	switch category {
	case CategoryCompute:
		v = p.Compute
	case CategoryService:
		v = p.Service
	}
	if v == nil {
		return 0, fmt.Errorf("%s/%s: %w", category, instanceType, ErrPriceNotFound)
	}
	return *v, nil
}

// Len returns the number of priced instance types.
func (c *StaticCatalog) Len() int {
	return len(c.prices)
}
