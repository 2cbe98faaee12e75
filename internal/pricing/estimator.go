package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
	"github.com/kubeadapt/kubeadapt-estimator/internal/observability"
	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

// Price categories. Compute is the base instance price, service is the
// managed-service surcharge billed on top of it.
const (
	CategoryCompute = "ec2"
	CategoryService = "emr"
)

// ErrPriceNotFound is returned by a PriceCatalog with no entry for a
// category and instance type.
var ErrPriceNotFound = errors.New("price not found")

// PriceCatalog returns the hourly unit cost of an instance type in a category.
type PriceCatalog interface {
	UnitCost(ctx context.Context, category, instanceType string) (float64, error)
}

// Estimator computes topology costs from a PriceCatalog.
type Estimator struct {
	catalog PriceCatalog
	metrics *observability.Metrics
}

// NewEstimator creates an Estimator. metrics may be nil.
func NewEstimator(catalog PriceCatalog, metrics *observability.Metrics) *Estimator {
	return &Estimator{catalog: catalog, metrics: metrics}
}

// GroupCost returns (compute + service) unit cost times the requested count.
func (e *Estimator) GroupCost(ctx context.Context, g *model.NodeGroup) (float64, error) {
	compute, err := e.unitCost(ctx, CategoryCompute, g.InstanceType)
	if err != nil {
		return 0, err
	}
	service, err := e.unitCost(ctx, CategoryService, g.InstanceType)
	if err != nil {
		return 0, err
	}
	return (compute + service) * float64(g.Count), nil
}

// TotalCost sums GroupCost over every group, master and worker alike.
func (e *Estimator) TotalCost(ctx context.Context, c *model.Cluster) (float64, error) {
	total := 0.0
	for _, g := range c.Groups {
		cost, err := e.GroupCost(ctx, g)
		if err != nil {
			return 0, fmt.Errorf("pricing: group %s: %w", g.ID, err)
		}
		total += cost
	}
	return total, nil
}

// Compare computes the total cost of both topologies independently. No
// normalization or currency conversion is applied.
func (e *Estimator) Compare(ctx context.Context, source, target *model.Cluster) (model.CostComparison, error) {
	sourceCost, err := e.TotalCost(ctx, source)
	if err != nil {
		return model.CostComparison{}, fmt.Errorf("pricing: source topology: %w", err)
	}
	targetCost, err := e.TotalCost(ctx, target)
	if err != nil {
		return model.CostComparison{}, fmt.Errorf("pricing: target topology: %w", err)
	}

	if e.metrics != nil {
		e.metrics.TopologyCost.WithLabelValues("source").Set(sourceCost)
		e.metrics.TopologyCost.WithLabelValues("target").Set(targetCost)
	}

	cmp := model.CostComparison{SourceCost: sourceCost, TargetCost: targetCost}
	slog.Debug("topology costs compared",
		"source_cost", sourceCost,
		"target_cost", targetCost,
		"savings", cmp.Savings(),
	)
	return cmp, nil
}

func (e *Estimator) unitCost(ctx context.Context, category, instanceType string) (float64, error) {
	v, err := e.catalog.UnitCost(ctx, category, instanceType)
	status := "hit"
	if err != nil {
		status = "miss"
		if !errors.Is(err, ErrPriceNotFound) {
			status = "error"
		}
	}
	if e.metrics != nil {
		e.metrics.PriceLookupsTotal.WithLabelValues(category, status).Inc()
	}

	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, ErrPriceNotFound):
		return 0, esterrors.New(esterrors.ErrPriceNotFound, "pricing",
			fmt.Sprintf("no %s price for %s", category, instanceType), err)
	default:
		return 0, err
	}
}
