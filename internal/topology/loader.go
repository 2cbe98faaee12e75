package topology

import (
	"context"
	"fmt"
	"log/slog"

	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

// Loader turns a cluster reference into a built topology using a RawSource.
type Loader struct {
	source RawSource
	region string
}

// NewLoader creates a Loader. region fills in ClusterMeta.Region when the
// source does not report one.
func NewLoader(source RawSource, region string) *Loader {
	return &Loader{source: source, region: region}
}

// Load describes the cluster behind ref and builds its topology.
func (l *Loader) Load(ctx context.Context, ref ClusterRef) (*model.Cluster, error) {
	raw, err := l.source.Describe(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("topology: describe %q: %w", ref.String(), err)
	}
	if raw == nil {
		return nil, esterrors.New(esterrors.ErrClusterNotFound, component, fmt.Sprintf("no description for cluster %q", ref.String()), nil)
	}
	if raw.Meta.Region == "" {
		raw.Meta.Region = l.region
	}

	c, err := Build(raw.Meta, raw.Groups, raw.Instances)
	if err != nil {
		return nil, err
	}

	slog.Debug("topology loaded",
		"cluster", c.ID,
		"name", c.Name,
		"state", c.State,
		"groups", len(c.Groups),
		"instances", len(c.Instances),
		"workers", len(c.Workers),
	)
	return c, nil
}

// HardwareResolver returns the hardware facts behind an instance type.
type HardwareResolver interface {
	Resolve(ctx context.Context, instanceType string) (*model.HardwareInfo, error)
}

// ResolveHardware fills in Hardware on every node of c. A failing instance
// type is looked up once, reported to warnings, and leaves the Hardware of
// its nodes nil. Returns the number of nodes resolved.
func ResolveHardware(ctx context.Context, c *model.Cluster, r HardwareResolver, warnings *esterrors.WarningCollector) int {
	resolved := 0
	failed := make(map[string]struct{})
	for _, n := range c.Nodes() {
		if n.Hardware != nil {
			resolved++
			continue
		}
		if _, skip := failed[n.InstanceType]; skip {
			continue
		}
		hw, err := r.Resolve(ctx, n.InstanceType)
		if err != nil {
			failed[n.InstanceType] = struct{}{}
			slog.Warn("hardware lookup failed", "instance_type", n.InstanceType, "error", err)
			warnings.Report(esterrors.EstimatorError{
				Code:      esterrors.ErrHardwareLookupFailed,
				Component: "hardware",
				Message:   fmt.Sprintf("%s: %v", n.InstanceType, err),
			})
			continue
		}
		n.Hardware = hw
		resolved++
	}
	return resolved
}
