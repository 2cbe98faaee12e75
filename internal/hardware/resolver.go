package hardware

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kubeadapt/kubeadapt-estimator/internal/convert"
	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
	"github.com/kubeadapt/kubeadapt-estimator/internal/observability"
	"github.com/kubeadapt/kubeadapt-estimator/internal/store"
	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

// Describer returns the raw `aws ec2 describe-instance-types` document for a
// single instance type.
type Describer interface {
	DescribeInstanceType(ctx context.Context, instanceType string) ([]byte, error)
}

// Resolver looks up hardware facts per instance type and caches them, so
// every type is described at most once. Failures are remembered too; a
// Resolver is meant to live for a single run.
type Resolver struct {
	describer Describer
	cache     *store.Cache[*model.HardwareInfo]
	failures  *store.Cache[error]
	metrics   *observability.Metrics
}

// NewResolver creates a Resolver. metrics may be nil.
func NewResolver(describer Describer, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		describer: describer,
		cache:     store.NewCache[*model.HardwareInfo](),
		failures:  store.NewCache[error](),
		metrics:   metrics,
	}
}

// Resolve returns the hardware behind instanceType. A failed lookup returns
// the same error on later calls without describing the type again.
func (r *Resolver) Resolve(ctx context.Context, instanceType string) (*model.HardwareInfo, error) {
	if err, failed := r.failures.Get(instanceType); failed {
		return nil, err
	}
	hw, loaded, err := r.cache.GetOrLoad(instanceType, func() (*model.HardwareInfo, error) {
		return r.describe(ctx, instanceType)
	})
	if err != nil {
		r.failures.Set(instanceType, err)
		return nil, err
	}
	if loaded {
		slog.Debug("hardware resolved", "instance_type", instanceType, "vcpus", hw.VCPUs, "memory_mib", hw.MemoryMiB)
		if r.metrics != nil {
			r.metrics.HardwareCacheItems.Set(float64(r.cache.Len()))
		}
	}
	return hw, nil
}

// Cached returns the instance types resolved so far.
func (r *Resolver) Cached() []string {
	return r.cache.Keys()
}

func (r *Resolver) describe(ctx context.Context, instanceType string) (*model.HardwareInfo, error) {
	data, err := r.describer.DescribeInstanceType(ctx, instanceType)
	if err != nil {
		return nil, esterrors.New(esterrors.ErrHardwareLookupFailed, "hardware",
			"describe "+instanceType, err)
	}
	types, err := convert.ParseInstanceTypes(data)
	if err != nil {
		return nil, err
	}
	for _, it := range types {
		if it.InstanceType == instanceType {
			return convert.InstanceTypeToHardware(it), nil
		}
	}
	// describe-instance-types with a single --instance-types filter may omit
	// the name on some CLI versions.
	if len(types) == 1 && types[0].InstanceType == "" {
		types[0].InstanceType = instanceType
		return convert.InstanceTypeToHardware(types[0]), nil
	}
	return nil, esterrors.New(esterrors.ErrHardwareLookupFailed, "hardware",
		fmt.Sprintf("instance type %s not in description", instanceType), nil)
}
