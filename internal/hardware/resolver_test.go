package hardware

import (
	"context"
	"errors"
	"fmt"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
	"github.com/kubeadapt/kubeadapt-estimator/internal/observability"
	"github.com/kubeadapt/kubeadapt-estimator/internal/topology"
	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

type fakeDescriber struct {
	docs  map[string]string
	err   error
	calls map[string]int
}

func (f *fakeDescriber) DescribeInstanceType(_ context.Context, instanceType string) ([]byte, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[instanceType]++
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.docs[instanceType]
	if !ok {
		return []byte(`{"InstanceTypes": []}`), nil
	}
	return []byte(doc), nil
}

func describerWith(types ...string) *fakeDescriber {
	docs := map[string]string{}
	for _, t := range types {
		docs[t] = fmt.Sprintf(`{"InstanceTypes":[{"InstanceType":%q,"VCpuInfo":{"DefaultVCpus":8},"MemoryInfo":{"SizeInMiB":32768},"GpuInfo":{"Gpus":[{"Name":"T4","Count":1,"MemoryInfo":{"SizeInMiB":16384}}]}}]}`, t)
	}
	return &fakeDescriber{docs: docs}
}

func TestResolver_CachesPerType(t *testing.T) {
	d := describerWith("g4dn.2xlarge")
	m := observability.NewMetrics()
	r := NewResolver(d, m)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		hw, err := r.Resolve(ctx, "g4dn.2xlarge")
		require.NoError(t, err)
		assert.Equal(t, 8, hw.VCPUs)
		require.NotNil(t, hw.GPU)
		assert.Equal(t, model.GPUModelT4, hw.GPU.Model)
	}
	assert.Equal(t, 1, d.calls["g4dn.2xlarge"])
	assert.Equal(t, []string{"g4dn.2xlarge"}, r.Cached())

	pb := &dto.Metric{}
	require.NoError(t, m.HardwareCacheItems.Write(pb))
	assert.Equal(t, 1.0, pb.GetGauge().GetValue())
}

func TestResolver_UnknownType(t *testing.T) {
	d := describerWith()
	r := NewResolver(d, nil)

	_, err := r.Resolve(context.Background(), "z9.nano")
	require.Error(t, err)
	assert.True(t, esterrors.HasCode(err, esterrors.ErrHardwareLookupFailed))
	assert.Empty(t, r.Cached())
}

func TestResolver_DescribeErrorRemembered(t *testing.T) {
	boom := errors.New("throttled")
	d := &fakeDescriber{err: boom}
	r := NewResolver(d, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(ctx, "r5.2xlarge")
		require.ErrorIs(t, err, boom)
		assert.True(t, esterrors.HasCode(err, esterrors.ErrHardwareLookupFailed))
	}
	assert.Equal(t, 1, d.calls["r5.2xlarge"], "a failed type is described once")
	assert.Empty(t, r.Cached())
}

func TestResolveHardware_OneDescribePerFailingType(t *testing.T) {
	groups := []topology.RawGroup{
		{ID: "ig-m", InstanceType: "m5.xlarge", Count: 1, Market: "ON_DEMAND", GroupType: "MASTER"},
		{ID: "ig-c", InstanceType: "r5.2xlarge", Count: 25, Market: "ON_DEMAND", GroupType: "CORE"},
		{ID: "ig-t", InstanceType: "c5.xlarge", Count: 25, Market: "SPOT", GroupType: "TASK"},
	}
	instances := map[string][]topology.RawInstance{"ig-m": {{ID: "ci-m", State: "RUNNING"}}}
	for i := 0; i < 25; i++ {
		instances["ig-c"] = append(instances["ig-c"], topology.RawInstance{ID: fmt.Sprintf("ci-c%d", i), State: "RUNNING"})
		instances["ig-t"] = append(instances["ig-t"], topology.RawInstance{ID: fmt.Sprintf("ci-t%d", i), State: "RUNNING"})
	}
	c, err := topology.Build(topology.ClusterMeta{ID: "j-1", State: model.ClusterRunning}, groups, instances)
	require.NoError(t, err)
	require.Len(t, c.Nodes(), 51)

	d := &fakeDescriber{err: errors.New("aws: command timed out")}
	wc := esterrors.NewWarningCollector(esterrors.RealClock{})

	n := topology.ResolveHardware(context.Background(), c, NewResolver(d, nil), wc)

	assert.Zero(t, n)
	assert.Equal(t, map[string]int{"m5.xlarge": 1, "r5.2xlarge": 1, "c5.xlarge": 1}, d.calls)
	assert.Len(t, wc.Warnings(), 3, "one warning per failing type")
}

func TestResolver_UnnamedSingleEntry(t *testing.T) {
	d := &fakeDescriber{docs: map[string]string{
		"m5.xlarge": `{"InstanceTypes":[{"VCpuInfo":{"DefaultVCpus":4},"MemoryInfo":{"SizeInMiB":16384}}]}`,
	}}
	hw, err := NewResolver(d, nil).Resolve(context.Background(), "m5.xlarge")
	require.NoError(t, err)
	assert.Equal(t, "m5.xlarge", hw.InstanceType)
	assert.Nil(t, hw.GPU)
}
