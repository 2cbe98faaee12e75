package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kubeadapt/kubeadapt-estimator/internal/convert"
	"github.com/kubeadapt/kubeadapt-estimator/internal/topology"
)

// Source reads a cluster description from a property file in EMR
// describe-cluster shape, JSON or YAML. Group members may be embedded under
// each group's Instances key; groups without them have no instances.
type Source struct {
	path string
}

// NewSource creates a Source reading path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Describe implements topology.RawSource. ref only names a cluster whose
// document has no Name; a mismatching id or name is logged.
func (s *Source) Describe(_ context.Context, ref topology.ClusterRef) (*topology.RawCluster, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("file: read %s: %w", s.path, err)
	}
	cluster, err := convert.ParseEMRCluster(data)
	if err != nil {
		return nil, fmt.Errorf("file: %s: %w", s.path, err)
	}
	if cluster.Name == "" {
		cluster.Name = ref.Name
	}
	if (ref.ID != "" && ref.ID != cluster.ID) || (ref.Name != "" && ref.Name != cluster.Name) {
		slog.Warn("cluster reference does not match the property file",
			"ref_id", ref.ID, "ref_name", ref.Name, "id", cluster.ID, "name", cluster.Name)
	}
	return convert.EMRClusterToRaw(cluster), nil
}
