package topology

import (
	"context"

	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

// ClusterMeta holds the cluster-level fields of a raw topology description.
type ClusterMeta struct {
	Name   string
	ID     string
	Region string
	Zone   string
	State  model.ClusterState
}

// RawGroup is a node group as described by the provider, before role
// classification.
type RawGroup struct {
	ID           string
	InstanceType string
	Count        int
	Market       string
	GroupType    string
}

// RawInstance is a provider instance record. An empty Address means the
// instance has no reachable address yet.
type RawInstance struct {
	ID          string
	SecondaryID string
	Address     string
	State       string
}

// RawCluster is everything a RawSource returns for one cluster. Instances
// are keyed by the id of the group they belong to.
type RawCluster struct {
	Meta      ClusterMeta
	Groups    []RawGroup
	Instances map[string][]RawInstance
}

// ClusterRef identifies the cluster to describe. ID and Name are kept apart
// so a source never has to guess which one it was given.
type ClusterRef struct {
	ID   string
	Name string
}

// String returns the id when set, otherwise the name.
func (r ClusterRef) String() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Name
}

// RawSource describes a cluster from some provider (CLI, file, API).
type RawSource interface {
	Describe(ctx context.Context, ref ClusterRef) (*RawCluster, error)
}
