package model

import "strings"

// ClusterState is the lifecycle state of a cluster.
type ClusterState string

// Cluster lifecycle states.
const (
	ClusterStarting             ClusterState = "starting"
	ClusterBootstrapping        ClusterState = "bootstrapping"
	ClusterRunning              ClusterState = "running"
	ClusterWaiting              ClusterState = "waiting"
	ClusterTerminating          ClusterState = "terminating"
	ClusterTerminated           ClusterState = "terminated"
	ClusterTerminatedWithErrors ClusterState = "terminated_with_errors"
	ClusterUnknown              ClusterState = "unknown"
)

// ParseClusterState normalizes a provider state string (e.g. "WAITING").
// Unrecognized values map to ClusterUnknown.
func ParseClusterState(s string) ClusterState {
	switch st := ClusterState(strings.ToLower(strings.TrimSpace(s))); st {
	case ClusterStarting, ClusterBootstrapping, ClusterRunning, ClusterWaiting,
		ClusterTerminating, ClusterTerminated, ClusterTerminatedWithErrors:
		return st
	default:
		return ClusterUnknown
	}
}

// IsRunning reports whether the cluster is up or coming up.
func (s ClusterState) IsRunning() bool {
	switch s {
	case ClusterStarting, ClusterBootstrapping, ClusterRunning, ClusterWaiting:
		return true
	default:
		return false
	}
}

// InstanceState is the lifecycle state of a single compute instance.
type InstanceState string

// Instance lifecycle states.
const (
	InstancePending    InstanceState = "pending"
	InstanceRunning    InstanceState = "running"
	InstanceTerminated InstanceState = "terminated"
	InstanceUnknown    InstanceState = "unknown"
)

// ParseInstanceState normalizes a provider instance state.
// EMR reports AWAITING_FULFILLMENT, PROVISIONING and BOOTSTRAPPING before
// an instance is RUNNING.
func ParseInstanceState(s string) InstanceState {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AWAITING_FULFILLMENT", "PROVISIONING", "BOOTSTRAPPING", "PENDING":
		return InstancePending
	case "RUNNING":
		return InstanceRunning
	case "TERMINATED":
		return InstanceTerminated
	default:
		return InstanceUnknown
	}
}

// Market is the billing mode of a node group.
type Market string

// Billing modes.
const (
	MarketOnDemand Market = "on-demand"
	MarketSpot     Market = "spot"
)

// ParseMarket normalizes provider market labels. Unknown values are lowercased.
func ParseMarket(s string) Market {
	switch v := strings.ToUpper(strings.TrimSpace(s)); v {
	case "ON_DEMAND", "ON-DEMAND", "ONDEMAND", "NORMAL":
		return MarketOnDemand
	case "SPOT":
		return MarketSpot
	default:
		return Market(strings.ToLower(v))
	}
}
