package convert

import (
	"strings"

	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

// ParseProviderID extracts the EC2 instance id, availability zone and region
// from a node's spec.providerID (aws:///us-east-1a/i-1234567890abcdef0).
// Non-AWS provider ids are returned unchanged as the instance id.
func ParseProviderID(providerID string) (instanceID, az, region string) {
	if !strings.HasPrefix(providerID, "aws://") {
		return providerID, "", ""
	}

	// The triple slash means host is empty: aws:///az/instance
	trimmed := strings.TrimPrefix(strings.TrimPrefix(providerID, "aws://"), "/")
	az, instanceID, ok := strings.Cut(trimmed, "/")
	if !ok {
		return providerID, "", ""
	}
	return instanceID, az, RegionFromZone(az)
}

// RegionFromZone derives the region from an AWS availability zone
// (us-east-1a -> us-east-1). Local and wavelength zones are not handled.
func RegionFromZone(az string) string {
	if len(az) < 2 {
		return ""
	}
	last := az[len(az)-1]
	if last < 'a' || last > 'z' {
		return az
	}
	return az[:len(az)-1]
}

// ExtractMarket determines the purchase market of a node from its labels.
// Check order: EKS capacityType, Karpenter, generic lifecycle label.
func ExtractMarket(labels map[string]string) model.Market {
	if labels == nil {
		return ""
	}

	// EKS managed node groups
	if v, ok := labels["eks.amazonaws.com/capacityType"]; ok {
		return model.ParseMarket(v)
	}

	// Karpenter
	if v, ok := labels["karpenter.sh/capacity-type"]; ok {
		return model.ParseMarket(v)
	}

	// Generic lifecycle label (some providers)
	if v, ok := labels["node.kubernetes.io/lifecycle"]; ok {
		return model.ParseMarket(v)
	}

	return ""
}

// ExtractNodeGroup determines the node group name from node labels.
// Check order: EKS nodegroup, eksctl nodegroup, Karpenter nodepool.
func ExtractNodeGroup(labels map[string]string) string {
	if labels == nil {
		return ""
	}

	for _, key := range []string{
		"eks.amazonaws.com/nodegroup",
		"alpha.eksctl.io/nodegroup-name",
		"karpenter.sh/nodepool",
	} {
		if v, ok := labels[key]; ok && v != "" {
			return v
		}
	}
	return ""
}
