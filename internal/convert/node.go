package convert

import (
	"sort"

	corev1 "k8s.io/api/core/v1"

	"github.com/kubeadapt/kubeadapt-estimator/internal/topology"
	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

// Group type labels given to node groups built from Kubernetes nodes.
const (
	GroupTypeMaster = "MASTER"
	GroupTypeWorker = "WORKER"
)

const (
	controlPlaneGroup = "control-plane"
	ungroupedGroup    = "ungrouped"
	unknownType       = "unknown"
)

// NodeInstanceType returns the instance type label of a node.
func NodeInstanceType(node *corev1.Node) string {
	labels := node.Labels
	if v := labels["node.kubernetes.io/instance-type"]; v != "" {
		return v
	}
	if v := labels["beta.kubernetes.io/instance-type"]; v != "" {
		return v
	}
	return unknownType
}

// IsControlPlane reports whether a node carries a control-plane role label.
func IsControlPlane(node *corev1.Node) bool {
	for _, key := range []string{
		"node-role.kubernetes.io/control-plane",
		"node-role.kubernetes.io/master",
	} {
		if _, ok := node.Labels[key]; ok {
			return true
		}
	}
	return false
}

// NodeToRawInstance converts a node to a raw instance: the node name is the
// id, the EC2 instance id the secondary id and the InternalIP the address.
func NodeToRawInstance(node *corev1.Node) topology.RawInstance {
	instanceID, _, _ := ParseProviderID(node.Spec.ProviderID)
	state := "PENDING"
	if nodeReady(node.Status.Conditions) {
		state = "RUNNING"
	}
	return topology.RawInstance{
		ID:          node.Name,
		SecondaryID: instanceID,
		Address:     nodeAddress(node.Status.Addresses),
		State:       state,
	}
}

type nodeGroupKey struct {
	name         string
	instanceType string
}

// NodesToRaw groups nodes by node group and instance type, ordered by group
// and node name. A group is a master group when it holds control-plane nodes
// or is named primaryGroup. Instances are attached to a master group only
// when it has a single node, so that the cluster keeps exactly one master
// node.
func NodesToRaw(nodes []corev1.Node, meta topology.ClusterMeta, primaryGroup string) *topology.RawCluster {
	members := make(map[nodeGroupKey][]*corev1.Node)
	master := make(map[nodeGroupKey]bool)
	typesPerGroup := make(map[string]map[string]struct{})
	var keys []nodeGroupKey

	for i := range nodes {
		node := &nodes[i]
		name := ExtractNodeGroup(node.Labels)
		if name == "" {
			name = ungroupedGroup
			if IsControlPlane(node) {
				name = controlPlaneGroup
			}
		}
		key := nodeGroupKey{name: name, instanceType: NodeInstanceType(node)}
		if _, ok := members[key]; !ok {
			keys = append(keys, key)
		}
		members[key] = append(members[key], node)
		if IsControlPlane(node) || (primaryGroup != "" && name == primaryGroup) {
			master[key] = true
		}
		if typesPerGroup[name] == nil {
			typesPerGroup[name] = make(map[string]struct{})
		}
		typesPerGroup[name][key.instanceType] = struct{}{}

		if meta.Zone == "" {
			meta.Zone = node.Labels["topology.kubernetes.io/zone"]
		}
		if meta.Region == "" {
			meta.Region = node.Labels["topology.kubernetes.io/region"]
		}
		if meta.Region == "" {
			_, _, meta.Region = ParseProviderID(node.Spec.ProviderID)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].name != keys[j].name {
			return keys[i].name < keys[j].name
		}
		return keys[i].instanceType < keys[j].instanceType
	})

	raw := &topology.RawCluster{
		Meta:      meta,
		Groups:    make([]topology.RawGroup, 0, len(keys)),
		Instances: make(map[string][]topology.RawInstance),
	}
	for _, key := range keys {
		id := key.name
		if len(typesPerGroup[key.name]) > 1 {
			id = key.name + "/" + key.instanceType
		}
		groupType := GroupTypeWorker
		if master[key] {
			groupType = GroupTypeMaster
		}
		group := members[key]
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })

		raw.Groups = append(raw.Groups, topology.RawGroup{
			ID:           id,
			InstanceType: key.instanceType,
			Count:        len(group),
			Market:       string(groupMarket(group)),
			GroupType:    groupType,
		})
		if groupType == GroupTypeMaster && len(group) > 1 {
			continue
		}
		for _, node := range group {
			raw.Instances[id] = append(raw.Instances[id], NodeToRawInstance(node))
		}
	}
	return raw
}

// groupMarket returns the market of the first node that has one, defaulting
// to on-demand.
func groupMarket(nodes []*corev1.Node) model.Market {
	for _, n := range nodes {
		if m := ExtractMarket(n.Labels); m != "" {
			return m
		}
	}
	return model.MarketOnDemand
}

// nodeReady returns true if the node has a Ready condition with status True.
func nodeReady(conditions []corev1.NodeCondition) bool {
	for _, c := range conditions {
		if c.Type == corev1.NodeReady {
			return c.Status == corev1.ConditionTrue
		}
	}
	return false
}

// nodeAddress prefers the InternalIP, then the hostname.
func nodeAddress(addresses []corev1.NodeAddress) string {
	var hostname string
	for _, a := range addresses {
		switch a.Type {
		case corev1.NodeInternalIP:
			return a.Address
		case corev1.NodeHostName:
			if hostname == "" {
				hostname = a.Address
			}
		}
	}
	return hostname
}
