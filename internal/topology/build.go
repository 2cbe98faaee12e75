package topology

import (
	"fmt"
	"sort"

	"k8s.io/utils/ptr"

	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

const component = "topology"

func invalid(format string, args ...any) error {
	return esterrors.New(esterrors.ErrInvalidTopology, component, fmt.Sprintf(format, args...), nil)
}

// Build assembles a Cluster from raw groups and instances. Every group is
// classified by its type label, every instance is attached to its group and
// the nodes are partitioned into one master and the workers. Any structural
// problem is an INVALID_TOPOLOGY error; no partial cluster is returned.
func Build(meta ClusterMeta, groups []RawGroup, instances map[string][]RawInstance) (*model.Cluster, error) {
	c := &model.Cluster{
		Name:   meta.Name,
		ID:     meta.ID,
		Region: meta.Region,
		Zone:   meta.Zone,
		State:  meta.State,
		Groups: make([]*model.NodeGroup, 0, len(groups)),
	}
	if c.State == "" {
		c.State = model.ClusterUnknown
	}

	byID := make(map[string]*model.NodeGroup, len(groups))
	for _, rg := range groups {
		if rg.ID == "" {
			return nil, invalid("group with instance type %q has no id", rg.InstanceType)
		}
		if _, dup := byID[rg.ID]; dup {
			return nil, invalid("duplicate group id %q", rg.ID)
		}
		if rg.InstanceType == "" {
			return nil, invalid("group %q has no instance type", rg.ID)
		}
		if rg.Count < 0 {
			return nil, invalid("group %q has negative count %d", rg.ID, rg.Count)
		}
		g := model.NewNodeGroup(rg.ID, rg.InstanceType, rg.Count, model.ParseMarket(rg.Market), rg.GroupType)
		byID[g.ID] = g
		c.Groups = append(c.Groups, g)
	}

	// Instances referencing a group that does not exist.
	dangling := make([]string, 0)
	for gid := range instances {
		if _, ok := byID[gid]; !ok {
			dangling = append(dangling, gid)
		}
	}
	if len(dangling) > 0 {
		sort.Strings(dangling)
		return nil, invalid("instances reference unknown group %q", dangling[0])
	}

	seen := make(map[string]struct{})
	for _, g := range c.Groups {
		for _, ri := range instances[g.ID] {
			if ri.ID == "" {
				return nil, invalid("instance in group %q has no id", g.ID)
			}
			if _, dup := seen[ri.ID]; dup {
				return nil, invalid("duplicate instance id %q", ri.ID)
			}
			seen[ri.ID] = struct{}{}

			inst := &model.Instance{
				ID:          ri.ID,
				SecondaryID: ri.SecondaryID,
				Group:       g,
				State:       model.ParseInstanceState(ri.State),
			}
			if ri.Address != "" {
				inst.Address = ptr.To(ri.Address)
			}
			c.Instances = append(c.Instances, inst)
		}
	}

	master, workers, err := PartitionNodes(c.Groups, c.Instances)
	if err != nil {
		return nil, err
	}
	c.Master = master
	c.Workers = workers
	return c, nil
}

// NewNode builds the role-tagged view of one instance.
func NewNode(inst *model.Instance) *model.Node {
	return &model.Node{
		Role:         inst.Group.Role(),
		Name:         ptr.Deref(inst.Address, ""),
		InstanceType: inst.Group.InstanceType,
		Instance:     inst,
	}
}

// PartitionNodes builds one node per instance and splits them by role.
// Exactly one master node must result. When no instance carries the master
// role, a single master group stands in for the master node.
func PartitionNodes(groups []*model.NodeGroup, instances []*model.Instance) (*model.Node, []*model.Node, error) {
	var masters []*model.Node
	workers := make([]*model.Node, 0, len(instances))

	for _, inst := range instances {
		if inst.Group == nil {
			return nil, nil, invalid("instance %q has no group", inst.ID)
		}
		n := NewNode(inst)
		if n.Role == model.RoleMaster {
			masters = append(masters, n)
			continue
		}
		workers = append(workers, n)
	}

	switch len(masters) {
	case 1:
		return masters[0], workers, nil
	case 0:
		var masterGroups []*model.NodeGroup
		for _, g := range groups {
			if g.Role() == model.RoleMaster {
				masterGroups = append(masterGroups, g)
			}
		}
		if len(masterGroups) != 1 {
			return nil, nil, invalid("expected exactly one master group without master instances, found %d", len(masterGroups))
		}
		return &model.Node{
			Role:         model.RoleMaster,
			InstanceType: masterGroups[0].InstanceType,
		}, workers, nil
	default:
		return nil, nil, invalid("expected exactly one master node, found %d", len(masters))
	}
}

// Validate re-checks the structural invariants of a built cluster: unique
// group ids, every instance attached to one of the cluster's groups, at most
// one master-role instance, exactly one master node and only worker-role
// nodes in Workers.
func Validate(c *model.Cluster) error {
	if c == nil {
		return invalid("cluster is nil")
	}

	groups := make(map[*model.NodeGroup]struct{}, len(c.Groups))
	ids := make(map[string]struct{}, len(c.Groups))
	for _, g := range c.Groups {
		if g == nil {
			return invalid("cluster %q has a nil group", c.ID)
		}
		if _, dup := ids[g.ID]; dup {
			return invalid("duplicate group id %q", g.ID)
		}
		ids[g.ID] = struct{}{}
		groups[g] = struct{}{}
	}

	workerInstances, masterInstances := 0, 0
	for _, inst := range c.Instances {
		if inst.Group == nil {
			return invalid("instance %q has no group", inst.ID)
		}
		if _, ok := groups[inst.Group]; !ok {
			return invalid("instance %q references group %q outside the cluster", inst.ID, inst.Group.ID)
		}
		if inst.Group.Role() == model.RoleWorker {
			workerInstances++
		} else {
			masterInstances++
		}
	}
	if masterInstances > 1 {
		return invalid("cluster %q has %d master instances, expected at most one", c.ID, masterInstances)
	}

	if c.Master == nil || c.Master.Role != model.RoleMaster {
		return invalid("cluster %q has no master node", c.ID)
	}
	for _, w := range c.Workers {
		if w.Role != model.RoleWorker {
			return invalid("node %q in workers has role %s", w.Name, w.Role)
		}
	}
	if len(c.Workers) != workerInstances {
		return invalid("cluster %q has %d worker nodes for %d worker instances", c.ID, len(c.Workers), workerInstances)
	}
	return nil
}
