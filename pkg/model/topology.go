package model

import "encoding/json"

// NodeGroup is a set of identically shaped instances managed together by the
// provider (an EMR instance group, an EKS node group).
type NodeGroup struct {
	ID           string `json:"id"`
	InstanceType string `json:"instance_type"`
	Count        int    `json:"count"`
	Market       Market `json:"market"`
	GroupType    string `json:"group_type"`

	role Role
}

// NewNodeGroup creates a NodeGroup and derives its role from groupType.
// The role never changes after construction.
func NewNodeGroup(id, instanceType string, count int, market Market, groupType string) *NodeGroup {
	return &NodeGroup{
		ID:           id,
		InstanceType: instanceType,
		Count:        count,
		Market:       market,
		GroupType:    groupType,
		role:         RoleForGroupType(groupType),
	}
}

// Role returns the role derived from the group type label.
func (g *NodeGroup) Role() Role {
	return g.role
}

// WithInstanceType returns a new group identical to g except for the
// instance type. g is left untouched.
func (g *NodeGroup) WithInstanceType(instanceType string) *NodeGroup {
	return NewNodeGroup(g.ID, instanceType, g.Count, g.Market, g.GroupType)
}

// Instance is a single compute instance belonging to exactly one NodeGroup.
type Instance struct {
	ID          string        `json:"id"`
	SecondaryID string        `json:"secondary_id"`
	Address     *string       `json:"address,omitempty"` // nil until the instance physically exists
	Group       *NodeGroup    `json:"-"`
	State       InstanceState `json:"state"`
}

// MarshalJSON encodes the instance with the id of its group as group_id.
func (i Instance) MarshalJSON() ([]byte, error) {
	type plain Instance
	out := struct {
		plain
		GroupID string `json:"group_id,omitempty"`
	}{plain: plain(i)}
	if i.Group != nil {
		out.GroupID = i.Group.ID
	}
	return json.Marshal(out)
}

// Node is a role-tagged view over one Instance.
type Node struct {
	Role         Role          `json:"role"`
	Name         string        `json:"name"` // instance address, empty when not provisioned
	InstanceType string        `json:"instance_type"`
	Instance     *Instance     `json:"-"`
	Hardware     *HardwareInfo `json:"hardware,omitempty"` // nil until resolved
}

// Cluster is a full cluster topology: groups, instances, and the
// role-partitioned node view built from them.
type Cluster struct {
	Name   string       `json:"name"`
	ID     string       `json:"id"`
	Region string       `json:"region"`
	Zone   string       `json:"zone"`
	State  ClusterState `json:"state"`

	Groups    []*NodeGroup `json:"groups"`
	Instances []*Instance  `json:"instances"`
	Master    *Node        `json:"master"`
	Workers   []*Node      `json:"workers"`

	// Conversions records source → replacement instance types applied when
	// this cluster was produced by a migration. Nil for loaded clusters.
	Conversions map[string]string `json:"conversions,omitempty"`
}

// Group returns the group with the given id, or nil.
func (c *Cluster) Group(id string) *NodeGroup {
	for _, g := range c.Groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// GroupsByRole returns the groups with the given role, in order.
func (c *Cluster) GroupsByRole(role Role) []*NodeGroup {
	var out []*NodeGroup
	for _, g := range c.Groups {
		if g.Role() == role {
			out = append(out, g)
		}
	}
	return out
}

// Nodes returns the master node followed by all workers.
func (c *Cluster) Nodes() []*Node {
	out := make([]*Node, 0, len(c.Workers)+1)
	if c.Master != nil {
		out = append(out, c.Master)
	}
	return append(out, c.Workers...)
}
