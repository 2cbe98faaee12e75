package model

import "strings"

// Role is the abstract role a node group plays in a cluster.
type Role string

// Node group roles.
const (
	RoleMaster Role = "master"
	RoleWorker Role = "worker"
)

// masterGroupTypes is the closed set of provider labels denoting the primary
// control node. Compared case-insensitively.
var masterGroupTypes = map[string]struct{}{
	"MASTER":  {},
	"PRIMARY": {},
}

// RoleForGroupType maps a provider-specific group type label to a Role.
// Only the labels in masterGroupTypes map to RoleMaster; every other label
// (CORE, TASK, or anything unknown) is a worker.
func RoleForGroupType(groupType string) Role {
	if _, ok := masterGroupTypes[strings.ToUpper(strings.TrimSpace(groupType))]; ok {
		return RoleMaster
	}
	return RoleWorker
}
