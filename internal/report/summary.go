package report

import "github.com/kubeadapt/kubeadapt-estimator/pkg/model"

// Summarize computes group and node counts and hardware totals for a
// topology. Group counts use the requested count, so groups whose instances
// are not listed still contribute to InstanceTypes. cost is copied in as the
// hourly cost when non-nil.
func Summarize(c *model.Cluster, cost *float64) model.TopologySummary {
	s := model.TopologySummary{
		GroupCount:      len(c.Groups),
		InstanceCount:   len(c.Instances),
		WorkerNodeCount: len(c.Workers),
		InstanceTypes:   make(map[string]int),
	}

	for _, g := range c.Groups {
		if g.Role() == model.RoleMaster {
			s.MasterGroupCount++
		} else {
			s.WorkerGroupCount++
		}
		s.InstanceTypes[g.InstanceType] += g.Count
	}

	nodes := c.Nodes()
	resolved := 0
	for _, n := range nodes {
		if n.Hardware == nil {
			continue
		}
		resolved++
		s.TotalVCPUs += n.Hardware.VCPUs
		s.TotalMemoryMiB += n.Hardware.MemoryMiB
		if n.Hardware.GPU != nil {
			s.TotalGPUs += n.Hardware.GPU.Count
		}
	}
	s.HardwareResolved = len(nodes) > 0 && resolved == len(nodes)

	if cost != nil {
		v := *cost
		s.HourlyCost = &v
	}
	return s
}
