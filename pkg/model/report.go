package model

// CostComparison holds the total hourly cost of a source topology and the
// topology it was migrated to. No currency conversion is applied.
type CostComparison struct {
	SourceCost float64 `json:"source_cost"`
	TargetCost float64 `json:"target_cost"`
}

// Savings is SourceCost - TargetCost. Negative when the target is more expensive.
func (c CostComparison) Savings() float64 {
	return c.SourceCost - c.TargetCost
}

// SavingsPercent is Savings relative to SourceCost, or 0 if SourceCost is 0.
func (c CostComparison) SavingsPercent() float64 {
	if c.SourceCost == 0 {
		return 0
	}
	return c.Savings() / c.SourceCost * 100
}

// TopologySummary holds counts and hardware totals for one topology.
type TopologySummary struct {
	GroupCount       int `json:"group_count"`
	MasterGroupCount int `json:"master_group_count"`
	WorkerGroupCount int `json:"worker_group_count"`
	InstanceCount    int `json:"instance_count"`
	WorkerNodeCount  int `json:"worker_node_count"`

	InstanceTypes map[string]int `json:"instance_types"`

	// Hardware totals only cover nodes whose hardware was resolved.
	HardwareResolved bool  `json:"hardware_resolved"`
	TotalVCPUs       int   `json:"total_vcpus"`
	TotalMemoryMiB   int64 `json:"total_memory_mib"`
	TotalGPUs        int   `json:"total_gpus"`

	HourlyCost *float64 `json:"hourly_cost,omitempty"`
}

// SavingsReport is the document produced by the savings command.
type SavingsReport struct {
	ReportID    string `json:"report_id"`
	ClusterID   string `json:"cluster_id"`
	ClusterName string `json:"cluster_name"`
	Region      string `json:"region"`
	Currency    string `json:"currency,omitempty"`
	GeneratedAt int64  `json:"generated_at"`

	Source TopologySummary `json:"source"`
	Target TopologySummary `json:"target"`

	Conversions    map[string]string `json:"conversions"`
	SourceCost     float64           `json:"source_cost"`
	TargetCost     float64           `json:"target_cost"`
	Savings        float64           `json:"savings"`
	SavingsPercent float64           `json:"savings_percent"`

	Warnings []string `json:"warnings,omitempty"`
}
