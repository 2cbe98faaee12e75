package report

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

// Input carries everything a savings report is assembled from.
type Input struct {
	Source     *model.Cluster
	Target     *model.Cluster
	Comparison model.CostComparison
	Currency   string
	Warnings   []string
	Now        time.Time
}

// NewSavingsReport assembles a SavingsReport with a fresh report id.
func NewSavingsReport(in Input) model.SavingsReport {
	sourceCost := in.Comparison.SourceCost
	targetCost := in.Comparison.TargetCost

	conversions := make(map[string]string, len(in.Target.Conversions))
	for k, v := range in.Target.Conversions {
		conversions[k] = v
	}

	var warnings []string
	if len(in.Warnings) > 0 {
		warnings = append([]string(nil), in.Warnings...)
		sort.Strings(warnings)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	return model.SavingsReport{
		ReportID:       uuid.NewString(),
		ClusterID:      in.Source.ID,
		ClusterName:    in.Source.Name,
		Region:         in.Source.Region,
		Currency:       in.Currency,
		GeneratedAt:    now.UnixMilli(),
		Source:         Summarize(in.Source, &sourceCost),
		Target:         Summarize(in.Target, &targetCost),
		Conversions:    conversions,
		SourceCost:     sourceCost,
		TargetCost:     targetCost,
		Savings:        in.Comparison.Savings(),
		SavingsPercent: in.Comparison.SavingsPercent(),
		Warnings:       warnings,
	}
}
