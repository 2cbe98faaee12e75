package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kubeadapt/kubeadapt-estimator/internal/cloud"
	"github.com/kubeadapt/kubeadapt-estimator/internal/config"
	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
	"github.com/kubeadapt/kubeadapt-estimator/internal/hardware"
	"github.com/kubeadapt/kubeadapt-estimator/internal/matcher"
	"github.com/kubeadapt/kubeadapt-estimator/internal/migrate"
	"github.com/kubeadapt/kubeadapt-estimator/internal/observability"
	"github.com/kubeadapt/kubeadapt-estimator/internal/pricing"
	"github.com/kubeadapt/kubeadapt-estimator/internal/provider/emr"
	"github.com/kubeadapt/kubeadapt-estimator/internal/provider/file"
	"github.com/kubeadapt/kubeadapt-estimator/internal/provider/kube"
	"github.com/kubeadapt/kubeadapt-estimator/internal/report"
	"github.com/kubeadapt/kubeadapt-estimator/internal/topology"
	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

// app holds the shared infrastructure of one estimator run.
type app struct {
	cfg      config.Config
	metrics  *observability.Metrics
	warnings *esterrors.WarningCollector
	writer   *report.Writer
}

func newApp(cfg config.Config) *app {
	metrics := observability.NewMetrics()
	return &app{
		cfg:      cfg,
		metrics:  metrics,
		warnings: esterrors.NewWarningCollector(esterrors.RealClock{}),
		writer:   report.NewWriter(cfg.CompressionLevel, metrics),
	}
}

// migrate loads the configured cluster and migrates its workers.
func (a *app) migrate(ctx context.Context) (*model.Cluster, *model.Cluster, error) {
	region := cloud.ResolveRegion(ctx, a.cfg.Region, cloud.NewIMDSClient(a.cfg.IMDSTimeout))
	driver := emr.NewDriver(emr.ExecRunner{Timeout: a.cfg.CommandTimeout}, a.cfg.AWSCLIPath, region, a.metrics)

	source, err := a.rawSource(driver)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("loading cluster topology",
		"source", a.cfg.Source,
		"cluster", a.cfg.ClusterRef(),
		"region", driver.Region(),
	)
	ref := topology.ClusterRef{ID: a.cfg.ClusterID, Name: a.cfg.ClusterName}
	cluster, err := topology.NewLoader(source, region).Load(ctx, ref)
	if err != nil {
		return nil, nil, fmt.Errorf("load cluster: %w", err)
	}
	slog.Info("cluster topology loaded",
		"cluster_id", cluster.ID,
		"name", cluster.Name,
		"state", cluster.State,
		"groups", len(cluster.Groups),
		"instances", len(cluster.Instances),
	)
	if !cluster.State.IsRunning() {
		slog.Warn("cluster is not running, instance details may be incomplete", "state", cluster.State)
	}

	catalog, err := matcher.LoadCatalog(a.cfg.GPUCatalogPath)
	if err != nil {
		return nil, nil, err
	}
	engine := migrate.NewEngine(matcher.SizeMatcher{}, catalog.Supported,
		migrate.WithNotifier(migrate.LogNotifier{Logger: slog.Default()}),
		migrate.WithMetrics(a.metrics),
		migrate.WithWarnings(a.warnings),
	)
	target, err := engine.Migrate(ctx, cluster)
	if err != nil {
		return nil, nil, err
	}

	if a.cfg.ResolveHardware {
		resolver := hardware.NewResolver(driver, a.metrics)
		n := topology.ResolveHardware(ctx, cluster, resolver, a.warnings)
		n += topology.ResolveHardware(ctx, target, resolver, a.warnings)
		slog.Debug("hardware resolved", "nodes", n, "instance_types", len(resolver.Cached()))
	}

	return cluster, target, nil
}

// savings migrates the cluster and prices both topologies.
func (a *app) savings(ctx context.Context) (model.SavingsReport, error) {
	catalog, err := pricing.LoadCatalog(a.cfg.PriceCatalogPath)
	if err != nil {
		return model.SavingsReport{}, err
	}
	slog.Debug("price catalog loaded", "entries", catalog.Len(), "region", catalog.Region)

	source, target, err := a.migrate(ctx)
	if err != nil {
		return model.SavingsReport{}, err
	}
	if catalog.Region != "" && source.Region != "" && catalog.Region != source.Region {
		slog.Warn("price catalog region differs from cluster region",
			"catalog_region", catalog.Region,
			"cluster_region", source.Region,
		)
	}

	cmp, err := pricing.NewEstimator(catalog, a.metrics).Compare(ctx, source, target)
	if err != nil {
		return model.SavingsReport{}, fmt.Errorf("estimate cost: %w", err)
	}
	slog.Info("cost estimated",
		"source_cost", cmp.SourceCost,
		"target_cost", cmp.TargetCost,
		"savings", cmp.Savings(),
	)

	return report.NewSavingsReport(report.Input{
		Source:     source,
		Target:     target,
		Comparison: cmp,
		Currency:   catalog.Currency,
		Warnings:   a.warnings.Messages(),
		Now:        time.Now(),
	}), nil
}

func (a *app) rawSource(driver *emr.Driver) (topology.RawSource, error) {
	switch a.cfg.Source {
	case config.SourceEMR:
		return driver, nil
	case config.SourceFile:
		return file.NewSource(a.cfg.ClusterPropsPath), nil
	case config.SourceKubernetes:
		client, err := kube.NewClient(a.cfg.Kubeconfig)
		if err != nil {
			return nil, err
		}
		return kube.NewSource(client, a.cfg.PrimaryNodeGroup), nil
	default:
		return nil, fmt.Errorf("unknown source %q", a.cfg.Source)
	}
}

// flushMetrics logs the warning codes of the run and writes the metrics
// textfile when one is configured.
func (a *app) flushMetrics() {
	if codes := a.warnings.Codes(); len(codes) > 0 {
		slog.Info("run finished with warnings", "codes", codes)
	}
	if a.cfg.MetricsFile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		slog.Warn("failed to write metrics file", "path", a.cfg.MetricsFile, "error", err)
	}
}

func writeText(path string, r model.SavingsReport) error {
	if path == "" || path == "-" {
		return report.WriteText(os.Stdout, r)
	}
	f, err := os.Create(path)
	if err != nil {
		return esterrors.New(esterrors.ErrReportWriteFailed, "report", "create "+path, err)
	}
	if err := report.WriteText(f, r); err != nil {
		f.Close()
		return esterrors.New(esterrors.ErrReportWriteFailed, "report", "write "+path, err)
	}
	return f.Close()
}
