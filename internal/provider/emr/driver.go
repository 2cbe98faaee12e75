package emr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kubeadapt/kubeadapt-estimator/internal/convert"
	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
	"github.com/kubeadapt/kubeadapt-estimator/internal/observability"
	"github.com/kubeadapt/kubeadapt-estimator/internal/topology"
)

const component = "provider.emr"

// Driver talks to EMR and EC2 through the aws CLI.
type Driver struct {
	runner  Runner
	cli     string
	region  string
	metrics *observability.Metrics
}

// NewDriver creates a Driver invoking the aws binary at cli. An empty region
// leaves region selection to the CLI's own configuration. metrics may be nil.
func NewDriver(runner Runner, cli, region string, metrics *observability.Metrics) *Driver {
	if cli == "" {
		cli = "aws"
	}
	return &Driver{runner: runner, cli: cli, region: region, metrics: metrics}
}

// Region returns the region passed to every command.
func (d *Driver) Region() string {
	return d.region
}

func (d *Driver) run(ctx context.Context, service, command string, args ...string) ([]byte, error) {
	full := append([]string{service, command}, args...)
	if d.region != "" {
		full = append(full, "--region", d.region)
	}
	full = append(full, "--output", "json")

	label := service + " " + command
	start := time.Now()
	out, err := d.runner.Run(ctx, d.cli, full...)
	if d.metrics != nil {
		d.metrics.ProviderCommandDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if d.metrics != nil {
			d.metrics.ProviderCommandFailures.WithLabelValues(label).Inc()
		}
		return nil, esterrors.New(esterrors.ErrCommandFailed, component, label, err)
	}
	slog.Debug("aws command completed", "command", label, "bytes", len(out), "duration", time.Since(start))
	return out, nil
}

// DescribeCluster returns the raw describe-cluster document.
func (d *Driver) DescribeCluster(ctx context.Context, clusterID string) ([]byte, error) {
	return d.run(ctx, "emr", "describe-cluster", "--cluster-id", clusterID)
}

// ListInstances returns the raw list-instances document for one group.
func (d *Driver) ListInstances(ctx context.Context, clusterID, groupID string) ([]byte, error) {
	return d.run(ctx, "emr", "list-instances", "--cluster-id", clusterID, "--instance-group-id", groupID)
}

// DescribeInstanceType implements hardware.Describer.
func (d *Driver) DescribeInstanceType(ctx context.Context, instanceType string) ([]byte, error) {
	return d.run(ctx, "ec2", "describe-instance-types", "--instance-types", instanceType)
}

// FindClusterID returns the id of the first cluster named name.
func (d *Driver) FindClusterID(ctx context.Context, name string) (string, error) {
	out, err := d.run(ctx, "emr", "list-clusters", "--query", fmt.Sprintf("Clusters[?Name==`%s`]", name))
	if err != nil {
		return "", err
	}
	clusters, err := convert.ParseEMRClusterList(out)
	if err != nil {
		return "", err
	}
	if len(clusters) == 0 || clusters[0].ID == "" {
		return "", esterrors.New(esterrors.ErrClusterNotFound, component,
			fmt.Sprintf("could not find EMR cluster %s by name", name), nil)
	}
	if len(clusters) > 1 {
		slog.Warn("several clusters share the name, using the first", "name", name, "id", clusters[0].ID, "matches", len(clusters))
	}
	return clusters[0].ID, nil
}

// Describe implements topology.RawSource. The cluster is described by
// ref.ID when set; otherwise ref.Name is resolved with list-clusters.
// Instances of every group are fetched with list-instances.
func (d *Driver) Describe(ctx context.Context, ref topology.ClusterRef) (*topology.RawCluster, error) {
	clusterID := ref.ID
	if clusterID == "" {
		if ref.Name == "" {
			return nil, esterrors.New(esterrors.ErrClusterNotFound, component, "no cluster id or name given", nil)
		}
		id, err := d.FindClusterID(ctx, ref.Name)
		if err != nil {
			return nil, err
		}
		slog.Debug("cluster resolved by name", "name", ref.Name, "id", id)
		clusterID = id
	}

	doc, err := d.DescribeCluster(ctx, clusterID)
	if err != nil {
		return nil, err
	}
	cluster, err := convert.ParseEMRCluster(doc)
	if err != nil {
		return nil, err
	}

	raw := convert.EMRClusterToRaw(cluster)
	if raw.Meta.Region == "" {
		raw.Meta.Region = d.region
	}
	for _, g := range raw.Groups {
		if _, ok := raw.Instances[g.ID]; ok {
			continue
		}
		out, err := d.ListInstances(ctx, cluster.ID, g.ID)
		if err != nil {
			return nil, err
		}
		instances, err := convert.ParseEMRInstances(out)
		if err != nil {
			return nil, fmt.Errorf("emr: group %s: %w", g.ID, err)
		}
		if len(instances) > 0 {
			raw.Instances[g.ID] = convert.EMRInstancesToRaw(instances)
		}
	}
	return raw, nil
}
