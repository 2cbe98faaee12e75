package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kubeadapt/kubeadapt-estimator/internal/config"
)

func newRootCommand() *cobra.Command {
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "kubeadapt-estimator",
		Short:         "Estimate the cost of moving cluster workers to GPU instance types",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if !cmd.Flags().Changed("resolve-hardware") && os.Getenv("KUBEADAPT_RESOLVE_HARDWARE") == "" {
				cfg.ResolveHardware = config.ResolveHardwareDefault(cfg.Source)
			}
			cfg.LogLevel = strings.ToLower(cfg.LogLevel)
			cfg.LogFormat = strings.ToLower(cfg.LogFormat)
			slog.SetDefault(newLogger(cfg.LogLevel, cfg.LogFormat))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.Source, "source", cfg.Source, "topology source: emr, file or kubernetes")
	flags.StringVar(&cfg.Region, "region", cfg.Region, "AWS region (detected when empty)")
	flags.StringVar(&cfg.ClusterID, "cluster-id", cfg.ClusterID, "cluster id")
	flags.StringVar(&cfg.ClusterName, "cluster-name", cfg.ClusterName, "cluster name, used when no id is given")
	flags.StringVar(&cfg.ClusterPropsPath, "props", cfg.ClusterPropsPath, "cluster properties document for the file source")
	flags.StringVar(&cfg.GPUCatalogPath, "gpu-catalog", cfg.GPUCatalogPath, "supported GPU instance types (built-in list when empty)")
	flags.StringVar(&cfg.AWSCLIPath, "aws-cli", cfg.AWSCLIPath, "path to the aws binary")
	flags.DurationVar(&cfg.CommandTimeout, "command-timeout", cfg.CommandTimeout, "timeout per provider command")
	flags.StringVar(&cfg.Kubeconfig, "kubeconfig", cfg.Kubeconfig, "kubeconfig path for the kubernetes source")
	flags.StringVar(&cfg.PrimaryNodeGroup, "primary-node-group", cfg.PrimaryNodeGroup, "node group acting as master for the kubernetes source")
	flags.BoolVar(&cfg.ResolveHardware, "resolve-hardware", cfg.ResolveHardware, "look up hardware facts for every node (default off for the file source)")
	flags.StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "output path, - for stdout")
	flags.IntVar(&cfg.CompressionLevel, "compression-level", cfg.CompressionLevel, "zstd level 1-4, 0 disables compression")
	flags.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write Prometheus metrics to this textfile")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")

	root.AddCommand(newMigrateCommand(&cfg), newSavingsCommand(&cfg), newVersionCommand())
	return root
}

func newMigrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Print the topology with worker groups moved to GPU instance types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			app := newApp(*cfg)
			defer app.flushMetrics()

			_, target, err := app.migrate(cmd.Context())
			if err != nil {
				return err
			}
			_, err = app.writer.WriteFile(cfg.OutputPath, target)
			return err
		},
	}
}

func newSavingsCommand(cfg *config.Config) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Compare the hourly cost of the current and migrated topologies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" && format != "text" {
				return fmt.Errorf("--format must be json or text, got %q", format)
			}
			if err := cfg.ValidateSavings(); err != nil {
				return err
			}
			app := newApp(*cfg)
			defer app.flushMetrics()

			r, err := app.savings(cmd.Context())
			if err != nil {
				return err
			}
			if format == "text" {
				return writeText(cfg.OutputPath, r)
			}
			_, err = app.writer.WriteFile(cfg.OutputPath, r)
			return err
		},
	}
	cmd.Flags().StringVar(&cfg.PriceCatalogPath, "price-catalog", cfg.PriceCatalogPath, "price catalog document")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "report format: json or text")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the estimator version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
