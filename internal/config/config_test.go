package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// helper to clear all estimator env vars before each test
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"KUBEADAPT_SOURCE",
		"KUBEADAPT_REGION",
		"KUBEADAPT_CLUSTER_ID",
		"KUBEADAPT_CLUSTER_NAME",
		"KUBEADAPT_CLUSTER_PROPS",
		"KUBEADAPT_PRICE_CATALOG",
		"KUBEADAPT_GPU_CATALOG",
		"KUBEADAPT_AWS_CLI",
		"KUBEADAPT_COMMAND_TIMEOUT",
		"KUBEADAPT_IMDS_TIMEOUT",
		"KUBEADAPT_PRIMARY_NODE_GROUP",
		"KUBEADAPT_RESOLVE_HARDWARE",
		"KUBEADAPT_OUTPUT",
		"KUBEADAPT_COMPRESSION_LEVEL",
		"KUBEADAPT_METRICS_FILE",
		"KUBEADAPT_LOG_LEVEL",
		"KUBEADAPT_LOG_FORMAT",
		"KUBECONFIG",
	}
	for _, v := range envVars {
		// t.Setenv registers the restore; Unsetenv then removes it for the test.
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Source != SourceEMR {
		t.Errorf("Source = %q, want %q", cfg.Source, SourceEMR)
	}
	if cfg.AWSCLIPath != "aws" {
		t.Errorf("AWSCLIPath = %q, want aws", cfg.AWSCLIPath)
	}
	if cfg.CommandTimeout != 60*time.Second {
		t.Errorf("CommandTimeout = %v, want 60s", cfg.CommandTimeout)
	}
	if cfg.IMDSTimeout != 2*time.Second {
		t.Errorf("IMDSTimeout = %v, want 2s", cfg.IMDSTimeout)
	}
	if !cfg.ResolveHardware {
		t.Error("ResolveHardware should default to true")
	}
	if cfg.CompressionLevel != 0 {
		t.Errorf("CompressionLevel = %d, want 0", cfg.CompressionLevel)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging = %q/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Region != "" || cfg.PriceCatalogPath != "" || cfg.GPUCatalogPath != "" {
		t.Error("optional paths should default to empty")
	}
}

func TestLoad_AllEnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("KUBEADAPT_SOURCE", "file")
	t.Setenv("KUBEADAPT_REGION", "us-west-2")
	t.Setenv("KUBEADAPT_CLUSTER_ID", "j-2DDF0Q87QOXON")
	t.Setenv("KUBEADAPT_CLUSTER_NAME", "etl-nightly")
	t.Setenv("KUBEADAPT_CLUSTER_PROPS", "/tmp/cluster.yaml")
	t.Setenv("KUBEADAPT_PRICE_CATALOG", "/tmp/prices.yaml")
	t.Setenv("KUBEADAPT_GPU_CATALOG", "/tmp/gpus.yaml")
	t.Setenv("KUBEADAPT_AWS_CLI", "/usr/local/bin/aws")
	t.Setenv("KUBEADAPT_COMMAND_TIMEOUT", "90s")
	t.Setenv("KUBEADAPT_IMDS_TIMEOUT", "500ms")
	t.Setenv("KUBEADAPT_PRIMARY_NODE_GROUP", "system")
	t.Setenv("KUBEADAPT_RESOLVE_HARDWARE", "false")
	t.Setenv("KUBEADAPT_OUTPUT", "/tmp/report.json.zst")
	t.Setenv("KUBEADAPT_COMPRESSION_LEVEL", "3")
	t.Setenv("KUBEADAPT_METRICS_FILE", "/tmp/estimator.prom")
	t.Setenv("KUBEADAPT_LOG_LEVEL", "DEBUG")
	t.Setenv("KUBEADAPT_LOG_FORMAT", "json")

	cfg := Load()

	if cfg.Source != SourceFile {
		t.Errorf("Source = %q", cfg.Source)
	}
	if cfg.Region != "us-west-2" {
		t.Errorf("Region = %q", cfg.Region)
	}
	if cfg.ClusterRef() != "j-2DDF0Q87QOXON" {
		t.Errorf("ClusterRef() = %q, want the id", cfg.ClusterRef())
	}
	if cfg.ClusterPropsPath != "/tmp/cluster.yaml" || cfg.PriceCatalogPath != "/tmp/prices.yaml" || cfg.GPUCatalogPath != "/tmp/gpus.yaml" {
		t.Error("paths not loaded")
	}
	if cfg.AWSCLIPath != "/usr/local/bin/aws" {
		t.Errorf("AWSCLIPath = %q", cfg.AWSCLIPath)
	}
	if cfg.CommandTimeout != 90*time.Second {
		t.Errorf("CommandTimeout = %v", cfg.CommandTimeout)
	}
	if cfg.IMDSTimeout != 500*time.Millisecond {
		t.Errorf("IMDSTimeout = %v", cfg.IMDSTimeout)
	}
	if cfg.PrimaryNodeGroup != "system" {
		t.Errorf("PrimaryNodeGroup = %q", cfg.PrimaryNodeGroup)
	}
	if cfg.ResolveHardware {
		t.Error("ResolveHardware should be false")
	}
	if cfg.OutputPath != "/tmp/report.json.zst" || cfg.CompressionLevel != 3 {
		t.Error("output settings not loaded")
	}
	if cfg.MetricsFile != "/tmp/estimator.prom" {
		t.Errorf("MetricsFile = %q", cfg.MetricsFile)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("logging = %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoad_DurationIntegerSeconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("KUBEADAPT_COMMAND_TIMEOUT", "120")

	cfg := Load()
	if cfg.CommandTimeout != 120*time.Second {
		t.Errorf("CommandTimeout = %v, want 120s", cfg.CommandTimeout)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("KUBEADAPT_COMMAND_TIMEOUT", "soon")
	t.Setenv("KUBEADAPT_COMPRESSION_LEVEL", "max")
	t.Setenv("KUBEADAPT_RESOLVE_HARDWARE", "maybe")

	cfg := Load()
	if cfg.CommandTimeout != 60*time.Second {
		t.Errorf("CommandTimeout = %v, want default 60s", cfg.CommandTimeout)
	}
	if cfg.CompressionLevel != 0 {
		t.Errorf("CompressionLevel = %d, want default 0", cfg.CompressionLevel)
	}
	if !cfg.ResolveHardware {
		t.Error("ResolveHardware should keep its default")
	}
}

func validConfig() Config {
	return Config{
		Source:         SourceEMR,
		ClusterID:      "j-2DDF0Q87QOXON",
		AWSCLIPath:     "aws",
		CommandTimeout: time.Minute,
		IMDSTimeout:    2 * time.Second,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"emr needs cluster", func(c *Config) { c.ClusterID = "" }, "KUBEADAPT_CLUSTER_ID"},
		{"emr by name", func(c *Config) { c.ClusterID = ""; c.ClusterName = "etl" }, ""},
		{"file needs props", func(c *Config) { c.Source = SourceFile }, "KUBEADAPT_CLUSTER_PROPS"},
		{"kubernetes", func(c *Config) { c.Source = SourceKubernetes; c.ClusterID = "" }, ""},
		{"unknown source", func(c *Config) { c.Source = "dataproc" }, "Source must be one of"},
		{"short timeout", func(c *Config) { c.CommandTimeout = 10 * time.Millisecond }, "CommandTimeout"},
		{"zero imds timeout", func(c *Config) { c.IMDSTimeout = 0 }, "IMDSTimeout"},
		{"compression too high", func(c *Config) { c.CompressionLevel = 5 }, "CompressionLevel"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "LogLevel"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LogFormat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSavings_RequiresPriceCatalog(t *testing.T) {
	cfg := validConfig()
	if err := cfg.ValidateSavings(); err == nil {
		t.Fatal("expected error without a price catalog")
	}

	cfg.PriceCatalogPath = "/tmp/prices.yaml"
	if err := cfg.ValidateSavings(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_FileSourceSkipsHardwareByDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("KUBEADAPT_SOURCE", "file")

	if cfg := Load(); cfg.ResolveHardware {
		t.Error("ResolveHardware should default to false for the file source")
	}

	t.Setenv("KUBEADAPT_RESOLVE_HARDWARE", "true")
	if cfg := Load(); !cfg.ResolveHardware {
		t.Error("an explicit KUBEADAPT_RESOLVE_HARDWARE must win")
	}

	if !ResolveHardwareDefault(SourceEMR) || !ResolveHardwareDefault(SourceKubernetes) || ResolveHardwareDefault(SourceFile) {
		t.Error("unexpected ResolveHardwareDefault")
	}
}
