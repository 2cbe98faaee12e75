package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Topology sources.
const (
	SourceEMR        = "emr"
	SourceFile       = "file"
	SourceKubernetes = "kubernetes"
)

// Config holds all estimator configuration values.
type Config struct {
	Source      string
	Region      string
	ClusterID   string
	ClusterName string

	ClusterPropsPath string // KUBEADAPT_CLUSTER_PROPS, used by the file source
	PriceCatalogPath string // KUBEADAPT_PRICE_CATALOG, required for savings
	GPUCatalogPath   string // KUBEADAPT_GPU_CATALOG, default: built-in list

	// Provider commands
	AWSCLIPath     string
	CommandTimeout time.Duration
	IMDSTimeout    time.Duration

	// Kubernetes source
	Kubeconfig       string
	PrimaryNodeGroup string // KUBEADAPT_PRIMARY_NODE_GROUP, node group treated as master

	ResolveHardware bool

	// Output
	OutputPath       string // "" or "-" means stdout
	CompressionLevel int    // 0 disables zstd, 1-4 map to zstd encoder levels
	MetricsFile      string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config
// with defaults applied for any unset values.
func Load() Config {
	source := envOrDefault("KUBEADAPT_SOURCE", SourceEMR)
	cfg := Config{
		Source:           source,
		Region:           os.Getenv("KUBEADAPT_REGION"),
		ClusterID:        os.Getenv("KUBEADAPT_CLUSTER_ID"),
		ClusterName:      os.Getenv("KUBEADAPT_CLUSTER_NAME"),
		ClusterPropsPath: os.Getenv("KUBEADAPT_CLUSTER_PROPS"),
		PriceCatalogPath: os.Getenv("KUBEADAPT_PRICE_CATALOG"),
		GPUCatalogPath:   os.Getenv("KUBEADAPT_GPU_CATALOG"),
		AWSCLIPath:       envOrDefault("KUBEADAPT_AWS_CLI", "aws"),
		CommandTimeout:   parseDuration("KUBEADAPT_COMMAND_TIMEOUT", 60*time.Second),
		IMDSTimeout:      parseDuration("KUBEADAPT_IMDS_TIMEOUT", 2*time.Second),
		Kubeconfig:       os.Getenv("KUBECONFIG"),
		PrimaryNodeGroup: os.Getenv("KUBEADAPT_PRIMARY_NODE_GROUP"),
		ResolveHardware:  parseBool("KUBEADAPT_RESOLVE_HARDWARE", ResolveHardwareDefault(source)),
		OutputPath:       os.Getenv("KUBEADAPT_OUTPUT"),
		CompressionLevel: parseInt("KUBEADAPT_COMPRESSION_LEVEL", 0),
		MetricsFile:      os.Getenv("KUBEADAPT_METRICS_FILE"),
		LogLevel:         strings.ToLower(envOrDefault("KUBEADAPT_LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(envOrDefault("KUBEADAPT_LOG_FORMAT", "text")),
	}

	return cfg
}

// ResolveHardwareDefault reports whether hardware is resolved when
// KUBEADAPT_RESOLVE_HARDWARE is unset: on for live sources, off for the
// offline file source.
func ResolveHardwareDefault(source string) bool {
	return source != SourceFile
}

// ClusterRef returns the cluster id when set, otherwise the name, for logs.
// Sources receive the id and name separately.
func (c Config) ClusterRef() string {
	if c.ClusterID != "" {
		return c.ClusterID
	}
	return c.ClusterName
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// parseDuration tries time.ParseDuration first, then falls back to treating
// the value as integer seconds.
func parseDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(v)
	if err == nil {
		return d
	}

	// Fallback: treat as integer seconds
	secs, err := strconv.Atoi(v)
	if err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultVal
}

func parseBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func parseInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
