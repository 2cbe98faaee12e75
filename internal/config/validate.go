package config

import (
	"fmt"
	"time"
)

// Validate checks that the Config contains valid values.
// Returns an error describing the first invalid field found.
func (c Config) Validate() error {
	switch c.Source {
	case SourceEMR:
		if c.ClusterID == "" && c.ClusterName == "" {
			return fmt.Errorf("config: KUBEADAPT_CLUSTER_ID or KUBEADAPT_CLUSTER_NAME is required for source %q", c.Source)
		}
		if c.AWSCLIPath == "" {
			return fmt.Errorf("config: KUBEADAPT_AWS_CLI must not be empty")
		}
	case SourceFile:
		if c.ClusterPropsPath == "" {
			return fmt.Errorf("config: KUBEADAPT_CLUSTER_PROPS is required for source %q", c.Source)
		}
	case SourceKubernetes:
	default:
		return fmt.Errorf("config: Source must be one of %q, %q, %q, got %q", SourceEMR, SourceFile, SourceKubernetes, c.Source)
	}

	if c.CommandTimeout < time.Second {
		return fmt.Errorf("config: CommandTimeout must be >= 1s, got %v", c.CommandTimeout)
	}

	if c.IMDSTimeout <= 0 {
		return fmt.Errorf("config: IMDSTimeout must be > 0, got %v", c.IMDSTimeout)
	}

	if c.CompressionLevel < 0 || c.CompressionLevel > 4 {
		return fmt.Errorf("config: CompressionLevel must be 0-4, got %d", c.CompressionLevel)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: LogLevel must be debug, info, warn or error, got %q", c.LogLevel)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: LogFormat must be text or json, got %q", c.LogFormat)
	}

	return nil
}

// ValidateSavings checks the extra settings needed to estimate costs.
func (c Config) ValidateSavings() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.PriceCatalogPath == "" {
		return fmt.Errorf("config: KUBEADAPT_PRICE_CATALOG is required to estimate savings")
	}
	return nil
}
