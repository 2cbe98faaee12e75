package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const awsIMDSBase = "http://169.254.169.254"

// Identity is the EC2 instance identity document of the host.
type Identity struct {
	AccountID    string `json:"accountId"`
	Region       string `json:"region"`
	Zone         string `json:"availabilityZone"`
	InstanceType string `json:"instanceType"`
	InstanceID   string `json:"instanceId"`
}

// IMDSClient reads instance metadata through IMDSv2.
type IMDSClient struct {
	base   string
	client *http.Client
}

// NewIMDSClient creates a client for the standard IMDS endpoint.
func NewIMDSClient(timeout time.Duration) *IMDSClient {
	return newIMDSClientWithBase(awsIMDSBase, timeout)
}

func newIMDSClientWithBase(base string, timeout time.Duration) *IMDSClient {
	return &IMDSClient{base: base, client: &http.Client{Timeout: timeout}}
}

func (c *IMDSClient) token(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base+"/latest/api/token", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-aws-ec2-metadata-token-ttl-seconds", "60")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("IMDS token request returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// Identity fetches the instance identity document.
func (c *IMDSClient) Identity(ctx context.Context) (Identity, error) {
	token, err := c.token(ctx)
	if err != nil {
		return Identity{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/latest/dynamic/instance-identity/document", nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("X-aws-ec2-metadata-token", token)

	resp, err := c.client.Do(req)
	if err != nil {
		return Identity{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("IMDS identity document returned %d", resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// ResolveRegion picks the AWS region: the configured value, then the
// AWS_REGION and AWS_DEFAULT_REGION variables, then the instance metadata.
// Returns "" when none is available.
func ResolveRegion(ctx context.Context, configured string, imds *IMDSClient) string {
	if configured != "" {
		return configured
	}
	for _, key := range []string{"AWS_REGION", "AWS_DEFAULT_REGION"} {
		if v := os.Getenv(key); v != "" {
			slog.Debug("region taken from environment", "variable", key, "region", v)
			return v
		}
	}
	if imds == nil {
		return ""
	}
	id, err := imds.Identity(ctx)
	if err != nil {
		slog.Debug("instance metadata unavailable", "error", err)
		return ""
	}
	slog.Debug("region detected from instance metadata", "region", id.Region, "account", id.AccountID)
	return id.Region
}
