package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newAWSServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/latest/api/token":
			if r.Header.Get("X-aws-ec2-metadata-token-ttl-seconds") == "" {
				http.Error(w, "missing ttl header", http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, "test-token-abc123")

		case r.Method == http.MethodGet && r.URL.Path == "/latest/dynamic/instance-identity/document":
			if r.Header.Get("X-aws-ec2-metadata-token") != "test-token-abc123" {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"accountId":        "123456789012",
				"region":           "us-west-2",
				"availabilityZone": "us-west-2a",
				"instanceType":     "m5.xlarge",
				"instanceId":       "i-0abcdef1234567890",
			})

		default:
			http.NotFound(w, r)
		}
	}))
}

func clearRegionEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
}

func TestIMDSClient_Identity(t *testing.T) {
	srv := newAWSServer(t)
	defer srv.Close()

	id, err := newIMDSClientWithBase(srv.URL, 2*time.Second).Identity(context.Background())
	if err != nil {
		t.Fatalf("Identity returned error: %v", err)
	}
	if id.Region != "us-west-2" {
		t.Errorf("Region = %q, want %q", id.Region, "us-west-2")
	}
	if id.Zone != "us-west-2a" {
		t.Errorf("Zone = %q, want %q", id.Zone, "us-west-2a")
	}
	if id.AccountID != "123456789012" {
		t.Errorf("AccountID = %q", id.AccountID)
	}
}

func TestIMDSClient_TokenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newIMDSClientWithBase(srv.URL, 2*time.Second).Identity(context.Background())
	if err == nil {
		t.Fatal("expected error when IMDS token returns 403")
	}
}

func TestIMDSClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := newIMDSClientWithBase(srv.URL, 50*time.Millisecond).Identity(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestResolveRegion_Precedence(t *testing.T) {
	srv := newAWSServer(t)
	defer srv.Close()
	imds := newIMDSClientWithBase(srv.URL, 2*time.Second)
	ctx := context.Background()

	clearRegionEnv(t)
	if got := ResolveRegion(ctx, "eu-central-1", imds); got != "eu-central-1" {
		t.Errorf("configured region: got %q", got)
	}
	if got := ResolveRegion(ctx, "", imds); got != "us-west-2" {
		t.Errorf("IMDS region: got %q", got)
	}

	t.Setenv("AWS_DEFAULT_REGION", "ap-south-1")
	if got := ResolveRegion(ctx, "", imds); got != "ap-south-1" {
		t.Errorf("AWS_DEFAULT_REGION: got %q", got)
	}

	t.Setenv("AWS_REGION", "sa-east-1")
	if got := ResolveRegion(ctx, "", imds); got != "sa-east-1" {
		t.Errorf("AWS_REGION: got %q", got)
	}
}

func TestResolveRegion_NothingAvailable(t *testing.T) {
	clearRegionEnv(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if got := ResolveRegion(context.Background(), "", newIMDSClientWithBase(srv.URL, time.Second)); got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if got := ResolveRegion(context.Background(), "", nil); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
