package kube

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/kubeadapt/kubeadapt-estimator/internal/convert"
	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
	"github.com/kubeadapt/kubeadapt-estimator/internal/topology"
	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

const component = "provider.kube"

// Source describes a Kubernetes cluster from its nodes. Node groups become
// topology groups; the control plane, or the configured primary node group,
// is the master group.
type Source struct {
	client       kubernetes.Interface
	primaryGroup string
}

// NewSource creates a Source. primaryGroup names the node group treated as
// master when the cluster exposes no control-plane nodes (EKS, GKE).
func NewSource(client kubernetes.Interface, primaryGroup string) *Source {
	return &Source{client: client, primaryGroup: primaryGroup}
}

// Describe implements topology.RawSource. ref.Name names the cluster; a
// ref.ID overrides the id read from the cluster.
func (s *Source) Describe(ctx context.Context, ref topology.ClusterRef) (*topology.RawCluster, error) {
	nodes, err := s.client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, esterrors.New(esterrors.ErrCommandFailed, component, "list nodes", err)
	}
	if len(nodes.Items) == 0 {
		return nil, esterrors.New(esterrors.ErrClusterNotFound, component, "cluster has no nodes", nil)
	}

	for i := range nodes.Items {
		if pid := nodes.Items[i].Spec.ProviderID; pid != "" && !strings.HasPrefix(pid, "aws://") {
			slog.Warn("non-AWS nodes found, EMR prices may not apply", "node", nodes.Items[i].Name, "provider_id", pid)
			break
		}
	}

	meta := topology.ClusterMeta{
		Name:  ref.Name,
		ID:    ref.ID,
		State: model.ClusterRunning,
	}
	if meta.ID == "" {
		meta.ID = s.clusterID(ctx, ref.Name)
	}
	raw := convert.NodesToRaw(nodes.Items, meta, s.primaryGroup)

	masters := 0
	for _, g := range raw.Groups {
		if g.GroupType == convert.GroupTypeMaster {
			masters++
		}
	}
	if masters == 0 {
		return nil, esterrors.New(esterrors.ErrInvalidTopology, component,
			"no control-plane nodes found; set KUBEADAPT_PRIMARY_NODE_GROUP to the node group acting as master", nil)
	}

	slog.Debug("kubernetes topology described", "nodes", len(nodes.Items), "groups", len(raw.Groups))
	return raw, nil
}

// clusterID uses the kube-system namespace UID, which is stable for the
// lifetime of a cluster. When it cannot be read, a name-based UUID is used.
func (s *Source) clusterID(ctx context.Context, name string) string {
	ns, err := s.client.CoreV1().Namespaces().Get(ctx, metav1.NamespaceSystem, metav1.GetOptions{})
	if err == nil && ns.UID != "" {
		return string(ns.UID)
	}
	slog.Debug("kube-system namespace unavailable, deriving cluster id from name", "error", err)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("kubernetes/"+name)).String()
}

// BuildConfig creates a Kubernetes REST config. It tries in-cluster config
// first, then the kubeconfig file (kubeconfig, or the default
// ~/.kube/config when empty).
func BuildConfig(kubeconfig string) (*rest.Config, error) {
	cfg, err := rest.InClusterConfig()
	if err == nil {
		slog.Debug("using in-cluster kubernetes config")
		return cfg, nil
	}

	if kubeconfig == "" {
		kubeconfig = clientcmd.RecommendedHomeFile
	}
	cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("kube: build config from %s: %w", kubeconfig, err)
	}
	slog.Debug("using kubeconfig file", "path", kubeconfig)
	return cfg, nil
}

// NewClient builds a clientset from BuildConfig.
func NewClient(kubeconfig string) (kubernetes.Interface, error) {
	cfg, err := BuildConfig(kubeconfig)
	if err != nil {
		return nil, err
	}
	return kubernetes.NewForConfig(cfg)
}
