package convert

import (
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"

	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
	"github.com/kubeadapt/kubeadapt-estimator/internal/topology"
	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

// envelopeKey wraps the cluster in `aws emr describe-cluster` output.
const envelopeKey = "Cluster"

// EMRStatus is the Status block shared by clusters and instances.
type EMRStatus struct {
	State string `json:"State"`
}

// EMRCluster is the subset of an EMR cluster description the estimator reads.
type EMRCluster struct {
	ID                    string    `json:"Id"`
	Name                  string    `json:"Name"`
	Status                EMRStatus `json:"Status"`
	Ec2InstanceAttributes struct {
		Ec2AvailabilityZone string `json:"Ec2AvailabilityZone"`
	} `json:"Ec2InstanceAttributes"`
	InstanceGroups []EMRInstanceGroup `json:"InstanceGroups"`
}

// EMRInstanceGroup is one entry of InstanceGroups. Instances is not part of
// the AWS output; offline property files may embed the group's members there.
type EMRInstanceGroup struct {
	ID                     string        `json:"Id"`
	Name                   string        `json:"Name,omitempty"`
	InstanceType           string        `json:"InstanceType"`
	RequestedInstanceCount int           `json:"RequestedInstanceCount"`
	RunningInstanceCount   int           `json:"RunningInstanceCount,omitempty"`
	Market                 string        `json:"Market"`
	InstanceGroupType      string        `json:"InstanceGroupType"`
	Instances              []EMRInstance `json:"Instances,omitempty"`
}

// EMRInstance is one entry of `aws emr list-instances` output.
type EMRInstance struct {
	ID               string    `json:"Id"`
	Ec2InstanceID    string    `json:"Ec2InstanceId"`
	PublicDNSName    string    `json:"PublicDnsName"`
	PrivateDNSName   string    `json:"PrivateDnsName,omitempty"`
	PrivateIPAddress string    `json:"PrivateIpAddress,omitempty"`
	InstanceGroupID  string    `json:"InstanceGroupId,omitempty"`
	InstanceType     string    `json:"InstanceType,omitempty"`
	Status           EMRStatus `json:"Status"`
}

// EMRClusterSummary is one entry of `aws emr list-clusters` output.
type EMRClusterSummary struct {
	ID     string    `json:"Id"`
	Name   string    `json:"Name"`
	Status EMRStatus `json:"Status"`
}

func malformed(message string, err error) error {
	return esterrors.New(esterrors.ErrDocumentMalformed, "convert", message, err)
}

// unwrapEnvelope returns the value under the envelope key when the document
// has one, and the document itself otherwise. YAML input is converted to JSON.
func unwrapEnvelope(data []byte) ([]byte, error) {
	var top map[string]json.RawMessage
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	if inner, ok := top[envelopeKey]; ok {
		return inner, nil
	}
	return yaml.YAMLToJSON(data)
}

// ParseEMRCluster decodes an EMR cluster description, stripping the
// top-level "Cluster" wrapper when present. JSON and YAML are accepted.
func ParseEMRCluster(data []byte) (*EMRCluster, error) {
	doc, err := unwrapEnvelope(data)
	if err != nil {
		return nil, malformed("decode cluster description", err)
	}

	var c EMRCluster
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, malformed("decode cluster description", err)
	}
	if c.ID == "" {
		return nil, malformed("cluster description has no Id", nil)
	}
	if len(c.InstanceGroups) == 0 {
		return nil, malformed(fmt.Sprintf("cluster %s has no InstanceGroups", c.ID), nil)
	}
	return &c, nil
}

// ParseEMRInstances decodes `aws emr list-instances` output.
func ParseEMRInstances(data []byte) ([]EMRInstance, error) {
	var doc struct {
		Instances *[]EMRInstance `json:"Instances"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, malformed("decode instance list", err)
	}
	if doc.Instances == nil {
		return nil, malformed("instance list has no Instances", nil)
	}
	return *doc.Instances, nil
}

// ParseEMRClusterList decodes `aws emr list-clusters` output, either the full
// {"Clusters": [...]} document or the bare array produced by --query.
func ParseEMRClusterList(data []byte) ([]EMRClusterSummary, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, malformed("decode cluster list", err)
	}

	var list []EMRClusterSummary
	if err := json.Unmarshal(jsonData, &list); err == nil {
		return list, nil
	}

	var doc struct {
		Clusters []EMRClusterSummary `json:"Clusters"`
	}
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, malformed("decode cluster list", err)
	}
	return doc.Clusters, nil
}

// EMRClusterToRaw converts a cluster description to a raw topology. Only
// instances embedded in the groups are included; callers fetching them with
// list-instances fill RawCluster.Instances afterwards.
func EMRClusterToRaw(c *EMRCluster) *topology.RawCluster {
	zone := c.Ec2InstanceAttributes.Ec2AvailabilityZone
	raw := &topology.RawCluster{
		Meta: topology.ClusterMeta{
			Name:   c.Name,
			ID:     c.ID,
			Region: RegionFromZone(zone),
			Zone:   zone,
			State:  model.ParseClusterState(c.Status.State),
		},
		Groups:    make([]topology.RawGroup, 0, len(c.InstanceGroups)),
		Instances: make(map[string][]topology.RawInstance),
	}

	for _, g := range c.InstanceGroups {
		raw.Groups = append(raw.Groups, topology.RawGroup{
			ID:           g.ID,
			InstanceType: g.InstanceType,
			Count:        g.RequestedInstanceCount,
			Market:       g.Market,
			GroupType:    g.InstanceGroupType,
		})
		if len(g.Instances) > 0 {
			raw.Instances[g.ID] = EMRInstancesToRaw(g.Instances)
		}
	}
	return raw
}

// EMRInstancesToRaw converts list-instances entries to raw instances. The
// address is the public DNS name, falling back to the private name and IP.
func EMRInstancesToRaw(instances []EMRInstance) []topology.RawInstance {
	out := make([]topology.RawInstance, 0, len(instances))
	for _, inst := range instances {
		addr := inst.PublicDNSName
		if addr == "" {
			addr = inst.PrivateDNSName
		}
		if addr == "" {
			addr = inst.PrivateIPAddress
		}
		out = append(out, topology.RawInstance{
			ID:          inst.ID,
			SecondaryID: inst.Ec2InstanceID,
			Address:     addr,
			State:       inst.Status.State,
		})
	}
	return out
}
