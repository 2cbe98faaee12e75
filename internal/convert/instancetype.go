package convert

import (
	"sigs.k8s.io/yaml"

	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

// InstanceTypeInfo is one entry of `aws ec2 describe-instance-types` output.
type InstanceTypeInfo struct {
	InstanceType string `json:"InstanceType"`
	VCpuInfo     struct {
		DefaultVCpus int `json:"DefaultVCpus"`
	} `json:"VCpuInfo"`
	MemoryInfo struct {
		SizeInMiB int64 `json:"SizeInMiB"`
	} `json:"MemoryInfo"`
	GpuInfo *struct {
		Gpus []GPUDevice `json:"Gpus"`
	} `json:"GpuInfo,omitempty"`
}

// GPUDevice is one GpuInfo.Gpus entry.
type GPUDevice struct {
	Name         string `json:"Name"`
	Manufacturer string `json:"Manufacturer"`
	Count        int    `json:"Count"`
	MemoryInfo   struct {
		SizeInMiB int64 `json:"SizeInMiB"`
	} `json:"MemoryInfo"`
}

// ParseInstanceTypes decodes `aws ec2 describe-instance-types` output.
func ParseInstanceTypes(data []byte) ([]InstanceTypeInfo, error) {
	var doc struct {
		InstanceTypes []InstanceTypeInfo `json:"InstanceTypes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, malformed("decode instance types", err)
	}
	return doc.InstanceTypes, nil
}

// InstanceTypeToHardware converts an instance type description to the model.
// Only the first GPU entry is read; every device of a type is assumed to be
// the same model.
func InstanceTypeToHardware(it InstanceTypeInfo) *model.HardwareInfo {
	hw := &model.HardwareInfo{
		InstanceType: it.InstanceType,
		VCPUs:        it.VCpuInfo.DefaultVCpus,
		MemoryMiB:    it.MemoryInfo.SizeInMiB,
	}
	if it.GpuInfo == nil || len(it.GpuInfo.Gpus) == 0 {
		return hw
	}
	gpu := it.GpuInfo.Gpus[0]
	hw.GPU = &model.GPUInfo{
		Count:     gpu.Count,
		Model:     model.ParseGPUModel(gpu.Name),
		MemoryMiB: gpu.MemoryInfo.SizeInMiB,
	}
	return hw
}
