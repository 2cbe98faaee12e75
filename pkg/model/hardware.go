package model

import "strings"

// HardwareInfo describes the hardware shape behind an instance type.
type HardwareInfo struct {
	InstanceType string   `json:"instance_type"`
	VCPUs        int      `json:"vcpus"`
	MemoryMiB    int64    `json:"memory_mib"`
	GPU          *GPUInfo `json:"gpu,omitempty"`
}

// GPUInfo describes the accelerators attached to an instance type.
// All devices of an instance type are assumed to be the same model.
type GPUInfo struct {
	Count     int      `json:"count"`
	Model     GPUModel `json:"model"`
	MemoryMiB int64    `json:"memory_mib"`
}

// GPUModel identifies an accelerator family.
type GPUModel string

// Known GPU models.
const (
	GPUModelT4      GPUModel = "T4"
	GPUModelA10     GPUModel = "A10"
	GPUModelA10G    GPUModel = "A10G"
	GPUModelA100    GPUModel = "A100"
	GPUModelH100    GPUModel = "H100"
	GPUModelL4      GPUModel = "L4"
	GPUModelP4      GPUModel = "P4"
	GPUModelP100    GPUModel = "P100"
	GPUModelV100    GPUModel = "V100"
	GPUModelK80     GPUModel = "K80"
	GPUModelUnknown GPUModel = "unknown"
)

var knownGPUModels = []GPUModel{
	GPUModelT4, GPUModelA10G, GPUModelA10, GPUModelA100, GPUModelH100,
	GPUModelL4, GPUModelP4, GPUModelP100, GPUModelV100, GPUModelK80,
}

// ParseGPUModel maps a provider GPU name such as "A10G" or "NVIDIA T4" to a
// GPUModel. Matching is exact per whitespace-separated token so that A10,
// A10G and A100 stay distinct.
func ParseGPUModel(name string) GPUModel {
	for _, tok := range strings.Fields(strings.ToUpper(name)) {
		for _, m := range knownGPUModels {
			if tok == string(m) {
				return m
			}
		}
	}
	return GPUModelUnknown
}
