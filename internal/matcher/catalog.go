package matcher

import (
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
)

// defaultSupported is the built-in list of GPU instance types in matching
// preference order.
var defaultSupported = []string{
	"g4dn.xlarge", "g4dn.2xlarge", "g4dn.4xlarge", "g4dn.8xlarge", "g4dn.12xlarge", "g4dn.16xlarge",
	"g5.xlarge", "g5.2xlarge", "g5.4xlarge", "g5.8xlarge", "g5.12xlarge", "g5.16xlarge",
	"g5.24xlarge", "g5.48xlarge",
	"p3.2xlarge", "p3.8xlarge", "p3.16xlarge",
}

// Catalog is an ordered list of supported accelerator instance types.
type Catalog struct {
	Supported []string `json:"supported"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() Catalog {
	return Catalog{Supported: append([]string(nil), defaultSupported...)}
}

// ParseCatalog decodes a JSON or YAML catalog document. Empty entries are
// dropped, duplicates keep their first position.
func ParseCatalog(data []byte) (Catalog, error) {
	var doc Catalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Catalog{}, esterrors.New(esterrors.ErrDocumentMalformed, "matcher", "decode GPU catalog", err)
	}

	seen := make(map[string]struct{}, len(doc.Supported))
	out := make([]string, 0, len(doc.Supported))
	for _, t := range doc.Supported {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return Catalog{}, esterrors.New(esterrors.ErrDocumentMalformed, "matcher", "GPU catalog lists no instance types", nil)
	}
	return Catalog{Supported: out}, nil
}

// LoadCatalog reads the catalog at path, or returns the built-in catalog
// when path is empty.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("matcher: read catalog: %w", err)
	}
	return ParseCatalog(data)
}
