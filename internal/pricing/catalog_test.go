package pricing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
)

const yamlCatalog = `
region: us-east-1
currency: USD
prices:
  m5.xlarge:
    ec2: 0.192
    emr: 0.048
  g5.2xlarge:
    ec2: 1.212
    emr: 0.27
`

func TestParseCatalog_YAML(t *testing.T) {
	c, err := ParseCatalog([]byte(yamlCatalog))
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", c.Region)
	assert.Equal(t, "USD", c.Currency)
	assert.Equal(t, 2, c.Len())

	v, err := c.UnitCost(context.Background(), CategoryService, "g5.2xlarge")
	require.NoError(t, err)
	assert.InDelta(t, 0.27, v, 1e-9)
}

func TestParseCatalog_JSON(t *testing.T) {
	c, err := ParseCatalog([]byte(`{"region":"eu-west-1","prices":{"r5.2xlarge":{"ec2":0.504,"emr":0.126}}}`))
	require.NoError(t, err)

	v, err := c.UnitCost(context.Background(), CategoryCompute, "r5.2xlarge")
	require.NoError(t, err)
	assert.InDelta(t, 0.504, v, 1e-9)
}

func TestParseCatalog_Malformed(t *testing.T) {
	_, err := ParseCatalog([]byte("prices: [not, a, map]"))
	require.Error(t, err)
	assert.True(t, esterrors.HasCode(err, esterrors.ErrDocumentMalformed))

	_, err = ParseCatalog([]byte(`{"prices":{"m5.xlarge":{"ec2":-1}}}`))
	require.Error(t, err)
}

func TestStaticCatalog_NotFound(t *testing.T) {
	c := NewStaticCatalog("", "", nil)
	_, err := c.UnitCost(context.Background(), CategoryCompute, "m5.xlarge")
	assert.ErrorIs(t, err, ErrPriceNotFound)

	c, err = ParseCatalog([]byte(yamlCatalog))
	require.NoError(t, err)
	_, err = c.UnitCost(context.Background(), "spot", "m5.xlarge")
	assert.ErrorIs(t, err, ErrPriceNotFound, "unknown category")
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlCatalog), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
