package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetConfigEndpointDefaults: a minimal environment still points at the
// production supplier and commerce endpoints.
func TestGetConfigEndpointDefaults(t *testing.T) {
	t.Setenv("INPUT_BUCKET", "in-bucket")
	t.Setenv("INPUT_KEY", "skus.csv")
	t.Setenv("SUPPLIER_AUTH_URL", "")
	t.Setenv("SUPPLIER_PRODUCTS_URL", "")
	t.Setenv("NETOAPI_URL", "")
	t.Setenv("NETOAPI_WAREHOUSE_ID", "")
	t.Setenv("OUTPUT_PREFIX", "")

	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.dropshipzone.com.au/auth", cfg.SupplierAuthURL)
	assert.Equal(t, "https://api.dropshipzone.com.au/v2/products", cfg.SupplierProductsURL)
	assert.Equal(t, "https://www.shoppingsmart.com.au/do/WS/NetoAPI", cfg.NetoURL)
	assert.Equal(t, "2", cfg.NetoWarehouseID)
	assert.Equal(t, "stock_snapshot", cfg.OutputPrefix)
}

// TestGetConfigRequiresInput: the job refuses to start without its input
// object coordinates.
func TestGetConfigRequiresInput(t *testing.T) {
	t.Setenv("INPUT_BUCKET", "")
	t.Setenv("INPUT_KEY", "")

	_, err := GetConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INPUT_BUCKET")
}
