package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog_Embedded(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	assert.Equal(t, 10, c.Color("Lead List", 0))
	assert.Equal(t, 9, c.Color("Industrial", 0))
	assert.Equal(t, 2, c.Color("Healthcare", 2), "Неописанный тег получает цвет по умолчанию")

	assert.Len(t, c.Products, 6)
	assert.Equal(t, []string{"LEAD-DFW", "LEAD-MULTI", "CONSULT-AI", "SEO-AUDIT", "DEV-WORKFLOW", "SUPPORT-ENT"}, c.ProductCodes())
}

func TestProductValues(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	v := c.Products[0].Values()
	assert.Equal(t, "Lead Generation List - DFW", v["name"])
	assert.Equal(t, 149.0, v["list_price"])
	assert.Equal(t, int64(1), v["categ_id"])
	assert.Contains(t, v["description_sale"], "DFW metro area. Includes")
}

func TestParseCatalog_Invalid(t *testing.T) {
	_, err := ParseCatalog([]byte("products: [unterminated"))
	assert.Error(t, err)
}
