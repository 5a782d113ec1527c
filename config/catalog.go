package config

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Product struct {
	Name            string  `yaml:"name"`
	DefaultCode     string  `yaml:"default_code"`
	Type            string  `yaml:"type"`
	ListPrice       float64 `yaml:"list_price"`
	InvoicePolicy   string  `yaml:"invoice_policy"`
	CategID         int64   `yaml:"categ_id"`
	DescriptionSale string  `yaml:"description_sale"`
}

// Values - поля для product.template create.
func (p Product) Values() map[string]interface{} {
	return map[string]interface{}{
		"name":             p.Name,
		"default_code":     p.DefaultCode,
		"type":             p.Type,
		"list_price":       p.ListPrice,
		"invoice_policy":   p.InvoicePolicy,
		"categ_id":         p.CategID,
		"description_sale": p.DescriptionSale,
	}
}

type Catalog struct {
	CategoryColors map[string]int `yaml:"category_colors"`
	Products       []Product      `yaml:"products"`
}

// Color возвращает цвет тега или fallback, если тег не описан в каталоге.
func (c *Catalog) Color(name string, fallback int) int {
	if v, ok := c.CategoryColors[name]; ok {
		return v
	}
	return fallback
}

func (c *Catalog) ProductCodes() []string {
	codes := make([]string, 0, len(c.Products))
	for _, p := range c.Products {
		codes = append(codes, p.DefaultCode)
	}
	return codes
}

var (
	catalogOnce sync.Once
	catalog     *Catalog
	catalogErr  error
)

// LoadCatalog разбирает встроенный catalog.yaml один раз за процесс.
func LoadCatalog() (*Catalog, error) {
	catalogOnce.Do(func() {
		catalog, catalogErr = ParseCatalog(catalogYAML)
	})
	return catalog, catalogErr
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("ошибка разбора каталога: %w", err)
	}
	if c.CategoryColors == nil {
		c.CategoryColors = map[string]int{}
	}
	return &c, nil
}
