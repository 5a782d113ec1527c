package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	OdooHint     = "ODOO_URL/ODOO_DB/ODOO_USERNAME/ODOO_API_KEY"
	PostgresHint = "POSTGRES_HOST/POSTGRES_PORT/POSTGRES_DB/POSTGRES_USER/POSTGRES_PASSWORD"
	StripeHint   = "STRIPE_SECRET_KEY/STRIPE_PUBLISHABLE_KEY"
)

// MissingConfigError перечисляет все незаполненные обязательные ключи сразу.
type MissingConfigError struct {
	Keys []string
	Hint string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf(
		"Missing required configuration values: %s. Set them via environment variables (%s) or CLI flags.",
		strings.Join(e.Keys, ", "), e.Hint,
	)
}

var requireValidator = newRequireValidator()

func newRequireValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("key"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Require проверяет секцию конфигурации (OdooConfig, PostgresConfig, StripeConfig) по тегам validate.
func Require(section interface{}, hint string) error {
	err := requireValidator.Struct(section)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return fmt.Errorf("ошибка проверки конфигурации: %w", err)
	}

	keys := make([]string, 0, len(vErrs))
	for _, fe := range vErrs {
		if fe.Tag() == "url" {
			keys = append(keys, fe.Field()+" (invalid url)")
			continue
		}
		keys = append(keys, fe.Field())
	}
	return &MissingConfigError{Keys: keys, Hint: hint}
}

// OdooOverrides - значения из флагов CLI. Пустые значения не перекрывают окружение.
type OdooOverrides struct {
	URL      string
	DB       string
	Username string
	APIKey   string
}

type PostgresOverrides struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

func (c *Config) ApplyOdooOverrides(o OdooOverrides) {
	setIfNotEmpty(&c.Odoo.URL, o.URL)
	setIfNotEmpty(&c.Odoo.DB, o.DB)
	setIfNotEmpty(&c.Odoo.Username, o.Username)
	setIfNotEmpty(&c.Odoo.APIKey, o.APIKey)
}

func (c *Config) ApplyPostgresOverrides(o PostgresOverrides) {
	setIfNotEmpty(&c.Postgres.Host, o.Host)
	if o.Port > 0 {
		c.Postgres.Port = o.Port
	}
	setIfNotEmpty(&c.Postgres.Database, o.Database)
	setIfNotEmpty(&c.Postgres.User, o.User)
	setIfNotEmpty(&c.Postgres.Password, o.Password)
}

func setIfNotEmpty(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}
