// Файл: internal/crm/schema.go
package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"odoo-leads/internal/integrations/odoo"
	"odoo-leads/internal/repositories"
)

const schemaTTL = time.Hour

// SchemaGuard проверяет значения по реальной схеме модели перед create/write.
// Поля неизвестные серверу выбрасываются, а не приводят к ошибке всей записи.
type SchemaGuard struct {
	exec   odoo.Executor
	cache  repositories.CacheRepositoryInterface
	logger *zap.Logger

	mu      sync.Mutex
	local   map[string]map[string]struct{}
	dropped map[string]struct{}
}

func NewSchemaGuard(exec odoo.Executor, cache repositories.CacheRepositoryInterface, logger *zap.Logger) *SchemaGuard {
	return &SchemaGuard{
		exec:    exec,
		cache:   cache,
		logger:  logger.Named("schema"),
		local:   make(map[string]map[string]struct{}),
		dropped: make(map[string]struct{}),
	}
}

func cacheKey(model string) string { return "odoo:fields:" + model }

// FieldsOf возвращает множество полей модели. Порядок поиска: память, кеш, fields_get.
func (g *SchemaGuard) FieldsOf(ctx context.Context, model string) (map[string]struct{}, error) {
	g.mu.Lock()
	if fields, ok := g.local[model]; ok {
		g.mu.Unlock()
		return fields, nil
	}
	g.mu.Unlock()

	var names []string
	if g.cache != nil {
		raw, err := g.cache.Get(ctx, cacheKey(model))
		switch {
		case err == nil:
			if jsonErr := json.Unmarshal([]byte(raw), &names); jsonErr != nil {
				g.logger.Warn("Повреждённая схема в кеше", zap.String("model", model), zap.Error(jsonErr))
				names = nil
			}
		case !errors.Is(err, repositories.ErrCacheMiss):
			g.logger.Warn("Кеш схемы недоступен", zap.String("model", model), zap.Error(err))
		}
	}

	if names == nil {
		fetched, err := g.exec.FieldsGet(ctx, model)
		if err != nil {
			return nil, fmt.Errorf("не удалось получить поля модели %s: %w", model, err)
		}
		names = fetched
		if names == nil {
			names = []string{}
		}
		if g.cache != nil {
			raw, _ := json.Marshal(names)
			if err := g.cache.Set(ctx, cacheKey(model), string(raw), schemaTTL); err != nil {
				g.logger.Warn("Не удалось сохранить схему в кеш", zap.String("model", model), zap.Error(err))
			}
		}
	}

	fields := make(map[string]struct{}, len(names))
	for _, name := range names {
		fields[name] = struct{}{}
	}

	g.mu.Lock()
	g.local[model] = fields
	g.mu.Unlock()
	return fields, nil
}

// Has - есть ли поле у модели.
func (g *SchemaGuard) Has(ctx context.Context, model, field string) (bool, error) {
	fields, err := g.FieldsOf(ctx, model)
	if err != nil {
		return false, err
	}
	_, ok := fields[field]
	return ok, nil
}

// Filter возвращает копию values без полей, которых нет в схеме модели.
func (g *SchemaGuard) Filter(ctx context.Context, model string, values odoo.Values) (odoo.Values, error) {
	fields, err := g.FieldsOf(ctx, model)
	if err != nil {
		return nil, err
	}
	out := make(odoo.Values, len(values))
	for key, val := range values {
		if _, ok := fields[key]; ok {
			out[key] = val
			continue
		}
		g.noteDropped(model, key)
	}
	return out, nil
}

func (g *SchemaGuard) noteDropped(model, field string) {
	key := model + "." + field
	g.mu.Lock()
	_, seen := g.dropped[key]
	g.dropped[key] = struct{}{}
	g.mu.Unlock()
	if !seen {
		g.logger.Debug("Поле отсутствует в схеме, пропускаем", zap.String("model", model), zap.String("field", field))
	}
}
