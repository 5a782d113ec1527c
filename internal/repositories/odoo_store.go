package repositories

import (
	"context"
	"errors"
	"fmt"

	"odoo-leads/internal/integrations/odoo"
	apperrors "odoo-leads/pkg/errors"
)

// ValueFilter отбрасывает поля, которых нет в схеме модели.
type ValueFilter interface {
	Filter(ctx context.Context, model string, values odoo.Values) (odoo.Values, error)
}

// odooStore - общая часть репозиториев поверх Odoo.
// Все create/write проходят через фильтр схемы.
type odooStore struct {
	exec   odoo.Executor
	filter ValueFilter
}

func (s odooStore) create(ctx context.Context, model string, values odoo.Values) (int64, error) {
	filtered, err := s.filter.Filter(ctx, model, values)
	if err != nil {
		return 0, err
	}
	if len(filtered) == 0 {
		return 0, fmt.Errorf("%s: %w", model, apperrors.ErrEmptyValues)
	}
	return s.exec.Create(ctx, model, filtered)
}

func (s odooStore) write(ctx context.Context, model string, id int64, values odoo.Values) error {
	filtered, err := s.filter.Filter(ctx, model, values)
	if err != nil {
		return err
	}
	if len(filtered) == 0 {
		return fmt.Errorf("%s: %w", model, apperrors.ErrEmptyValues)
	}
	return s.exec.Write(ctx, model, []int64{id}, filtered)
}

// first возвращает первую запись по домену или ErrNotFound.
func (s odooStore) first(ctx context.Context, model string, domain odoo.Domain, fields []string) (odoo.Record, error) {
	records, err := s.exec.SearchRead(ctx, model, domain, fields, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return records[0], nil
}

func (s odooStore) readOne(ctx context.Context, model string, id int64, fields []string) (odoo.Record, error) {
	records, err := s.exec.Read(ctx, model, []int64{id}, fields)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return records[0], nil
}

// call выполняет метод-действие; ответ None от сервера не считается ошибкой.
func (s odooStore) call(ctx context.Context, model, method string, ids []int64) error {
	_, err := s.exec.Call(ctx, model, method, ids)
	if err != nil && !odoo.IsNoneFault(err) {
		return err
	}
	return nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}
