package integrations

import (
	"context"

	"odoo-leads/internal/dto"
)

// Probe - одна проверка окружения: Odoo, модуль, платёжный провайдер, внешний сервис.
type Probe interface {
	Name() string
	Check(ctx context.Context) dto.CheckResultDTO
}

type probeFunc struct {
	name string
	fn   func(ctx context.Context) (dto.CheckStatus, string)
}

// NewProbe оборачивает функцию в Probe.
func NewProbe(name string, fn func(ctx context.Context) (dto.CheckStatus, string)) Probe {
	return &probeFunc{name: name, fn: fn}
}

func (p *probeFunc) Name() string { return p.name }

func (p *probeFunc) Check(ctx context.Context) dto.CheckResultDTO {
	status, message := p.fn(ctx)
	return dto.CheckResultDTO{Name: p.name, Status: status, Message: message}
}
