// Package cache implementa la caché de KPIs del dashboard (Redis o no-op).
package cache

import (
	"context"
	"time"

	"github.com/jhoicas/pos-inventario-api/internal/application/analytics"
	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
)

var _ analytics.KPICache = NoopKPICache{}

// NoopKPICache nunca guarda nada; se usa cuando REDIS_ADDR está vacío o Redis no responde.
type NoopKPICache struct{}

func (NoopKPICache) GetKPIs(_ context.Context, _ string) (*dto.DashboardKPIsDTO, bool, error) {
	return nil, false, nil
}

func (NoopKPICache) SetKPIs(_ context.Context, _ string, _ *dto.DashboardKPIsDTO, _ time.Duration) error {
	return nil
}

func (NoopKPICache) DeleteKPIs(_ context.Context, _ string) error { return nil }
