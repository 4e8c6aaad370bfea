package analytics

import (
	"context"
	"time"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
)

// KPICache caché de corta duración para los KPIs del dashboard.
// Get devuelve (nil, false, nil) cuando la clave no existe.
type KPICache interface {
	GetKPIs(ctx context.Context, key string) (*dto.DashboardKPIsDTO, bool, error)
	SetKPIs(ctx context.Context, key string, value *dto.DashboardKPIsDTO, ttl time.Duration) error
	// DeleteKPIs borra todas las claves que empiezan con prefix.
	DeleteKPIs(ctx context.Context, prefix string) error
}

// ReportRenderer convierte un ReportTable al formato de archivo que implementa.
type ReportRenderer interface {
	Render(table *dto.ReportTable) ([]byte, error)
	ContentType() string
	Extension() string
}

// CompanyInfoProvider datos de empresa y moneda configurados en settings.
type CompanyInfoProvider interface {
	CompanyInfo(ctx context.Context) (dto.CompanyInfo, error)
}
