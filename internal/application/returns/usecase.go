// Package returns contiene el flujo de devoluciones: registro (sin efecto en
// stock) y cambio de estado, donde la aprobación reingresa los ítems en buen estado.
package returns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/application/inventory"
	"github.com/jhoicas/pos-inventario-api/internal/application/sales"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

// UseCase orquesta devoluciones sobre el motor de ledger.
type UseCase struct {
	txRunner   inventory.TxRunner
	engine     *inventory.Engine
	returnRepo repository.ReturnRepository
	saleRepo   repository.SaleRepository
	kpis       inventory.KPIInvalidator
	log        zerolog.Logger
	loc        *time.Location
	now        func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner inventory.TxRunner,
	engine *inventory.Engine,
	returnRepo repository.ReturnRepository,
	saleRepo repository.SaleRepository,
	log zerolog.Logger,
	loc *time.Location,
) *UseCase {
	if loc == nil {
		loc = time.Local
	}
	return &UseCase{
		txRunner:   txRunner,
		engine:     engine,
		returnRepo: returnRepo,
		saleRepo:   saleRepo,
		log:        log,
		loc:        loc,
		now:        time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *UseCase) SetClock(now func() time.Time) { uc.now = now }

// SetKPIInvalidator registra quién descarta los KPIs cacheados; los reembolsos
// restan de los ingresos del tablero.
func (uc *UseCase) SetKPIInvalidator(kpis inventory.KPIInvalidator) { uc.kpis = kpis }

func (uc *UseCase) invalidateKPIs(ctx context.Context) {
	if uc.kpis != nil {
		uc.kpis.InvalidateKPIs(ctx)
	}
}

// CreateReturn registra la devolución en estado pending. No mueve stock.
func (uc *UseCase) CreateReturn(ctx context.Context, in dto.CreateReturnRequest) (*dto.ReturnResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.Invalid("la devolución debe tener al menos un ítem")
	}
	for i := range in.Items {
		item := &in.Items[i]
		if item.ProductID == "" {
			return nil, domain.Invalid("items[%d]: product_id es requerido", i)
		}
		if item.Quantity <= 0 {
			return nil, domain.Invalid("items[%d]: quantity debe ser mayor a 0", i)
		}
		if item.UnitPrice.IsNegative() {
			return nil, domain.Invalid("items[%d]: unit_price no puede ser negativo", i)
		}
		if item.Condition == "" {
			item.Condition = entity.ItemConditionGood
		}
		if !entity.ValidItemCondition(item.Condition) {
			return nil, domain.Invalid("items[%d]: condition inválida %q", i, item.Condition)
		}
	}
	refundMethod := in.RefundMethod
	if refundMethod == "" {
		refundMethod = entity.DefaultPaymentMethod
	}
	originalSaleID := in.OriginalSaleID
	if originalSaleID != nil && *originalSaleID == "" {
		originalSaleID = nil
	}

	now := uc.now().In(uc.loc)
	var ret *entity.Return

	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if originalSaleID != nil {
			sale, err := repos.Sales.GetByID(ctx, *originalSaleID)
			if err != nil {
				return err
			}
			if sale == nil {
				return domain.NotFound("sale", *originalSaleID)
			}
		}

		names := make(map[string]string, len(in.Items))
		total := decimal.Zero
		items := make([]entity.ReturnItem, 0, len(in.Items))
		for _, item := range in.Items {
			if _, ok := names[item.ProductID]; !ok {
				p, err := repos.Products.GetByID(ctx, item.ProductID)
				if err != nil {
					return err
				}
				if p == nil {
					return domain.NotFound("product", item.ProductID)
				}
				names[p.ID] = p.Name
			}
			lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(lineTotal)
			items = append(items, entity.ReturnItem{
				ID:          uuid.New().String(),
				ProductID:   item.ProductID,
				ProductName: names[item.ProductID],
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				TotalPrice:  lineTotal,
				Condition:   item.Condition,
			})
		}

		id := uuid.New().String()
		ret = &entity.Return{
			ID:             id,
			ReturnNumber:   "RET-" + now.Format("20060102") + "-" + strings.ToUpper(uuid.New().String()[:8]),
			OriginalSaleID: originalSaleID,
			TotalAmount:    total,
			RefundMethod:   refundMethod,
			Reason:         in.Reason,
			Status:         entity.ReturnStatusPending,
			CreatedAt:      now,
		}
		if err := repos.Returns.Create(ctx, ret); err != nil {
			return err
		}
		for i := range items {
			items[i].ReturnID = id
			if err := repos.Returns.CreateItem(ctx, &items[i]); err != nil {
				return err
			}
		}
		ret.Items = items
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("returns.CreateReturn: %w", err)
	}
	uc.log.Info().
		Str("return_id", ret.ID).
		Str("return_number", ret.ReturnNumber).
		Str("total_amount", ret.TotalAmount.StringFixed(2)).
		Msg("devolución registrada")
	return ToReturnResponse(ret), nil
}

// SetReturnStatus cambia el estado. Solo pending → approved reingresa stock
// (ítems "good"); aprobar desde otro estado es un conflicto.
func (uc *UseCase) SetReturnStatus(ctx context.Context, returnID, status string) (*dto.ReturnResponse, error) {
	if !entity.ValidReturnStatus(status) {
		return nil, domain.Invalid("status inválido %q", status)
	}

	now := uc.now().In(uc.loc)
	var ret *entity.Return
	restocked := 0

	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		ret, err = repos.Returns.GetForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if ret == nil {
			return domain.NotFound("return", returnID)
		}

		if status == entity.ReturnStatusApproved {
			if ret.Status != entity.ReturnStatusPending {
				return domain.Conflict("return", ret.ID, fmt.Sprintf("no se puede aprobar desde %q", ret.Status))
			}
			for _, item := range ret.Items {
				if item.Condition != entity.ItemConditionGood {
					continue
				}
				if _, _, err := uc.engine.ApplyMovement(ctx, repos, inventory.MovementInput{
					ProductID:   item.ProductID,
					Type:        entity.MovementTypeIn,
					Quantity:    item.Quantity,
					ReferenceID: &ret.ID,
					Notes:       "Return approved: " + ret.ReturnNumber,
				}); err != nil {
					return err
				}
				restocked++
			}
			ret.ProcessedAt = &now
		}

		ret.Status = status
		return repos.Returns.UpdateStatus(ctx, ret.ID, ret.Status, ret.ProcessedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("returns.SetReturnStatus: %w", err)
	}
	uc.log.Info().
		Str("return_id", ret.ID).
		Str("status", ret.Status).
		Int("restocked_items", restocked).
		Msg("estado de devolución actualizado")
	uc.invalidateKPIs(ctx)
	return ToReturnResponse(ret), nil
}

// Get devuelve la devolución con sus ítems.
func (uc *UseCase) Get(ctx context.Context, returnID string) (*dto.ReturnResponse, error) {
	ret, err := uc.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		return nil, fmt.Errorf("returns.Get: %w", err)
	}
	if ret == nil {
		return nil, domain.NotFound("return", returnID)
	}
	return ToReturnResponse(ret), nil
}

// List devoluciones más recientes primero, opcionalmente por estado.
func (uc *UseCase) List(ctx context.Context, status string, page dto.PageRequest) (*dto.ReturnListResponse, error) {
	if status != "" && !entity.ValidReturnStatus(status) {
		return nil, domain.Invalid("status inválido %q", status)
	}
	page.DefaultPage()
	list, total, err := uc.returnRepo.List(ctx, repository.ReturnFilter{Status: status, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, fmt.Errorf("returns.List: %w", err)
	}
	items := make([]dto.ReturnResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *ToReturnResponse(r))
	}
	return &dto.ReturnListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Delete borra la devolución sin tocar el stock.
func (uc *UseCase) Delete(ctx context.Context, returnID string) error {
	ret, err := uc.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		return fmt.Errorf("returns.Delete: %w", err)
	}
	if ret == nil {
		return domain.NotFound("return", returnID)
	}
	if err := uc.returnRepo.Delete(ctx, returnID); err != nil {
		return fmt.Errorf("returns.Delete: %w", err)
	}
	uc.log.Info().Str("return_id", returnID).Msg("devolución eliminada")
	uc.invalidateKPIs(ctx)
	return nil
}

// SaleItemsForReturn devuelve la venta original para precargar una devolución.
func (uc *UseCase) SaleItemsForReturn(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("returns.SaleItemsForReturn: %w", err)
	}
	if sale == nil {
		return nil, domain.NotFound("sale", saleID)
	}
	return sales.ToSaleResponse(sale), nil
}

// ToReturnResponse convierte la entidad al DTO de salida.
func ToReturnResponse(r *entity.Return) *dto.ReturnResponse {
	items := make([]dto.ReturnItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, dto.ReturnItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			Condition:   it.Condition,
		})
	}
	return &dto.ReturnResponse{
		ID:             r.ID,
		ReturnNumber:   r.ReturnNumber,
		OriginalSaleID: r.OriginalSaleID,
		TotalAmount:    r.TotalAmount,
		RefundMethod:   r.RefundMethod,
		Reason:         r.Reason,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
		ProcessedAt:    r.ProcessedAt,
		Items:          items,
	}
}
