package inventory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos manuales (entrada, salida o ajuste)
// en su propia transacción y expone el historial del ledger.
type RegisterMovementUseCase struct {
	txRunner     TxRunner
	engine       *Engine
	movementRepo repository.StockMovementRepository
	productRepo  repository.ProductRepository
	log          zerolog.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	engine *Engine,
	movementRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	log zerolog.Logger,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner:     txRunner,
		engine:       engine,
		movementRepo: movementRepo,
		productRepo:  productRepo,
		log:          log,
	}
}

// RegisterMovement inicia una transacción, aplica el movimiento con el Engine y hace Commit o Rollback.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, in dto.RegisterMovementRequest) (*dto.StockMovementResponse, error) {
	if in.ProductID == "" {
		return nil, domain.Invalid("product_id es requerido")
	}
	if in.Quantity < 0 {
		return nil, domain.Invalid("quantity no puede ser negativa")
	}
	switch in.MovementType {
	case entity.MovementTypeIn, entity.MovementTypeOut, entity.MovementTypeAdjustment:
	default:
		return nil, domain.Invalid("movement_type inválido: %q", in.MovementType)
	}

	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		_, mov, err = uc.engine.ApplyMovement(ctx, repos, MovementInput{
			ProductID: in.ProductID,
			Type:      in.MovementType,
			Quantity:  in.Quantity,
			Notes:     in.Notes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("product_id", mov.ProductID).
		Str("type", mov.MovementType).
		Int("previous", mov.PreviousStock).
		Int("new", mov.NewStock).
		Msg("movimiento de stock registrado")
	return ToMovementResponse(mov), nil
}

// ProductHistory devuelve los movimientos del producto en orden cronológico.
func (uc *RegisterMovementUseCase) ProductHistory(ctx context.Context, productID string, page dto.PageRequest) ([]dto.StockMovementResponse, error) {
	page.DefaultPage()
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("product", productID)
	}
	list, err := uc.movementRepo.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(list), nil
}

// List devuelve movimientos recientes con filtros opcionales de producto y tipo.
func (uc *RegisterMovementUseCase) List(ctx context.Context, productID, movementType string, page dto.PageRequest) ([]dto.StockMovementResponse, error) {
	page.DefaultPage()
	list, err := uc.movementRepo.List(ctx, repository.MovementFilter{
		ProductID:    productID,
		MovementType: movementType,
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		return nil, err
	}
	return toMovementResponses(list), nil
}

// ToMovementResponse convierte la entidad al DTO de salida.
func ToMovementResponse(m *entity.StockMovement) *dto.StockMovementResponse {
	return &dto.StockMovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		ProductName:   m.ProductName,
		MovementType:  m.MovementType,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		ReferenceID:   m.ReferenceID,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
	}
}

func toMovementResponses(list []*entity.StockMovement) []dto.StockMovementResponse {
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, *ToMovementResponse(m))
	}
	return out
}
