package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

const returnSelect = `
	SELECT id, return_number, original_sale_id::text, total_amount, refund_method, reason, status, created_at, processed_at
	FROM returns`

// ReturnRepo implementación de ReturnRepository sobre PostgreSQL (usable con pool o tx).
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

func scanReturn(row pgx.Row) (*entity.Return, error) {
	var ret entity.Return
	err := row.Scan(&ret.ID, &ret.ReturnNumber, &ret.OriginalSaleID, &ret.TotalAmount, &ret.RefundMethod,
		&ret.Reason, &ret.Status, &ret.CreatedAt, &ret.ProcessedAt)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *ReturnRepo) Create(ctx context.Context, ret *entity.Return) error {
	query := `
		INSERT INTO returns (id, return_number, original_sale_id, total_amount, refund_method, reason, status, created_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		ret.ID, ret.ReturnNumber, ret.OriginalSaleID, ret.TotalAmount, ret.RefundMethod,
		ret.Reason, ret.Status, ret.CreatedAt, ret.ProcessedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Duplicate("return", "return_number", ret.ReturnNumber)
		}
		return fmt.Errorf("insert return: %w", err)
	}
	return nil
}

func (r *ReturnRepo) CreateItem(ctx context.Context, it *entity.ReturnItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO return_items (id, return_id, product_id, quantity, unit_price, total_price, condition)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		it.ID, it.ReturnID, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice, it.Condition,
	)
	if err != nil {
		return fmt.Errorf("insert return item: %w", err)
	}
	return nil
}

func (r *ReturnRepo) get(ctx context.Context, id, suffix string) (*entity.Return, error) {
	ret, err := scanReturn(r.q.QueryRow(ctx, returnSelect+` WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get return: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Return{ret}); err != nil {
		return nil, err
	}
	return ret, nil
}

// GetByID obtiene la devolución con sus ítems.
func (r *ReturnRepo) GetByID(ctx context.Context, id string) (*entity.Return, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate igual que GetByID pero bloquea la fila: dos aprobaciones concurrentes se serializan.
func (r *ReturnRepo) GetForUpdate(ctx context.Context, id string) (*entity.Return, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *ReturnRepo) loadItems(ctx context.Context, list []*entity.Return) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	byID := make(map[string]*entity.Return, len(list))
	for i, ret := range list {
		ids[i] = ret.ID
		byID[ret.ID] = ret
	}
	rows, err := r.q.Query(ctx, `
		SELECT ri.id, ri.return_id, ri.product_id, p.name, ri.quantity, ri.unit_price, ri.total_price, ri.condition
		FROM return_items ri JOIN products p ON p.id = ri.product_id
		WHERE ri.return_id = ANY($1::uuid[])
		ORDER BY ri.return_id, p.name`, ids)
	if err != nil {
		return fmt.Errorf("list return items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.ReturnItem
		if err := rows.Scan(&it.ID, &it.ReturnID, &it.ProductID, &it.ProductName, &it.Quantity,
			&it.UnitPrice, &it.TotalPrice, &it.Condition); err != nil {
			return fmt.Errorf("scan return item: %w", err)
		}
		ret := byID[it.ReturnID]
		ret.Items = append(ret.Items, it)
	}
	return rows.Err()
}

// List devoluciones más recientes primero, opcionalmente filtradas por estado.
func (r *ReturnRepo) List(ctx context.Context, f repository.ReturnFilter) ([]*entity.Return, int, error) {
	where := ""
	var args []any
	if f.Status != "" {
		where = " WHERE status = $1"
		args = append(args, f.Status)
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM returns`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count returns: %w", err)
	}
	args = append(args, f.Limit, f.Offset)
	query := returnSelect + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()
	var list []*entity.Return
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan return: %w", err)
		}
		list = append(list, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()
	if err := r.loadItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *ReturnRepo) UpdateStatus(ctx context.Context, id, status string, processedAt *time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE returns SET status = $2, processed_at = $3 WHERE id = $1`, id, status, processedAt)
	if err != nil {
		return fmt.Errorf("update return status: %w", err)
	}
	return nil
}

func (r *ReturnRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM returns WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete return: %w", err)
	}
	return nil
}
