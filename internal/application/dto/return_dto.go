package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnItemRequest línea de devolución.
type ReturnItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Condition string          `json:"condition"` // good | damaged | defective
}

// CreateReturnRequest body para POST /api/returns.
type CreateReturnRequest struct {
	Items          []ReturnItemRequest `json:"items"`
	OriginalSaleID *string             `json:"original_sale_id"`
	RefundMethod   string              `json:"refund_method"`
	Reason         string              `json:"reason"`
}

// UpdateReturnStatusRequest body para PUT /api/returns/:id/status.
type UpdateReturnStatusRequest struct {
	Status string `json:"status"`
}

// ReturnItemResponse línea de devolución en la respuesta.
type ReturnItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Condition   string          `json:"condition"`
}

// ReturnResponse salida de una devolución.
type ReturnResponse struct {
	ID             string               `json:"id"`
	ReturnNumber   string               `json:"return_number"`
	OriginalSaleID *string              `json:"original_sale_id"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	RefundMethod   string               `json:"refund_method"`
	Reason         string               `json:"reason"`
	Status         string               `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
	ProcessedAt    *time.Time           `json:"processed_at"`
	Items          []ReturnItemResponse `json:"items"`
}

// ReturnListResponse lista paginada de devoluciones.
type ReturnListResponse struct {
	Items []ReturnResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
