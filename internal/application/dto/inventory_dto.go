package dto

import "time"

// RegisterMovementRequest body para POST /api/inventory/movements.
// Para "adjustment" Quantity es el stock final, no una diferencia.
type RegisterMovementRequest struct {
	ProductID    string `json:"product_id"`
	MovementType string `json:"movement_type"`
	Quantity     int    `json:"quantity"`
	Notes        string `json:"notes"`
}

// StockMovementResponse salida de un movimiento del ledger.
type StockMovementResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name,omitempty"`
	MovementType  string    `json:"movement_type"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	ReferenceID   *string   `json:"reference_id"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}
