package memory

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
)

const snapshotEntry = "snapshot.json"

type snapshot struct {
	Products   []entity.Product       `json:"products"`
	Categories []entity.Category      `json:"categories"`
	Movements  []entity.StockMovement `json:"stock_movements"`
	Sales      []entity.Sale          `json:"sales"`
	Returns    []entity.Return        `json:"returns"`
	Settings   []entity.Setting       `json:"settings"`
	Users      []entity.User          `json:"users"`
}

// Dump serializa el estado confirmado como un zip con un único snapshot.json.
func (s *Store) Dump(_ context.Context) ([]byte, error) {
	var snap snapshot
	_ = s.with(nil, func(st *state) error {
		for _, v := range st.products {
			snap.Products = append(snap.Products, v)
		}
		for _, v := range st.categories {
			snap.Categories = append(snap.Categories, v)
		}
		snap.Movements = append(snap.Movements, st.movements...)
		for _, v := range st.sales {
			snap.Sales = append(snap.Sales, v)
		}
		for _, v := range st.returns {
			snap.Returns = append(snap.Returns, v)
		}
		for _, v := range st.settings {
			snap.Settings = append(snap.Settings, v)
		}
		for _, v := range st.users {
			snap.Users = append(snap.Users, v)
		}
		return nil
	})

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(snapshotEntry)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		return nil, fmt.Errorf("snapshot: codificar: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore reemplaza todo el estado por el del snapshot.
func (s *Store) Restore(_ context.Context, data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.Invalid("backup ilegible: %v", err)
	}
	var snap *snapshot
	for _, f := range zr.File {
		if f.Name != snapshotEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		snap = &snapshot{}
		if err := json.Unmarshal(raw, snap); err != nil {
			return domain.Invalid("backup ilegible: %v", err)
		}
	}
	if snap == nil {
		return domain.Invalid("backup sin %s", snapshotEntry)
	}

	next := newState()
	for _, v := range snap.Products {
		next.products[v.ID] = v
	}
	for _, v := range snap.Categories {
		next.categories[v.ID] = v
	}
	next.movements = snap.Movements
	for _, v := range snap.Sales {
		next.sales[v.ID] = v
	}
	for _, v := range snap.Returns {
		next.returns[v.ID] = v
	}
	for _, v := range snap.Settings {
		next.settings[v.Key] = v
	}
	for _, v := range snap.Users {
		next.users[v.ID] = v
	}

	s.mu.Lock()
	s.data = next
	s.mu.Unlock()
	return nil
}
