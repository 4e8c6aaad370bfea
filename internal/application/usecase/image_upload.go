package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
)

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// ImageUploadUseCase guarda imágenes de producto en el directorio de uploads
// con un nombre UUID; se sirven estáticas bajo /uploads.
type ImageUploadUseCase struct {
	dir      string
	maxBytes int64
}

// NewImageUploadUseCase construye el caso de uso. maxBytes <= 0 usa 5 MB.
func NewImageUploadUseCase(dir string, maxBytes int64) *ImageUploadUseCase {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &ImageUploadUseCase{dir: dir, maxBytes: maxBytes}
}

// Save valida extensión y tamaño y copia el contenido a disco.
func (uc *ImageUploadUseCase) Save(_ context.Context, originalName string, size int64, r io.Reader) (*dto.UploadImageResponse, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedImageExt[ext] {
		return nil, domain.Invalid("tipo de archivo no permitido %q (jpg, jpeg, png, gif, webp)", ext)
	}
	if size > uc.maxBytes {
		return nil, domain.Invalid("el archivo supera el máximo de %d bytes", uc.maxBytes)
	}
	if err := os.MkdirAll(uc.dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: crear directorio: %w", err)
	}

	name := uuid.New().String() + ext
	f, err := os.Create(filepath.Join(uc.dir, name))
	if err != nil {
		return nil, fmt.Errorf("upload: crear archivo: %w", err)
	}
	defer f.Close()

	// Se lee uno más del máximo para detectar tamaños declarados incorrectamente.
	written, err := io.Copy(f, io.LimitReader(r, uc.maxBytes+1))
	if err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("upload: escribir archivo: %w", err)
	}
	if written > uc.maxBytes {
		_ = os.Remove(f.Name())
		return nil, domain.Invalid("el archivo supera el máximo de %d bytes", uc.maxBytes)
	}
	return &dto.UploadImageResponse{Filename: name, URL: "/uploads/" + name, Size: written}, nil
}
