package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jhoicas/pos-inventario-api/internal/application/analytics"
	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
)

var _ analytics.ReportRenderer = CSVRenderer{}

// utf8BOM permite que Excel detecte la codificación al abrir el CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVRenderer escribe encabezados y filas en CSV UTF-8 con BOM y fin de línea CRLF.
type CSVRenderer struct{}

func (CSVRenderer) ContentType() string { return "text/csv" }
func (CSVRenderer) Extension() string   { return "csv" }

func (CSVRenderer) Render(table *dto.ReportTable) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(table.Headers); err != nil {
		return nil, fmt.Errorf("csv: encabezados: %w", err)
	}
	record := make([]string, len(table.Headers))
	for _, row := range table.Rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, cellText(v))
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("csv: fila: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	return buf.Bytes(), nil
}
