package postgres

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// snapshotTables en orden de dependencias (padres primero) para que la carga respete las FK.
var snapshotTables = []string{
	"categories",
	"products",
	"stock_movements",
	"sales",
	"sales_items",
	"returns",
	"return_items",
	"settings",
	"users",
}

const resetMovementSeq = `
	SELECT setval(pg_get_serial_sequence('stock_movements', 'seq'), COALESCE(MAX(seq), 0) + 1, false)
	FROM stock_movements`

// Snapshotter vuelca y restaura la base completa como un zip con un CSV por tabla.
type Snapshotter struct {
	pool *pgxpool.Pool
}

// NewSnapshotter construye el snapshotter sobre el pool.
func NewSnapshotter(pool *pgxpool.Pool) *Snapshotter {
	return &Snapshotter{pool: pool}
}

// Dump exporta todas las tablas con COPY TO dentro de una tx de solo lectura
// REPEATABLE READ, así el snapshot es consistente.
func (s *Snapshotter) Dump(ctx context.Context) ([]byte, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("snapshot.Dump: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, table := range snapshotTables {
		w, err := zw.Create(table + ".csv")
		if err != nil {
			return nil, fmt.Errorf("snapshot.Dump: %s: %w", table, err)
		}
		sql := fmt.Sprintf("COPY %s TO STDOUT WITH (FORMAT csv, HEADER true)", table)
		if _, err := tx.Conn().PgConn().CopyTo(ctx, w, sql); err != nil {
			return nil, fmt.Errorf("snapshot.Dump: copy %s: %w", table, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("snapshot.Dump: zip: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore vacía todas las tablas y las recarga desde el zip en una sola transacción.
// Tablas ausentes en el archivo quedan vacías.
func (s *Snapshotter) Restore(ctx context.Context, data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("snapshot.Restore: zip inválido: %w", err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[strings.TrimSuffix(f.Name, ".csv")] = f
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot.Restore: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "TRUNCATE "+strings.Join(snapshotTables, ", ")+" CASCADE"); err != nil {
		return fmt.Errorf("snapshot.Restore: truncate: %w", err)
	}
	for _, table := range snapshotTables {
		f, ok := files[table]
		if !ok {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("snapshot.Restore: %s: %w", table, err)
		}
		err = copyTable(ctx, tx, table, rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("snapshot.Restore: copy %s: %w", table, err)
		}
	}
	// COPY carga seq tal cual; la secuencia debe seguir después del máximo restaurado.
	if _, err := tx.Exec(ctx, resetMovementSeq); err != nil {
		return fmt.Errorf("snapshot.Restore: secuencia: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("snapshot.Restore: commit: %w", err)
	}
	return nil
}

// copyTable carga un CSV nombrando las columnas de su cabecera, así un respaldo
// anterior a una columna nueva (p. ej. stock_movements.seq) se sigue pudiendo
// restaurar y la columna toma su DEFAULT.
func copyTable(ctx context.Context, tx pgx.Tx, table string, r io.Reader) error {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	cols := copyColumns(header)
	if len(cols) == 0 {
		return nil
	}
	sql := fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (FORMAT csv, HEADER true)",
		pgx.Identifier{table}.Sanitize(), strings.Join(cols, ", "))
	_, err = tx.Conn().PgConn().CopyFrom(ctx, io.MultiReader(strings.NewReader(header), br), sql)
	return err
}

// copyColumns identificadores saneados de la cabecera CSV que escribe COPY TO.
func copyColumns(header string) []string {
	header = strings.TrimRight(header, "\r\n")
	if header == "" {
		return nil
	}
	var cols []string
	for _, c := range strings.Split(header, ",") {
		cols = append(cols, pgx.Identifier{strings.Trim(c, `"`)}.Sanitize())
	}
	return cols
}
