package db

import (
	"context"
	"fmt"
)

// Index names referenced when translating unique violations.
const (
	BarcodeValueIndex   = "codigo_barras_valor_activo_uq"
	ProductBarcodeIndex = "producto_codigo_barras_activo_uq"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS codigo_barras (
		id               BIGSERIAL PRIMARY KEY,
		tipo             VARCHAR(10)  NOT NULL CHECK (tipo IN ('EAN13', 'EAN8', 'UPC')),
		valor            VARCHAR(20)  NOT NULL,
		fecha_asignacion DATE         NOT NULL,
		observaciones    VARCHAR(255),
		eliminado        BOOLEAN      NOT NULL DEFAULT FALSE
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + BarcodeValueIndex + `
		ON codigo_barras (valor) WHERE eliminado = FALSE`,
	`CREATE TABLE IF NOT EXISTS producto (
		id               BIGSERIAL PRIMARY KEY,
		nombre           VARCHAR(120)   NOT NULL,
		marca            VARCHAR(80),
		categoria        VARCHAR(40),
		precio           NUMERIC(10, 2) NOT NULL CHECK (precio >= 0),
		peso             NUMERIC(10, 3) NOT NULL DEFAULT 0 CHECK (peso >= 0),
		stock            INTEGER        NOT NULL DEFAULT 0 CHECK (stock >= 0),
		codigo_barras_id BIGINT REFERENCES codigo_barras (id),
		eliminado        BOOLEAN        NOT NULL DEFAULT FALSE
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + ProductBarcodeIndex + `
		ON producto (codigo_barras_id) WHERE eliminado = FALSE AND codigo_barras_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS producto_nombre_idx ON producto (nombre)`,
}

// Migrate creates the catalog tables and indexes when missing.
func Migrate(ctx context.Context, conn DBTX) error {
	for i, stmt := range schema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("platform/db: migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
