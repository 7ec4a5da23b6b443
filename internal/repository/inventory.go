package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gakkiten/inventory-tracker/internal/record"
)

// InventoryItem is a stored product record plus its persistence identity.
type InventoryItem struct {
	ID        uuid.UUID            `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Record    record.ProductRecord `json:"record"`
}

// InventoryRepository persists extracted product records.
type InventoryRepository interface {
	// InsertRecords stores the records as a single batch and returns the
	// stored rows in insertion order.
	InsertRecords(ctx context.Context, records []record.ProductRecord) ([]InventoryItem, error)
	// List returns the most recent items, newest first, up to limit.
	List(ctx context.Context, limit int) ([]InventoryItem, error)
}

type inventoryRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewInventoryRepository(pool *pgxpool.Pool, logger *slog.Logger) InventoryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &inventoryRepository{pool: pool, log: logger}
}

const createInventoryTable = `
CREATE TABLE IF NOT EXISTS inventory_items (
	id              UUID PRIMARY KEY,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	category        TEXT NOT NULL,
	product_name    TEXT NOT NULL,
	manufacturer    TEXT NOT NULL DEFAULT '',
	model_number    TEXT NOT NULL DEFAULT '',
	color           TEXT NOT NULL DEFAULT '',
	condition       TEXT NOT NULL DEFAULT '',
	price           TEXT NOT NULL DEFAULT '',
	supplier        TEXT NOT NULL DEFAULT '',
	list_price      TEXT NOT NULL DEFAULT '',
	wholesale_price TEXT NOT NULL DEFAULT '',
	wholesale_rate  TEXT NOT NULL DEFAULT '',
	gross_margin    TEXT NOT NULL DEFAULT '',
	serial_number   TEXT NOT NULL DEFAULT '',
	purchase_date   TEXT NOT NULL DEFAULT '',
	notes           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_inventory_items_created_at ON inventory_items (created_at DESC);
`

// Migrate creates the inventory table when it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, createInventoryTable); err != nil {
		return fmt.Errorf("migrate inventory_items: %w", err)
	}
	return nil
}

const insertItemSQL = `
INSERT INTO inventory_items (
	id, created_at, category, product_name, manufacturer, model_number,
	color, condition, price, supplier, list_price, wholesale_price,
	wholesale_rate, gross_margin, serial_number, purchase_date, notes
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

func (r *inventoryRepository) InsertRecords(ctx context.Context, records []record.ProductRecord) ([]InventoryItem, error) {
	if len(records) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	items := make([]InventoryItem, 0, len(records))
	batch := &pgx.Batch{}
	for _, rec := range records {
		item := InventoryItem{ID: uuid.New(), CreatedAt: now, Record: rec}
		items = append(items, item)
		batch.Queue(insertItemSQL,
			item.ID, item.CreatedAt,
			rec.Category, rec.ProductName, rec.Manufacturer, rec.ModelNumber,
			rec.Color, rec.Condition, rec.Price, rec.Supplier, rec.ListPrice,
			rec.WholesalePrice, rec.WholesaleRate, rec.GrossMargin,
			rec.SerialNumber, rec.PurchaseDate, rec.Notes,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer func() {
		if cerr := br.Close(); cerr != nil {
			r.log.Error("inventory batch close error", "error", cerr)
		}
	}()
	for range records {
		if _, err := br.Exec(); err != nil {
			return nil, fmt.Errorf("insert inventory item: %w", err)
		}
	}

	r.log.Info("inventory.insert", "count", len(items))
	return items, nil
}

const listItemsSQL = `
SELECT id, created_at, category, product_name, manufacturer, model_number,
	color, condition, price, supplier, list_price, wholesale_price,
	wholesale_rate, gross_margin, serial_number, purchase_date, notes
FROM inventory_items
ORDER BY created_at DESC, id
LIMIT $1`

func (r *inventoryRepository) List(ctx context.Context, limit int) ([]InventoryItem, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, listItemsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	var items []InventoryItem
	for rows.Next() {
		var it InventoryItem
		rec := &it.Record
		if err := rows.Scan(
			&it.ID, &it.CreatedAt,
			&rec.Category, &rec.ProductName, &rec.Manufacturer, &rec.ModelNumber,
			&rec.Color, &rec.Condition, &rec.Price, &rec.Supplier, &rec.ListPrice,
			&rec.WholesalePrice, &rec.WholesaleRate, &rec.GrossMargin,
			&rec.SerialNumber, &rec.PurchaseDate, &rec.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
