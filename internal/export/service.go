// Package export produces CSV and XLSX downloads of the stored inventory.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gakkiten/inventory-tracker/internal/repository"
)

// Service is a tiny façade over the inventory repository that serializes
// items into download formats.
type Service struct {
	repo   repository.InventoryRepository
	logger *slog.Logger
}

func NewService(repo repository.InventoryRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

var exportHeaders = []string{
	"登録日",
	"カテゴリ",
	"商品名",
	"メーカー",
	"型番",
	"色",
	"状態",
	"販売価格",
	"仕入先",
	"定価",
	"卸価格",
	"掛け率",
	"粗利",
	"シリアル番号",
	"仕入日",
	"備考",
}

func itemRow(it repository.InventoryItem) []string {
	r := it.Record
	return []string{
		it.CreatedAt.Format("2006-01-02"),
		r.Category,
		r.ProductName,
		r.Manufacturer,
		r.ModelNumber,
		r.Color,
		r.Condition,
		r.Price,
		r.Supplier,
		r.ListPrice,
		r.WholesalePrice,
		r.WholesaleRate,
		r.GrossMargin,
		r.SerialNumber,
		r.PurchaseDate,
		r.Notes,
	}
}

// ExportCSV returns the newest items as UTF-8 CSV with a BOM so spreadsheet
// tools pick up the Japanese headers correctly.
func (s *Service) ExportCSV(ctx context.Context, limit int) ([]byte, error) {
	items, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := w.Write(itemRow(it)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.logger.Info("export.csv", "items", len(items), "bytes", buf.Len())
	return buf.Bytes(), nil
}

// ExportXLSX returns the newest items as an XLSX workbook.
func (s *Service) ExportXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()
	items, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "在庫一覧"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet excelize creates
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for rowIdx, it := range items {
		for colIdx, v := range itemRow(it) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.xlsx",
		"items", len(items),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
