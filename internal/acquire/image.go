package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gakkiten/inventory-tracker/constants"
)

// extractImage runs a single multi-language OCR pass over the image bytes.
// No retry: a low-quality photo fails fast with ErrNoText so the operator
// can re-shoot instead of waiting on repeated passes.
func (e *Extractor) extractImage(ctx context.Context, data []byte) (Result, error) {
	res := Result{
		SourceType: constants.IMAGE,
		Method:     "image-ocr",
		Language:   e.cfg.TesseractLang,
		Pages:      1,
	}

	tmpDir, err := os.MkdirTemp("", "inv-ocr-*")
	if err != nil {
		return res, fmt.Errorf("temp dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("acquire.image.tmp_cleanup_failed", "error", rmErr)
		}
	}()

	in := filepath.Join(tmpDir, "scan.png")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return res, fmt.Errorf("write temp image: %w", err)
	}

	args := []string{in, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		res.Warnings = append(res.Warnings, string(errb))
		return res, fmt.Errorf("tesseract: %w", err)
	}

	res.Text = Normalize(string(out))
	if len(res.Text) < MinImageTextLen {
		e.logger.Warn("acquire.image.no_text", "text_len", len(res.Text))
		return res, ErrNoText
	}

	e.logger.Info("acquire.image.ok", "text_len", len(res.Text), "lang", res.Language)
	return res, nil
}
