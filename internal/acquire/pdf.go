package acquire

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/gakkiten/inventory-tracker/constants"
)

// extractPDF reads the text layer across all pages. Corrupt or encrypted
// files surface as ErrUnreadable; a near-empty text layer (image-only scan)
// surfaces as ErrInsufficientText.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (res Result, err error) {
	res.SourceType = constants.PDF
	res.Method = "pdf-text"

	// The reader panics on some malformed inputs; a broken upload must
	// come back as a typed error, not take the process down.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("acquire.pdf.panic", "panic", fmt.Sprint(r))
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Error("acquire.pdf.open_failed", "error", err)
		return res, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, perr := page.GetPlainText(nil)
		if perr != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i, perr))
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	res.Pages = numPages
	res.Text = strings.TrimSpace(sb.String())

	if len(res.Text) < MinPDFTextLen {
		e.logger.Warn("acquire.pdf.insufficient_text",
			"pages", numPages, "text_len", len(res.Text))
		return res, ErrInsufficientText
	}

	e.logger.Info("acquire.pdf.ok", "pages", numPages, "text_len", len(res.Text))
	return res, nil
}
