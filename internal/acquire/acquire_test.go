package acquire

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gakkiten/inventory-tracker/constants"
)

type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error
}

func (s stubRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, []byte, error) {
	return s.stdout, s.stderr, s.err
}

func TestExtractImage(t *testing.T) {
	t.Run("ocr output is normalized", func(t *testing.T) {
		e := NewExtractorWithRunner(Config{}, stubRunner{
			stdout: []byte("YAMAHA  FG830\r\n\r\n\r\n45,000円\r\n"),
		}, nil)
		res, err := e.Extract(context.Background(), []byte("png-bytes"), constants.IMAGE)
		require.NoError(t, err)
		assert.Equal(t, "YAMAHA FG830\n\n45,000円", res.Text)
		assert.Equal(t, constants.IMAGE, res.SourceType)
		assert.Equal(t, "image-ocr", res.Method)
	})

	t.Run("near-empty output is no text", func(t *testing.T) {
		e := NewExtractorWithRunner(Config{}, stubRunner{stdout: []byte(" a \n")}, nil)
		_, err := e.Extract(context.Background(), []byte("png-bytes"), constants.IMAGE)
		assert.ErrorIs(t, err, ErrNoText)
	})

	t.Run("ocr process failure", func(t *testing.T) {
		e := NewExtractorWithRunner(Config{}, stubRunner{
			stderr: []byte("Error opening data file"),
			err:    errors.New("exit status 1"),
		}, nil)
		res, err := e.Extract(context.Background(), []byte("png-bytes"), constants.IMAGE)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoText)
		assert.Contains(t, res.Warnings, "Error opening data file")
	})
}

func TestExtractPDF(t *testing.T) {
	t.Run("garbage bytes are unreadable", func(t *testing.T) {
		e := NewExtractor(Config{}, nil)
		_, err := e.Extract(context.Background(), []byte("definitely not a pdf"), constants.PDF)
		assert.ErrorIs(t, err, ErrUnreadable)
	})

	t.Run("truncated header is unreadable", func(t *testing.T) {
		e := NewExtractor(Config{}, nil)
		_, err := e.Extract(context.Background(), []byte("%PDF-1.7\n"), constants.PDF)
		assert.ErrorIs(t, err, ErrUnreadable)
	})
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	_, err := e.Extract(context.Background(), []byte("x"), "DOCX")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "crlf and tabs", in: "a\tb\r\nc", want: "a b\nc"},
		{name: "multi space", in: "a    b", want: "a b"},
		{name: "box noise line", in: "a\n-----\nb", want: "a\n\nb"},
		{name: "blank collapse", in: "a\n\n\n\n\nb", want: "a\n\nb"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
