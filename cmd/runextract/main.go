// runextract runs the extraction pipeline once against a local file and
// prints the result as JSON. Useful for smoke-testing dictionaries and
// prompts without the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/gakkiten/inventory-tracker/constants"
	"github.com/gakkiten/inventory-tracker/internal/acquire"
	"github.com/gakkiten/inventory-tracker/internal/common"
	"github.com/gakkiten/inventory-tracker/internal/extract"
	"github.com/gakkiten/inventory-tracker/internal/lexicon"
	"github.com/gakkiten/inventory-tracker/internal/llm/openai"
	"github.com/gakkiten/inventory-tracker/internal/pattern"
	"github.com/gakkiten/inventory-tracker/internal/usage"
)

func main() {
	strategyFlag := flag.String("strategy", "pattern", "extraction strategy: ai or pattern")
	lexPath := flag.String("lexicon", "", "optional lexicon JSON override")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: runextract [-strategy ai|pattern] [-lexicon file.json] <file>")
		os.Exit(2)
	}

	_ = godotenv.Load()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(flag.Arg(0), *strategyFlag, *lexPath, logger); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(path, strategyArg, lexPath string, logger *slog.Logger) error {
	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		return err
	}

	lex := lexicon.Default()
	if lexPath != "" {
		if lex, err = lexicon.LoadFile(lexPath); err != nil {
			return err
		}
	}

	strategy, ok := extract.ParseStrategy(strategyArg)
	if !ok && strategyArg != "" {
		return fmt.Errorf("unknown strategy %q", strategyArg)
	}

	meter := usage.NewMeter(logger)
	aiClient := openai.NewClient(openai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Timeout:     cfg.OpenAI.Timeout,
	}, meter, logger)

	acquirer := acquire.NewExtractor(acquire.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)

	orch := extract.NewOrchestrator(acquirer, aiClient, pattern.NewExtractor(lex, logger), logger)

	res, _ := orch.ExtractFile(context.Background(), extract.Input{
		Name:   filepath.Base(path),
		Data:   data,
		Format: format,
	}, strategy)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return err
	}
	if !res.Success {
		os.Exit(1)
	}
	return nil
}
