// Package archive persists raw pulls to Parquet files on disk for audit,
// standing in for the object-storage collaborator.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog/log"

	"github.com/ryanlattanzi/algo-trading/internal/domain/market"
)

// Compile-time interface check.
var _ market.Archiver = (*ParquetArchiver)(nil)

// ParquetArchiver implements market.Archiver, writing one file per pull at
// <Dir>/<TICKER>/<pull timestamp>.parquet.
type ParquetArchiver struct {
	Dir string
}

// NewParquetArchiver creates an archiver rooted at dir.
func NewParquetArchiver(dir string) *ParquetArchiver {
	return &ParquetArchiver{Dir: dir}
}

// barRecord is the Parquet schema for an archived raw bar.
type barRecord struct {
	Ticker   string  `parquet:"ticker"`
	Date     string  `parquet:"date"`
	Open     float64 `parquet:"open"`
	High     float64 `parquet:"high"`
	Low      float64 `parquet:"low"`
	Close    float64 `parquet:"close"`
	AdjClose float64 `parquet:"adj_close"`
	Volume   int64   `parquet:"volume"`
}

// ArchivePull writes the raw series exactly as pulled, before cleaning.
func (a *ParquetArchiver) ArchivePull(_ context.Context, ticker string, pulledAt time.Time, series market.Series) error {
	if len(series) == 0 {
		return nil
	}

	dir := filepath.Join(a.Dir, ticker)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ticker %s: create archive dir: %w", ticker, err)
	}

	records := make([]barRecord, len(series))
	for i, b := range series {
		records[i] = barRecord{
			Ticker:   ticker,
			Date:     b.Date.Format(market.DateFormat),
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			AdjClose: b.AdjClose,
			Volume:   b.Volume,
		}
	}

	path := filepath.Join(dir, pulledAt.UTC().Format("20060102T150405")+".parquet")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ticker %s: create archive file: %w", ticker, err)
	}
	defer f.Close()

	writer := parquet.NewGenericWriter[barRecord](f)
	if _, err := writer.Write(records); err != nil {
		return fmt.Errorf("ticker %s: write archive: %w", ticker, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("ticker %s: close archive: %w", ticker, err)
	}

	log.Debug().
		Str("ticker", ticker).
		Str("path", path).
		Int("bars", len(records)).
		Msg("archived raw pull")

	return nil
}
