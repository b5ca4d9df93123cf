// Package report renders the final account table.
package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ayo6706/txledger/internal/domain"
	"github.com/ayo6706/txledger/internal/models"
)

// Writer consumes the final set of accounts.
type Writer interface {
	WriteAccounts(ctx context.Context, accounts []models.Account) error
}

// Row is the rendered form of an account.
type Row struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

// Rows renders accounts with a fixed number of decimal places.
func Rows(accounts []models.Account, precision int32) []Row {
	rows := make([]Row, 0, len(accounts))
	for _, acc := range accounts {
		rows = append(rows, Row{
			Client:    uint16(acc.Client),
			Available: domain.FormatAmount(acc.Available, precision),
			Held:      domain.FormatAmount(acc.Held, precision),
			Total:     domain.FormatAmount(acc.Total, precision),
			Locked:    acc.Locked,
		})
	}
	return rows
}

// CSVWriter writes `client,available,held,total,locked` rows with a header.
type CSVWriter struct {
	out       io.Writer
	precision int32
}

func NewCSVWriter(out io.Writer, precision int32) *CSVWriter {
	return &CSVWriter{out: out, precision: precision}
}

func (w *CSVWriter) WriteAccounts(_ context.Context, accounts []models.Account) error {
	cw := csv.NewWriter(w.out)
	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range Rows(accounts, w.precision) {
		record := []string{
			strconv.FormatUint(uint64(row.Client), 10),
			row.Available,
			row.Held,
			row.Total,
			strconv.FormatBool(row.Locked),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write client %d: %w", row.Client, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONWriter writes the account table as a JSON array.
type JSONWriter struct {
	out       io.Writer
	precision int32
}

func NewJSONWriter(out io.Writer, precision int32) *JSONWriter {
	return &JSONWriter{out: out, precision: precision}
}

func (w *JSONWriter) WriteAccounts(_ context.Context, accounts []models.Account) error {
	if err := json.NewEncoder(w.out).Encode(Rows(accounts, w.precision)); err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	return nil
}

// Multi fans out to several writers, stopping at the first failure.
type Multi []Writer

func (m Multi) WriteAccounts(ctx context.Context, accounts []models.Account) error {
	for _, w := range m {
		if err := w.WriteAccounts(ctx, accounts); err != nil {
			return err
		}
	}
	return nil
}
