package txcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ayo6706/txledger/internal/models"
)

// Writer emits operations in the same format Reader accepts.
type Writer struct {
	csv         *csv.Writer
	wroteHeader bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// Write appends a single operation, writing the header first if needed.
func (w *Writer) Write(op models.Operation) error {
	if !w.wroteHeader {
		if err := w.csv.Write([]string{"type", "client", "tx", "amount"}); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		w.wroteHeader = true
	}

	amount := ""
	if op.Amount != nil {
		amount = op.Amount.String()
	}
	row := []string{
		string(op.Kind),
		strconv.FormatUint(uint64(op.Client), 10),
		strconv.FormatUint(uint64(op.Tx), 10),
		amount,
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("write tx %d: %w", op.Tx, err)
	}
	return nil
}

// Flush writes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}
