// Package txcsv reads and writes the tabular transaction format:
//
//	type, client, tx, amount
//	deposit, 1, 1, 1.0
//	dispute, 1, 1,
//
// Fields are trimmed before conversion and the type column is case-insensitive.
package txcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ayo6706/txledger/internal/domain"
	"github.com/ayo6706/txledger/internal/models"
)

var requiredColumns = []string{"type", "client", "tx"}

// ParseError describes a malformed input row.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reader streams operations from CSV input.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
	line    int
}

// NewReader wraps r. The header row is consumed lazily on the first call to Next.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &Reader{csv: cr}
}

// Next returns the next operation, or io.EOF when the input is exhausted.
func (r *Reader) Next() (models.Operation, error) {
	if r.columns == nil {
		if err := r.readHeader(); err != nil {
			return models.Operation{}, err
		}
	}

	for {
		record, err := r.read()
		if err != nil {
			return models.Operation{}, err
		}
		if blank(record) {
			continue
		}
		op, err := r.parse(record)
		if err != nil {
			return models.Operation{}, &ParseError{Line: r.line, Err: err}
		}
		return op, nil
	}
}

// ReadAll drains the reader.
func (r *Reader) ReadAll() ([]models.Operation, error) {
	var ops []models.Operation
	for {
		op, err := r.Next()
		if errors.Is(err, io.EOF) {
			return ops, nil
		}
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
}

func (r *Reader) read() ([]string, error) {
	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			return nil, &ParseError{Line: csvErr.Line, Err: csvErr.Err}
		}
		return nil, fmt.Errorf("read csv: %w", err)
	}
	r.line, _ = r.csv.FieldPos(0)
	return record, nil
}

func (r *Reader) readHeader() error {
	record, err := r.read()
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	if err != nil {
		return err
	}

	columns := make(map[string]int, len(record))
	for i, name := range record {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return &ParseError{Line: r.line, Err: fmt.Errorf("missing %q column in header", name)}
		}
	}
	r.columns = columns
	return nil
}

func (r *Reader) field(record []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (r *Reader) parse(record []string) (models.Operation, error) {
	kind, err := models.ParseKind(r.field(record, "type"))
	if err != nil {
		return models.Operation{}, err
	}

	client, err := strconv.ParseUint(r.field(record, "client"), 10, 16)
	if err != nil {
		return models.Operation{}, fmt.Errorf("invalid client id: %w", err)
	}

	tx, err := strconv.ParseUint(r.field(record, "tx"), 10, 32)
	if err != nil {
		return models.Operation{}, fmt.Errorf("invalid tx id: %w", err)
	}

	amount, err := domain.ParseAmount(r.field(record, "amount"))
	if err != nil {
		return models.Operation{}, err
	}

	return models.Operation{
		Kind:   kind,
		Client: models.ClientID(client),
		Tx:     models.TxID(tx),
		Amount: amount,
	}, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
