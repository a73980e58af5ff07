package godatabend

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/samber/lo"
)

// ColumnSchema is one entry of the schema the server sends with a result set.
type ColumnSchema struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type columnDecoder struct {
	name    string
	desc    TypeDesc
	handler ColumnHandler
}

// RowDecoder decodes the rows of one result set. Types and handlers are
// resolved once when the schema arrives and reused for every row; cells are
// matched to columns by ordinal position.
type RowDecoder struct {
	columns      []columnDecoder
	nullSentinel *string
}

// RowDecoderOption configures a RowDecoder.
type RowDecoderOption func(*RowDecoder)

// WithNullSentinel makes cells whose text equals sentinel decode as null on
// nullable columns, for servers that render nulls as text.
func WithNullSentinel(sentinel string) RowDecoderOption {
	return func(d *RowDecoder) {
		d.nullSentinel = &sentinel
	}
}

// NewRowDecoder resolves the schema of a result set.
func NewRowDecoder(schema []ColumnSchema, opts ...RowDecoderOption) *RowDecoder {
	d := &RowDecoder{
		columns: lo.Map(schema, func(col ColumnSchema, _ int) columnDecoder {
			desc := ParseTypeDesc(col.Type)
			return columnDecoder{name: col.Name, desc: desc, handler: ResolveHandler(desc)}
		}),
	}
	for _, opt := range opts {
		opt(d)
	}
	logger.Debugf("resolved %v columns: %v", len(d.columns), lo.Map(d.columns, func(c columnDecoder, _ int) string {
		return c.desc.Kind().String()
	}))
	return d
}

// NewRowDecoderFromTypes resolves a schema given only the raw type names.
func NewRowDecoderFromTypes(typeNames []string, opts ...RowDecoderOption) *RowDecoder {
	return NewRowDecoder(lo.Map(typeNames, func(t string, _ int) ColumnSchema {
		return ColumnSchema{Type: t}
	}), opts...)
}

// ColumnCount returns the number of columns.
func (d *RowDecoder) ColumnCount() int {
	return len(d.columns)
}

// ColumnType returns the resolved type of column i.
func (d *RowDecoder) ColumnType(i int) TypeDesc {
	return d.columns[i].desc
}

// ColumnName returns the name of column i.
func (d *RowDecoder) ColumnName(i int) string {
	return d.columns[i].name
}

// DecodeRow decodes one row. A nil cell is the null sentinel.
func (d *RowDecoder) DecodeRow(cells []*string) ([]Value, error) {
	if len(cells) != len(d.columns) {
		return nil, &DatabendError{
			Number:      ErrCodeRowLengthMismatch,
			Message:     errMsgRowLengthMismatch,
			MessageArgs: []interface{}{len(cells), len(d.columns)},
		}
	}
	values := make([]Value, len(cells))
	for i, cell := range cells {
		col := &d.columns[i]
		if cell != nil && d.nullSentinel != nil && col.desc.Nullable() && *cell == *d.nullSentinel {
			cell = nil
		}
		v, err := DecodeCell(col.desc, col.handler, cell)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// DecodeJSONRows decodes a JSON data page, an array of rows where each cell
// is a JSON string, number, boolean, nested JSON value or null. Numbers,
// booleans and nested values are decoded from their JSON text.
func (d *RowDecoder) DecodeJSONRows(r io.Reader) ([][]Value, error) {
	var page [][]json.RawMessage
	if err := json.NewDecoder(r).Decode(&page); err != nil && err != io.EOF {
		return nil, &DatabendError{
			Number:  ErrCodeInvalidDataPage,
			Message: errMsgInvalidDataPage,
			Cause:   err,
		}
	}
	rows := make([][]Value, 0, len(page))
	cells := make([]*string, len(d.columns))
	for _, raw := range page {
		if len(raw) != len(d.columns) {
			return nil, &DatabendError{
				Number:      ErrCodeRowLengthMismatch,
				Message:     errMsgRowLengthMismatch,
				MessageArgs: []interface{}{len(raw), len(d.columns)},
			}
		}
		for i, cell := range raw {
			text, err := jsonCellText(cell)
			if err != nil {
				return nil, &DatabendError{
					Number:  ErrCodeInvalidDataPage,
					Message: errMsgInvalidDataPage,
					Cause:   err,
				}
			}
			cells[i] = text
		}
		values, err := d.DecodeRow(cells)
		if err != nil {
			return nil, err
		}
		rows = append(rows, values)
	}
	return rows, nil
}

var jsonNull = []byte("null")

// jsonCellText returns the wire text of a JSON cell, or nil for JSON null.
func jsonCellText(cell json.RawMessage) (*string, error) {
	trimmed := bytes.TrimSpace(cell)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return nil, nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	s := string(trimmed)
	return &s, nil
}
