package chakra

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// PushOption configures a single Push call.
type PushOption func(*pushConfig)

type pushConfig struct {
	createIfMissing bool
}

// WithoutCreate skips the CREATE TABLE IF NOT EXISTS statement, pushing rows
// into a table assumed to already exist.
func WithoutCreate() PushOption {
	return func(cfg *pushConfig) {
		cfg.createIfMissing = false
	}
}

// Push uploads a local table to the remote engine. It derives a schema from
// the data, issues a CREATE TABLE IF NOT EXISTS statement, and then sends all
// row inserts as one batched request. Table creation always precedes row
// insertion; the two requests are sequential, not transactional, so a
// creation success followed by a batch failure leaves an empty or partially
// inserted table with no rollback.
//
// Accepted shapes for data are a column-oriented mapping (map[string][]any
// with equal-length value sequences) and a *Table. Any other shape fails
// with ErrNotImplemented. The authentication check runs first, before the
// shape check, so no shape inspection happens for an unauthenticated client.
//
// Schema derivation inspects only the value in the first row of each column
// (integer-like becomes INTEGER, floating-point DOUBLE, anything else
// VARCHAR). A column whose first value is an integer but whose later values
// are floats will be mis-typed; mixed-type columns are not supported.
//
// String literals are escaped by doubling single quotes only. This matches
// the service's wire contract and is not a security boundary; do not pass
// untrusted input.
func (c *Client) Push(ctx context.Context, tableName string, data any, opts ...PushOption) error {
	if err := c.requireAuth("push"); err != nil {
		return err
	}

	table, err := tableFromInput(data)
	if err != nil {
		return err
	}

	cfg := pushConfig{createIfMissing: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.createIfMissing {
		if _, _, err := c.Execute(ctx, buildCreateTable(tableName, table)); err != nil {
			return err
		}
	}

	if table.NumRows() == 0 {
		return nil
	}

	statements := buildInserts(tableName, table)
	log.Debug().Str("table", tableName).Int("statements", len(statements)).Msg("pushing batch")

	_, err = c.ExecuteBatch(ctx, statements)
	return err
}

// tableFromInput normalizes the accepted Push input shapes into a Table.
func tableFromInput(data any) (*Table, error) {
	switch d := data.(type) {
	case *Table:
		return d, nil
	case map[string][]any:
		return NewTableFromColumns(d)
	default:
		return nil, fmt.Errorf("push data of type %T: %w", data, ErrNotImplemented)
	}
}

// buildCreateTable derives the table schema from the first row and renders
// the creation statement.
func buildCreateTable(tableName string, t *Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(tableName)
	b.WriteString(" (")
	for i, col := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		var first any
		if len(t.Rows) > 0 && i < len(t.Rows[0]) {
			first = t.Rows[0][i]
		}
		b.WriteString(col)
		b.WriteByte(' ')
		b.WriteString(sniffColumnType(first).String())
	}
	b.WriteByte(')')
	return b.String()
}

// buildInserts renders one INSERT statement per row, in row order.
func buildInserts(tableName string, t *Table) []string {
	statements := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		var b strings.Builder
		b.WriteString("INSERT INTO ")
		b.WriteString(tableName)
		b.WriteString(" VALUES (")
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatLiteral(v))
		}
		b.WriteByte(')')
		statements[i] = b.String()
	}
	return statements
}

// formatLiteral renders a Go value as a SQL literal. Strings are
// single-quote-wrapped with internal quotes doubled, numbers keep their plain
// textual form, and nil becomes the NULL keyword.
func formatLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quoteLiteral(val)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case []byte:
		return quoteLiteral(string(val))
	case time.Time:
		return quoteLiteral(val.Format("2006-01-02 15:04:05"))
	default:
		return quoteLiteral(fmt.Sprintf("%v", val))
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
