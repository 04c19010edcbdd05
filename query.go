package chakra

import (
	"context"
	"net/http"
)

type executeRequest struct {
	SQL string `json:"sql"`
}

type batchRequest struct {
	Statements []string `json:"statements"`
}

// Execute runs a SQL statement on the Chakra service and materializes the
// result as a Table. The statement is sent verbatim; no validation or
// escaping is applied.
//
// Execute fails with ErrAuthRequired before any network call when the client
// holds no token. Transport and decoding errors surface unmodified.
//
// Example:
//
//	table, _, err := client.Execute(ctx, "SELECT * FROM my_table LIMIT 100")
//	if err != nil {
//	    return err
//	}
//	// Process table.Rows...
func (c *Client) Execute(ctx context.Context, sql string, opts ...RequestOption) (*Table, *http.Response, error) {
	if err := c.requireAuth("execute"); err != nil {
		return nil, nil, err
	}

	req, err := c.NewRequest("POST", "execute", executeRequest{SQL: sql}, opts...)
	if err != nil {
		return nil, nil, err
	}

	table := new(Table)
	resp, err := c.Do(ctx, req, table)
	if err != nil {
		return nil, resp, err
	}
	return table, resp, nil
}

// ExecuteBatch sends an ordered list of SQL statements in a single request to
// the batch endpoint. The service applies the statements in the order given.
//
// ExecuteBatch fails with ErrAuthRequired before any network call when the
// client holds no token.
func (c *Client) ExecuteBatch(ctx context.Context, statements []string, opts ...RequestOption) (*http.Response, error) {
	if err := c.requireAuth("execute batch"); err != nil {
		return nil, err
	}

	req, err := c.NewRequest("POST", "execute/batch", batchRequest{Statements: statements}, opts...)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, req, nil)
}
