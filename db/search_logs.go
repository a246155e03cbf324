package db

import "context"

// SearchLog is one row of the append-only search audit log.
type SearchLog struct {
	SearchQuery  string
	State        string
	ResultsFound int
	UserIP       string
	SearchType   string
}

func (d *DB) SaveSearchLog(ctx context.Context, l SearchLog) error {
	_, err := d.pool.ExecContext(ctx,
		`INSERT INTO search_logs (search_query, state, results_found, user_ip, search_type)
         VALUES ($1, $2, $3, $4, $5)`,
		l.SearchQuery, l.State, l.ResultsFound, l.UserIP, l.SearchType,
	)
	return err
}
