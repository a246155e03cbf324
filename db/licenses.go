package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"contractor-lookup-go/scrapers"
)

// likePattern wraps q for a contains-match, escaping ILIKE wildcards.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(q)) + "%"
}

// SearchLicenses returns up to limit records in state whose license number,
// contractor name or business name contains query (case-insensitive).
func (d *DB) SearchLicenses(ctx context.Context, query, state string, limit int) ([]scrapers.LicenseRecord, error) {
	rows, err := d.pool.QueryContext(ctx,
		`SELECT contractor_name, COALESCE(business_name, ''), license_number,
                COALESCE(status, ''), COALESCE(license_type, ''), COALESCE(issue_date, ''),
                COALESCE(expiration_date, ''), COALESCE(address, ''), COALESCE(phone, ''),
                state, COALESCE(data_source, ''), COALESCE(license_url, ''), last_scraped,
                disciplinary_actions
         FROM license_records
         WHERE state = $1
           AND (license_number ILIKE $2 OR contractor_name ILIKE $2 OR business_name ILIKE $2)
         ORDER BY contractor_name ASC
         LIMIT $3`,
		scrapers.NormalizeState(state), likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("db: search licenses: %w", err)
	}
	defer rows.Close()

	var result []scrapers.LicenseRecord
	for rows.Next() {
		var r scrapers.LicenseRecord
		var lastScraped sql.NullTime
		if err := rows.Scan(&r.ContractorName, &r.BusinessName, &r.LicenseNumber,
			&r.Status, &r.LicenseType, &r.IssueDate,
			&r.ExpirationDate, &r.Address, &r.Phone,
			&r.State, &r.DataSource, &r.LicenseURL, &lastScraped,
			pq.Array(&r.DisciplinaryActions)); err != nil {
			return nil, fmt.Errorf("db: scan license: %w", err)
		}
		if lastScraped.Valid {
			r.LastScraped = lastScraped.Time
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// UpsertLicenses inserts or refreshes records keyed by (state, license_number)
// in one transaction. Records without a contractor name or license number are skipped.
func (d *DB) UpsertLicenses(ctx context.Context, records []scrapers.LicenseRecord) (int, error) {
	tx, err := d.pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("db: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO license_records
         (state, license_number, contractor_name, business_name, status, license_type,
          issue_date, expiration_date, address, phone, data_source, license_url,
          last_scraped, disciplinary_actions)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
         ON CONFLICT (state, license_number) DO UPDATE SET
          contractor_name = EXCLUDED.contractor_name,
          business_name = EXCLUDED.business_name,
          status = EXCLUDED.status,
          license_type = EXCLUDED.license_type,
          issue_date = EXCLUDED.issue_date,
          expiration_date = EXCLUDED.expiration_date,
          address = EXCLUDED.address,
          phone = EXCLUDED.phone,
          data_source = EXCLUDED.data_source,
          license_url = EXCLUDED.license_url,
          last_scraped = EXCLUDED.last_scraped,
          disciplinary_actions = EXCLUDED.disciplinary_actions,
          updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("db: prepare upsert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, r := range records {
		if !r.Found() || strings.TrimSpace(r.LicenseNumber) == "" {
			continue
		}
		var lastScraped sql.NullTime
		if !r.LastScraped.IsZero() {
			lastScraped = sql.NullTime{Time: r.LastScraped, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			scrapers.NormalizeState(r.State), strings.TrimSpace(r.LicenseNumber), strings.TrimSpace(r.ContractorName),
			r.BusinessName, strings.ToLower(r.Status), r.LicenseType,
			r.IssueDate, r.ExpirationDate, r.Address, r.Phone, r.DataSource, r.LicenseURL,
			lastScraped, pq.Array(r.DisciplinaryActions)); err != nil {
			return 0, fmt.Errorf("db: upsert license %s: %w", r.LicenseNumber, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("db: commit: %w", err)
	}
	return n, nil
}
