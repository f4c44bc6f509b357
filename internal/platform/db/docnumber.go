package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// NextDocumentNumber allocates the next number of a per-business, per-year
// document sequence and renders it as PREFIX-YYYY-NNNN. The counter row is
// upserted inside the caller's transaction; ON CONFLICT takes the row lock,
// so concurrent allocations serialize, and deleting a document never frees
// its number.
func NextDocumentNumber(ctx context.Context, tx pgx.Tx, businessID int64, prefix string, year int) (string, error) {
	var seq int64
	err := tx.QueryRow(ctx, `INSERT INTO document_counters (business_id, prefix, year, last_number)
VALUES ($1, $2, $3, 1)
ON CONFLICT (business_id, prefix, year)
DO UPDATE SET last_number = document_counters.last_number + 1
RETURNING last_number`, businessID, prefix, year).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("platform/db: next document number: %w", err)
	}
	return FormatDocumentNumber(prefix, year, seq), nil
}

// FormatDocumentNumber renders a document number, zero-padding the sequence
// to four digits.
func FormatDocumentNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}
