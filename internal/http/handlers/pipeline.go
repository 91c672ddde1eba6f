package handlers

import (
	"context"

	"github.com/codelens/taskhub/internal/db"
)

// TxRunner is the transactional executor: every mutating handler hands its
// unit of work to RunInTx and never touches commit/rollback itself. Kept as
// an interface so tests can run units of work without a database.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx db.DBTX) error) error
}
