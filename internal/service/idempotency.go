package service

import (
	"context"
	"fmt"

	"go-inventory-ledger/internal/model"
)

// IdempotencyStore remembers which ledger entry a client supplied key produced.
type IdempotencyStore interface {
	// Reserve claims key. When the key was claimed before it returns
	// reserved=false together with the entry id recorded by Complete, or
	// zero if the first attempt is still running.
	Reserve(ctx context.Context, key string) (entryID uint, reserved bool, err error)
	Complete(ctx context.Context, key string, entryID uint) error
	Release(ctx context.Context, key string) error
}

func idempotencyKey(typ model.TransactionType, sess Session, key string) string {
	return fmt.Sprintf("idempotency:%s:%d:%s", typ, sess.UserID, key)
}
