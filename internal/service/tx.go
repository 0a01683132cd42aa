package service

import (
	"context"

	"gorm.io/gorm"
)

// runTx executes fn inside a database transaction. A nil db runs fn with a
// nil tx, which the repository fakes used in unit tests accept.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
