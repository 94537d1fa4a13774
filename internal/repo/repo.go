package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRepo struct {
	DB *gorm.DB
}

// WithTx runs fn against a repository bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise, panics included.
func (r *GormRepo) WithTx(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

// forUpdate row-locks the selected rows until the surrounding transaction ends.
// Dialects without row locks (sqlite) drop the clause.
func (r *GormRepo) forUpdate(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}
