package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate adds a row-level write lock on dialects that support it. sqlite
// has a single writer and rejects FOR UPDATE, so the clause is skipped there.
func ForUpdate(stmt *gorm.DB) *gorm.DB {
	if stmt.Dialector != nil && stmt.Dialector.Name() == "sqlite" {
		return stmt
	}
	return stmt.Clauses(clause.Locking{Strength: "UPDATE"})
}
