package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgpagination "github.com/nhc-it/assetlend-backend/pkg/pagination"
)

// Base carries the connection a domain repository runs on; rebinding it to a
// transaction keeps every query of one operation on the same tx.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// Bind returns a Base on tx, or b itself when tx is nil.
func (b Base) Bind(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// DB returns the connection bound to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// LockByID loads dest by id with SELECT ... FOR UPDATE. SQLite drops the
// locking clause; its single connection already serializes writers.
func (b Base) LockByID(ctx context.Context, dest any, id uuid.UUID) error {
	return b.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(dest).Error
}

// Newest orders query by created_at DESC, id DESC and resumes after cursor.
func Newest(query *gorm.DB, cursor *pkgpagination.Cursor, limit int) *gorm.DB {
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	query = query.Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query
}
