package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Base provides a shared foundation for row-store repositories.
type Base struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewBase constructs a Base repository backed by the provided GORM connection.
// A positive timeout bounds every query started through Query.
func NewBase(db *gorm.DB, timeout time.Duration) Base {
	return Base{db: db, timeout: timeout}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Query returns a session bound to ctx and the configured timeout. Callers
// must invoke the cancel func once the query has been read.
func (b Base) Query(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.timeout <= 0 {
		return b.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	return b.db.WithContext(ctx), cancel
}
