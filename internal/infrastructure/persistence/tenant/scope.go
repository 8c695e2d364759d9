// Package tenant scopes GORM queries to a single property.
//
// Every property-owned table carries a tenant_id column. Repositories for
// those tables build queries through a TenantDB so a missing tenant fails
// the query instead of reading across properties.
//
//	db := tenant.NewTenantDB(gormDB)
//	db.For(ctx, propertyID).Find(&messages) // WHERE tenant_id = '...'
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when a scoped query has no tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// Scope applies tenant filtering to GORM queries
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// TenantDB wraps GORM DB with tenant scoping
type TenantDB struct {
	db *gorm.DB
}

// NewTenantDB creates a new TenantDB
func NewTenantDB(db *gorm.DB) *TenantDB {
	return &TenantDB{db: db}
}

// For returns a GORM DB bound to ctx and scoped to tenantID.
// A nil tenant yields a DB that fails every statement.
func (t *TenantDB) For(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	db := t.db.WithContext(ctx)
	if tenantID == uuid.Nil {
		db = db.Session(&gorm.Session{})
		_ = db.AddError(ErrTenantIDRequired)
		return db
	}
	return db.Scopes(Scope(tenantID))
}

// Unscoped returns the underlying DB without tenant scoping.
// Only creates, which set tenant_id explicitly, should use it.
func (t *TenantDB) Unscoped(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}
