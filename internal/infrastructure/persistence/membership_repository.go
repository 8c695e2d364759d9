package persistence

import (
	"context"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/identity"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/persistence/models"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMembershipRepository implements identity.MembershipRepository using GORM
type GormMembershipRepository struct {
	db      *gorm.DB
	tenants *tenant.TenantDB
}

// NewGormMembershipRepository creates a new GormMembershipRepository
func NewGormMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db, tenants: tenant.NewTenantDB(db)}
}

// FindByUserID finds the membership of a user. It is the only lookup that
// is not tenant scoped because it is how the tenant is discovered.
func (r *GormMembershipRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Membership, error) {
	var model models.MembershipModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		return nil, translate("find membership", err)
	}
	return model.ToDomain(), nil
}

// FindByTenantAndUser finds a membership inside one property
func (r *GormMembershipRepository) FindByTenantAndUser(ctx context.Context, tenantID, userID uuid.UUID) (*identity.Membership, error) {
	var model models.MembershipModel
	if err := r.tenants.For(ctx, tenantID).First(&model, "user_id = ?", userID).Error; err != nil {
		return nil, translate("find membership", err)
	}
	return model.ToDomain(), nil
}

// ListByTenant lists every membership of a property, oldest first
func (r *GormMembershipRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]identity.Membership, error) {
	var rows []models.MembershipModel
	if err := r.tenants.For(ctx, tenantID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, translate("list memberships", err)
	}
	out := make([]identity.Membership, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// CountActiveByTenant counts active memberships of a property
func (r *GormMembershipRepository) CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.tenants.For(ctx, tenantID).Model(&models.MembershipModel{}).Where("is_active = ?", true).Count(&count).Error
	if err != nil {
		return 0, translate("count memberships", err)
	}
	return count, nil
}

// Save creates or updates a membership
func (r *GormMembershipRepository) Save(ctx context.Context, m *identity.Membership) error {
	return translate("save membership", r.tenants.Unscoped(ctx).Save(models.MembershipModelFromDomain(m)).Error)
}
