package persistence

import (
	"context"
	"strings"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/inbox"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/persistence/models"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMessageRepository implements inbox.Repository using GORM
type GormMessageRepository struct {
	tenants *tenant.TenantDB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{tenants: tenant.NewTenantDB(db)}
}

// Create inserts a new message
func (r *GormMessageRepository) Create(ctx context.Context, m *inbox.Message) error {
	if m.TenantID == uuid.Nil {
		return translate("create message", tenant.ErrTenantIDRequired)
	}
	return translate("create message", r.tenants.Unscoped(ctx).Create(models.MessageModelFromDomain(m)).Error)
}

// FindByID finds a message within a property
func (r *GormMessageRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inbox.Message, error) {
	var model models.MessageModel
	if err := r.tenants.For(ctx, tenantID).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate("find message", err)
	}
	return model.ToDomain(), nil
}

// List returns a page of a property's messages, newest first
func (r *GormMessageRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Page[inbox.Message], error) {
	filter = filter.Normalize()
	query := r.tenants.For(ctx, tenantID).Model(&models.MessageModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(subject) LIKE ? OR LOWER(body) LIKE ? OR guest_email LIKE ?", like, like, like)
	}

	page := shared.Page[inbox.Message]{Page: filter.Page, PageSize: filter.PageSize}
	if err := query.Count(&page.Total).Error; err != nil {
		return page, translate("count messages", err)
	}

	var rows []models.MessageModel
	if err := query.Order("created_at DESC").Offset(filter.Offset()).Limit(filter.PageSize).Find(&rows).Error; err != nil {
		return page, translate("list messages", err)
	}
	page.Items = make([]inbox.Message, 0, len(rows))
	for i := range rows {
		page.Items = append(page.Items, *rows[i].ToDomain())
	}
	return page, nil
}

// Update persists a changed message. Zero rows means it is not in the property.
func (r *GormMessageRepository) Update(ctx context.Context, m *inbox.Message) error {
	model := models.MessageModelFromDomain(m)
	res := r.tenants.For(ctx, m.TenantID).Model(&models.MessageModel{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{"status": model.Status, "updated_at": model.UpdatedAt})
	if res.Error != nil {
		return translate("update message", res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByTenant counts the messages a property has stored
func (r *GormMessageRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.tenants.For(ctx, tenantID).Model(&models.MessageModel{}).Count(&count).Error; err != nil {
		return 0, translate("count messages", err)
	}
	return count, nil
}
