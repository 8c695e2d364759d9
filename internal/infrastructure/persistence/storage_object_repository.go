package persistence

import (
	"context"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/media"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/persistence/models"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStorageObjectRepository implements media.Repository using GORM
type GormStorageObjectRepository struct {
	tenants *tenant.TenantDB
}

// NewGormStorageObjectRepository creates a new GormStorageObjectRepository
func NewGormStorageObjectRepository(db *gorm.DB) *GormStorageObjectRepository {
	return &GormStorageObjectRepository{tenants: tenant.NewTenantDB(db)}
}

// Create inserts a pending storage object
func (r *GormStorageObjectRepository) Create(ctx context.Context, o *media.StorageObject) error {
	if o.TenantID == uuid.Nil {
		return translate("create storage object", tenant.ErrTenantIDRequired)
	}
	return translate("create storage object", r.tenants.Unscoped(ctx).Create(models.StorageObjectModelFromDomain(o)).Error)
}

// FindByID finds a storage object within a property
func (r *GormStorageObjectRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*media.StorageObject, error) {
	var model models.StorageObjectModel
	if err := r.tenants.For(ctx, tenantID).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate("find storage object", err)
	}
	return model.ToDomain(), nil
}

// Update persists the status of a storage object
func (r *GormStorageObjectRepository) Update(ctx context.Context, o *media.StorageObject) error {
	res := r.tenants.For(ctx, o.TenantID).Model(&models.StorageObjectModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{"status": string(o.Status), "updated_at": o.UpdatedAt})
	if res.Error != nil {
		return translate("update storage object", res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SumUploadedBytes totals the size of a property's uploaded objects
func (r *GormStorageObjectRepository) SumUploadedBytes(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var total int64
	err := r.tenants.For(ctx, tenantID).Model(&models.StorageObjectModel{}).
		Where("status = ?", string(media.StatusUploaded)).
		Select("COALESCE(SUM(size_bytes), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, translate("sum storage bytes", err)
	}
	return total, nil
}
