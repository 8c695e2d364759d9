package persistence

import (
	"context"
	"strings"

	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/property"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/shared"
	"github.com/fmancini-create/HotelAccelerator-sub003/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPropertyRepository implements property.Repository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID finds a property by its ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return r.findOne(ctx, "find property", "id = ?", id)
}

// FindBySlug finds a property by slug
func (r *GormPropertyRepository) FindBySlug(ctx context.Context, slug string) (*property.Property, error) {
	return r.findOne(ctx, "find property by slug", "slug = ?", strings.ToLower(slug))
}

// FindBySubdomain finds a property by its platform subdomain label
func (r *GormPropertyRepository) FindBySubdomain(ctx context.Context, subdomain string) (*property.Property, error) {
	return r.findOne(ctx, "find property by subdomain", "subdomain = ?", strings.ToLower(subdomain))
}

// FindByCustomDomain finds a property by custom domain, whatever its verification status.
// Callers decide whether the domain is routable.
func (r *GormPropertyRepository) FindByCustomDomain(ctx context.Context, domain string) (*property.Property, error) {
	return r.findOne(ctx, "find property by custom domain", "custom_domain = ?", strings.ToLower(domain))
}

func (r *GormPropertyRepository) findOne(ctx context.Context, op, query string, arg any) (*property.Property, error) {
	var model models.PropertyModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		return nil, translate(op, err)
	}
	return model.ToDomain(), nil
}

// FindAll lists properties page by page.
// Search matches name, slug and domains; Status filters on "active" or "inactive".
func (r *GormPropertyRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Page[property.Property], error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.PropertyModel{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR slug LIKE ? OR subdomain LIKE ? OR custom_domain LIKE ?", like, like, like, like)
	}
	switch filter.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	page := shared.Page[property.Property]{Page: filter.Page, PageSize: filter.PageSize}
	if err := query.Count(&page.Total).Error; err != nil {
		return page, translate("count properties", err)
	}

	var rows []models.PropertyModel
	if err := query.Order("created_at DESC").Offset(filter.Offset()).Limit(filter.PageSize).Find(&rows).Error; err != nil {
		return page, translate("list properties", err)
	}

	page.Items = make([]property.Property, 0, len(rows))
	for i := range rows {
		page.Items = append(page.Items, *rows[i].ToDomain())
	}
	return page, nil
}

// FindVerifiedDomains returns every active property with a verified custom domain
func (r *GormPropertyRepository) FindVerifiedDomains(ctx context.Context) ([]property.Property, error) {
	var rows []models.PropertyModel
	err := r.db.WithContext(ctx).
		Where("custom_domain IS NOT NULL AND domain_verification_status = ? AND is_active = ?", property.DomainStatusVerified, true).
		Order("domain_last_checked_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate("list verified domains", err)
	}

	out := make([]property.Property, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// ExistsBySlug checks if a slug is taken
func (r *GormPropertyRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	return r.exists(ctx, "check slug", "slug = ?", strings.ToLower(slug))
}

// ExistsBySubdomain checks if a subdomain is taken
func (r *GormPropertyRepository) ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error) {
	return r.exists(ctx, "check subdomain", "subdomain = ?", strings.ToLower(subdomain))
}

// ExistsByCustomDomain checks if a custom domain is claimed by any property
func (r *GormPropertyRepository) ExistsByCustomDomain(ctx context.Context, domain string) (bool, error) {
	return r.exists(ctx, "check custom domain", "custom_domain = ?", strings.ToLower(domain))
}

func (r *GormPropertyRepository) exists(ctx context.Context, op, query string, arg any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PropertyModel{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, translate(op, err)
	}
	return count > 0, nil
}

// Save creates or updates a property
func (r *GormPropertyRepository) Save(ctx context.Context, p *property.Property) error {
	return translate("save property", r.db.WithContext(ctx).Save(models.PropertyModelFromDomain(p)).Error)
}

// SaveWithLock updates an existing property only if its stored version is
// p.Version-1. Callers increment the version before saving. A stale
// version yields shared.ErrConcurrencyConflict.
func (r *GormPropertyRepository) SaveWithLock(ctx context.Context, p *property.Property) error {
	model := models.PropertyModelFromDomain(p)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("version = ?", p.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return translate("save property", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("The property has been modified by another request")
	}
	return nil
}
