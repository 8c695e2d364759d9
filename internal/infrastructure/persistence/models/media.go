package models

import "github.com/fmancini-create/HotelAccelerator-sub003/internal/domain/media"

// StorageObjectModel is the persistence model for stored media
type StorageObjectModel struct {
	TenantModel
	Key         string `gorm:"column:object_key;type:varchar(512);not null;uniqueIndex"`
	FileName    string `gorm:"type:varchar(255);not null"`
	ContentType string `gorm:"type:varchar(100);not null"`
	SizeBytes   int64  `gorm:"not null"`
	Status      string `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (StorageObjectModel) TableName() string {
	return "storage_objects"
}

// ToDomain converts the model to a domain StorageObject
func (m *StorageObjectModel) ToDomain() *media.StorageObject {
	return &media.StorageObject{
		TenantEntity: m.ToTenantEntity(),
		Key:          m.Key,
		FileName:     m.FileName,
		ContentType:  m.ContentType,
		SizeBytes:    m.SizeBytes,
		Status:       media.Status(m.Status),
	}
}

// StorageObjectModelFromDomain creates a persistence model from a domain StorageObject
func StorageObjectModelFromDomain(d *media.StorageObject) *StorageObjectModel {
	m := &StorageObjectModel{
		Key:         d.Key,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		Status:      string(d.Status),
	}
	m.FromDomainTenantEntity(d.TenantEntity)
	return m
}
