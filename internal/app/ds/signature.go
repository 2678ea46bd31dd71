package ds

import "time"

// Таблица подписей - фиксирует кто и что подписал, с привязкой к файлу подписи
type Signature struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null"`
	CompanyID   uint      `gorm:"not null;index"`
	RegistryID  *uint     `gorm:"default:null;index"`
	DocumentID  *uint     `gorm:"default:null;index"`
	ArtifactKey string    `gorm:"type:varchar(255)"` // подписанный файл в MinIO
	CreatedAt   time.Time `gorm:"not null"`

	User    User    `gorm:"foreignKey:UserID"`
	Company Company `gorm:"foreignKey:CompanyID"`
}
