package ds

import "time"

// Статус неформализованного документа
type DocumentStatus string

const (
	DocumentInProcess DocumentStatus = "in_process"
	DocumentSigned    DocumentStatus = "signed"
	DocumentDeclined  DocumentStatus = "declined"
)

// Таблица неформализованных документов - произвольный документ,
// отправляемый одной компанией на подпись другим
type UnformalizedDocument struct {
	ID            uint           `gorm:"primaryKey"`
	SenderID      uint           `gorm:"not null;index"`
	Topic         string         `gorm:"type:varchar(255);not null"`
	Message       string         `gorm:"type:text"`
	Status        DocumentStatus `gorm:"type:varchar(20);not null;default:'in_process'"`
	DeclineReason string         `gorm:"type:text"`
	AttachmentKey string         `gorm:"type:varchar(255)"` // объект в MinIO
	CreatedAt     time.Time      `gorm:"not null"`

	Sender    Company                        `gorm:"foreignKey:SenderID"`
	Receivers []UnformalizedDocumentReceiver `gorm:"foreignKey:DocumentID"`
}

// Таблица получателей неформализованного документа
type UnformalizedDocumentReceiver struct {
	ID         uint       `gorm:"primaryKey"`
	DocumentID uint       `gorm:"not null;index;uniqueIndex:idx_document_receiver"`
	CompanyID  uint       `gorm:"not null;index;uniqueIndex:idx_document_receiver"`
	IsSigned   bool       `gorm:"type:boolean;default:false;not null"`
	SignedAt   *time.Time `gorm:"default:null"`

	Company Company `gorm:"foreignKey:CompanyID"`
}
