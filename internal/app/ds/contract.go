package ds

import "time"

// Таблица договоров между продавцом и покупателем.
// Пара (SellerID, BuyerID) уникальна; флаги определяют доступные реестру схемы финансирования.
type Contract struct {
	ID                   uint      `gorm:"primaryKey"`
	Number               string    `gorm:"type:varchar(50);not null"`
	Date                 time.Time `gorm:"not null"`
	SellerID             uint      `gorm:"not null;index;uniqueIndex:idx_seller_buyer"`
	BuyerID              uint      `gorm:"not null;index;uniqueIndex:idx_seller_buyer"`
	IsDynamicDiscounting bool      `gorm:"type:boolean;default:false;not null"`
	IsFactoring          bool      `gorm:"type:boolean;default:false;not null"`
	IsRequiredRegistry   bool      `gorm:"type:boolean;default:true;not null"`

	Seller Company `gorm:"foreignKey:SellerID"`
	Buyer  Company `gorm:"foreignKey:BuyerID"`
}

// Таблица договоров факторинга (компания - банк)
type FactoringAgreement struct {
	ID          uint      `gorm:"primaryKey"`
	Number      string    `gorm:"type:varchar(50);not null"`
	Date        time.Time `gorm:"not null"`
	CompanyID   uint      `gorm:"not null;index"`
	BankID      uint      `gorm:"not null;index"`
	BankAccount string    `gorm:"type:varchar(34)"`

	Company Company `gorm:"foreignKey:CompanyID"`
	Bank    Company `gorm:"foreignKey:BankID"`
}
