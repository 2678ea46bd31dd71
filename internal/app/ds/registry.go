package ds

import "time"

// Статус реестра
type RegistryStatus string

const (
	StatusInProcess RegistryStatus = "in_process"
	StatusFinished  RegistryStatus = "finished"
	StatusDeclined  RegistryStatus = "declined"
)

// Статус подписания реестра сторонами
type SignStatus string

const (
	SignNotSigned       SignStatus = "not_signed"
	SignedBySeller      SignStatus = "signed_by_seller"
	SignedByBuyer       SignStatus = "signed_by_buyer"
	SignedBySellerBuyer SignStatus = "signed_by_seller_buyer"
	SignedByAll         SignStatus = "signed_by_all"
)

// Схема финансирования реестра
type FinanceType string

const (
	DynamicDiscounting FinanceType = "dynamic_discounting"
	SupplyVerification FinanceType = "supply_verification"
)

// Таблица реестров - пакет поставок, переданный на финансирование или верификацию
type Registry struct {
	ID                   uint           `gorm:"primaryKey"`
	Number               string         `gorm:"type:varchar(50);not null"`
	Date                 time.Time      `gorm:"not null"`
	Amount               float64        `gorm:"type:decimal(14,2);default:0"`
	ContractID           uint           `gorm:"not null;index"`
	CreatorID            uint           `gorm:"not null"`
	Status               RegistryStatus `gorm:"type:varchar(20);not null;default:'in_process'"`
	SignStatus           SignStatus     `gorm:"type:varchar(30);not null;default:'not_signed'"`
	FinanceType          FinanceType    `gorm:"type:varchar(30);not null"`
	BankID               *uint          `gorm:"default:null;index"`
	FactoringAgreementID *uint          `gorm:"default:null"`
	IsVerified           bool           `gorm:"type:boolean;default:false;not null"`

	Contract           Contract            `gorm:"foreignKey:ContractID"`
	Creator            User                `gorm:"foreignKey:CreatorID"`
	Bank               *Company            `gorm:"foreignKey:BankID"`
	FactoringAgreement *FactoringAgreement `gorm:"foreignKey:FactoringAgreementID"`
	Supplies           []Supply            `gorm:"foreignKey:RegistryID"`
}

// Реестр становится неизменяемым после завершения или отклонения
func (r *Registry) IsFinal() bool {
	return r.Status == StatusFinished || r.Status == StatusDeclined
}

// Тип поставки
type SupplyType string

const (
	SupplyInvoice      SupplyType = "invoice"       // счёт-фактура
	SupplyDeliveryNote SupplyType = "delivery_note" // накладная
	SupplyUTD          SupplyType = "utd"           // УПД
)

// Таблица поставок - отдельный документ, участвующий в дисконтировании
type Supply struct {
	ID           uint       `gorm:"primaryKey"`
	Number       string     `gorm:"type:varchar(50);not null"`
	Date         time.Time  `gorm:"not null"`
	Amount       float64    `gorm:"type:decimal(14,2);not null"`
	Type         SupplyType `gorm:"type:varchar(20);not null;default:'invoice'"`
	ContractID   uint       `gorm:"not null;index"`
	RegistryID   *uint      `gorm:"default:null;index"`
	BankID       *uint      `gorm:"default:null"`
	DelayEndDate *time.Time `gorm:"default:null"`      // конец отсрочки платежа
	DocumentKey  string     `gorm:"type:varchar(255)"` // объект в MinIO

	Contract Contract `gorm:"foreignKey:ContractID"`
}
