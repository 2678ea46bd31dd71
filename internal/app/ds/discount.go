package ds

import "time"

// Источник дисконта
type DiscountingSource string

const (
	DiscountPersonal DiscountingSource = "personal" // предложен сторонами напрямую
	DiscountExternal DiscountingSource = "external" // предложен площадкой/банком
)

// Порядок подсчёта дней при проверке даты досрочной оплаты
type DaysType string

const (
	CalendarDays DaysType = "calendar"
	BusinessDays DaysType = "business"
)

// Таблица дисконтов - условия досрочной оплаты по реестру (1:1 с реестром)
type Discount struct {
	ID                 uint              `gorm:"primaryKey"`
	RegistryID         uint              `gorm:"not null;uniqueIndex"`
	Rate               float64           `gorm:"type:decimal(5,2);not null"` // ставка в процентах
	DiscountedAmount   float64           `gorm:"type:decimal(14,2);not null"`
	AmountToPay        float64           `gorm:"type:decimal(14,2);not null"`
	PlannedPaymentDate time.Time         `gorm:"not null"`
	DiscountingSource  DiscountingSource `gorm:"type:varchar(20);not null;default:'personal'"`

	Registry Registry `gorm:"foreignKey:RegistryID"`
}

// Таблица настроек дисконтирования компании - правила допустимых дат оплаты
type DiscountSettings struct {
	ID                 uint     `gorm:"primaryKey"`
	CompanyID          uint     `gorm:"not null;uniqueIndex"`
	DaysType           DaysType `gorm:"type:varchar(20);not null;default:'calendar'"`
	PaymentWeekDays    int      `gorm:"type:int;not null;default:31"` // битовая маска дней недели (бит 0 - понедельник)
	MinimumDaysToShift int      `gorm:"type:int;not null;default:1"`

	Company Company `gorm:"foreignKey:CompanyID"`
}

// Таблица выходных/праздничных дней, учитываемых при проверке даты оплаты
type FreeDay struct {
	ID       uint      `gorm:"primaryKey"`
	Date     time.Time `gorm:"not null;uniqueIndex"`
	IsActive bool      `gorm:"type:boolean;default:true;not null"`
}
