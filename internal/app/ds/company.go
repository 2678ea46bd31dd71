package ds

// Таблица компаний (продавцы, покупатели, банки)
type Company struct {
	ID        uint   `gorm:"primaryKey"`
	ShortName string `gorm:"type:varchar(100);not null"`
	FullName  string `gorm:"type:varchar(255)"`
	TIN       string `gorm:"type:varchar(12);unique;not null"` // ИНН
	Email     string `gorm:"type:varchar(100)"`                // адрес для уведомлений
	IsBank    bool   `gorm:"type:boolean;default:false;not null"`
}
