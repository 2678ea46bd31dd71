package ds

// Таблица пользователей (сотрудники компаний)
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Login     string `gorm:"type:varchar(50);unique;not null"`
	Password  string `gorm:"type:varchar(255);not null"` // bcrypt хеш
	FullName  string `gorm:"type:varchar(100)"`
	Email     string `gorm:"type:varchar(100)"`
	CompanyID uint   `gorm:"not null;index"`
	Role      int    `gorm:"type:int;default:0;not null"` // 0 - сотрудник, 1 - менеджер, 2 - администратор

	Company Company `gorm:"foreignKey:CompanyID"`
}
