package role

// Роль пользователя в системе
type Role int

const (
	Employee Role = iota // сотрудник компании
	Manager              // менеджер компании (подписание, дисконты)
	Admin                // администратор площадки
)

func (r Role) String() string {
	switch r {
	case Employee:
		return "employee"
	case Manager:
		return "manager"
	case Admin:
		return "admin"
	}
	return "unknown"
}
