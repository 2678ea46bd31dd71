package workflow

import "factoring-backend/internal/app/ds"

// CanDecline проверяет, вправе ли сторона отклонить реестр в текущем состоянии.
// Отклонение возможно только пока реестр не завершён и не отклонён; банк
// участвует в отклонении лишь будучи стороной реестра (это гарантирует
// ResolveSignerRole).
func CanDecline(registry *ds.Registry, decliner SignerRole) error {
	if registry.IsFinal() {
		return forbiddenf("реестр %d уже в конечном статусе %s", registry.ID, registry.Status)
	}
	if decliner == Bank && registry.BankID == nil {
		return forbiddenf("банк не назначен реестру %d", registry.ID)
	}
	return nil
}

// DeclineAudience - таблица адресатов уведомления об отклонении:
// отклонил банк - уведомляются продавец и покупатель, отклонил покупатель -
// продавец, отклонил продавец - покупатель.
func DeclineAudience(decliner SignerRole) []SignerRole {
	switch decliner {
	case Bank:
		return []SignerRole{Seller, Buyer}
	case Buyer:
		return []SignerRole{Seller}
	case Seller:
		return []SignerRole{Buyer}
	}
	return nil
}

// ApplyDecline возвращает статусы реестра после отклонения: подписи
// сбрасываются, реестр переходит в конечный статус "отклонён".
func ApplyDecline() (ds.SignStatus, ds.RegistryStatus) {
	return ds.SignNotSigned, ds.StatusDeclined
}
