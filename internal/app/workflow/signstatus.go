package workflow

import (
	"factoring-backend/internal/app/ds"
)

// Сторона, подписывающая реестр. Определяется по договору и банку реестра,
// а не по роли пользователя в системе.
type SignerRole int

const (
	Seller SignerRole = iota
	Buyer
	Bank
)

func (r SignerRole) String() string {
	switch r {
	case Seller:
		return "seller"
	case Buyer:
		return "buyer"
	case Bank:
		return "bank"
	}
	return "unknown"
}

type transitionKey struct {
	From   ds.SignStatus
	Signer SignerRole
}

// Таблица переходов статуса подписания: (текущий статус, сторона) -> новый статус.
// Подпись банка авторитетна и из любого незавершённого состояния ведёт сразу
// в SignedByAll. Отсутствие пары в таблице означает запрещённый переход.
var signTransitions = map[transitionKey]ds.SignStatus{
	{ds.SignNotSigned, Seller}:     ds.SignedBySeller,
	{ds.SignNotSigned, Buyer}:      ds.SignedByBuyer,
	{ds.SignNotSigned, Bank}:       ds.SignedByAll,
	{ds.SignedBySeller, Buyer}:     ds.SignedBySellerBuyer,
	{ds.SignedBySeller, Bank}:      ds.SignedByAll,
	{ds.SignedByBuyer, Seller}:     ds.SignedBySellerBuyer,
	{ds.SignedByBuyer, Bank}:       ds.SignedByAll,
	{ds.SignedBySellerBuyer, Bank}: ds.SignedByAll,
}

// Пары, для которых переход запрещён осознанно (повторная подпись либо
// подпись после полного подписания).
var signForbidden = map[transitionKey]struct{}{
	{ds.SignedBySeller, Seller}:      {},
	{ds.SignedByBuyer, Buyer}:        {},
	{ds.SignedBySellerBuyer, Seller}: {},
	{ds.SignedBySellerBuyer, Buyer}:  {},
	{ds.SignedByAll, Seller}:         {},
	{ds.SignedByAll, Buyer}:          {},
	{ds.SignedByAll, Bank}:           {},
}

var allSignStatuses = []ds.SignStatus{
	ds.SignNotSigned,
	ds.SignedBySeller,
	ds.SignedByBuyer,
	ds.SignedBySellerBuyer,
	ds.SignedByAll,
}

var allSignerRoles = []SignerRole{Seller, Buyer, Bank}

// Каждая пара (статус, сторона) обязана быть учтена либо в таблице переходов,
// либо в списке запрещённых. Пропуск - ошибка программирования.
func init() {
	for _, st := range allSignStatuses {
		for _, r := range allSignerRoles {
			key := transitionKey{st, r}
			_, allowed := signTransitions[key]
			_, denied := signForbidden[key]
			if allowed == denied {
				panic("workflow: sign transition table does not cover (" + string(st) + ", " + r.String() + ")")
			}
		}
	}
}

// AdvanceSignStatus вычисляет новый статус подписания после подписи стороной signer.
// Возвращает ForbiddenError для запрещённых переходов.
func AdvanceSignStatus(current ds.SignStatus, signer SignerRole) (ds.SignStatus, error) {
	next, ok := signTransitions[transitionKey{current, signer}]
	if !ok {
		return current, forbiddenf("подпись стороны %s недопустима в статусе %s", signer, current)
	}
	return next, nil
}

// ResolveSignerRole определяет сторону реестра по компании.
// Договор реестра должен быть загружен.
func ResolveSignerRole(registry *ds.Registry, companyID uint) (SignerRole, error) {
	switch {
	case registry.Contract.SellerID == companyID:
		return Seller, nil
	case registry.Contract.BuyerID == companyID:
		return Buyer, nil
	case registry.BankID != nil && *registry.BankID == companyID:
		return Bank, nil
	}
	return 0, forbiddenf("компания %d не является стороной реестра %d", companyID, registry.ID)
}

// DeriveStatus - чистая функция статуса реестра от статуса подписания,
// схемы финансирования и наличия личного дисконта. Второй результат -
// признак верификации поставок.
func DeriveStatus(signStatus ds.SignStatus, financeType ds.FinanceType, hasPersonalDiscount bool) (ds.RegistryStatus, bool) {
	switch signStatus {
	case ds.SignedBySellerBuyer:
		// при динамическом дисконтировании подписей продавца и покупателя
		// достаточно, если стороны сами согласовали дисконт
		if financeType == ds.DynamicDiscounting && hasPersonalDiscount {
			return ds.StatusFinished, false
		}
		return ds.StatusInProcess, false
	case ds.SignedByAll:
		return ds.StatusFinished, financeType == ds.SupplyVerification
	default:
		return ds.StatusInProcess, false
	}
}

// NeedsBankPropagation сообщает, достигнут ли статус, при котором поставкам
// реестра проставляется банк (в той же транзакции, что и смена статуса).
func NeedsBankPropagation(signStatus ds.SignStatus) bool {
	return signStatus == ds.SignedBySellerBuyer || signStatus == ds.SignedByAll
}
