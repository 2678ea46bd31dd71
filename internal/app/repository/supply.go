package repository

import (
	"time"

	"factoring-backend/internal/app/ds"
	"factoring-backend/internal/app/workflow"
)

// Методы для работы с поставками

func (r *Repository) GetSupplyByID(id uint) (*ds.Supply, error) {
	var supply ds.Supply
	err := r.db.Preload("Contract").First(&supply, id).Error
	if err != nil {
		return nil, err
	}
	return &supply, nil
}

// Получить поставки компании с поиском по номеру; свободные - не включённые в реестр
func (r *Repository) GetSupplies(companyID uint, number string, onlyFree bool) ([]ds.Supply, error) {
	query := r.db.Model(&ds.Supply{}).
		Joins("JOIN contracts ON contracts.id = supplies.contract_id").
		Where("contracts.seller_id = ? OR contracts.buyer_id = ?", companyID, companyID).
		Preload("Contract")

	if number != "" {
		query = query.Where("supplies.number ILIKE ?", "%"+number+"%")
	}
	if onlyFree {
		query = query.Where("supplies.registry_id IS NULL")
	}

	var supplies []ds.Supply
	err := query.Order("supplies.date DESC").Find(&supplies).Error
	return supplies, err
}

func (r *Repository) CreateSupply(number string, date time.Time, amount float64, supplyType ds.SupplyType, contractID uint, delayEnd *time.Time) (*ds.Supply, error) {
	if amount <= 0 {
		return nil, &workflow.ValidationError{Field: "Amount", Message: "сумма поставки должна быть положительной"}
	}

	supply := ds.Supply{
		Number:       number,
		Date:         date,
		Amount:       amount,
		Type:         supplyType,
		ContractID:   contractID,
		DelayEndDate: delayEnd,
	}
	err := r.db.Create(&supply).Error
	if err != nil {
		return nil, err
	}
	return &supply, nil
}

// Удалить поставку (только пока она не включена в реестр)
func (r *Repository) DeleteSupply(id uint) error {
	result := r.db.Where("id = ? AND registry_id IS NULL", id).Delete(&ds.Supply{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &workflow.ForbiddenError{Reason: "поставку нельзя удалить - она включена в реестр или не найдена"}
	}
	return nil
}

// Привязать загруженный документ к поставке
func (r *Repository) UpdateSupplyDocument(id uint, documentKey string) error {
	return r.db.Model(&ds.Supply{}).Where("id = ?", id).Update("document_key", documentKey).Error
}
