package repository

import (
	"fmt"
	"time"

	"factoring-backend/internal/app/ds"
	"factoring-backend/internal/app/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Методы для работы с реестрами. Подписание и отклонение выполняются в одной
// транзакции: смена статусов, проставление банка поставкам и запись подписи
// фиксируются вместе либо не фиксируются вовсе.

// Результат операции подписания/отклонения для уведомлений
type SignResult struct {
	Registry *ds.Registry
	Signer   workflow.SignerRole
	Finished bool // реестр перешёл в конечный статус этим действием
}

// Получить реестр со всеми связями для подписания
func (r *Repository) GetRegistryByID(id uint) (*ds.Registry, error) {
	var registry ds.Registry
	err := r.db.
		Preload("Contract").
		Preload("Contract.Seller").
		Preload("Contract.Buyer").
		Preload("Bank").
		Preload("Supplies").
		First(&registry, id).Error
	if err != nil {
		return nil, err
	}
	return &registry, nil
}

// Получить реестры с фильтрацией по статусу и датам, в рамках компании
// (компания видит реестры, где она продавец, покупатель или банк)
func (r *Repository) GetRegistries(companyID uint, status ds.RegistryStatus, dateFrom, dateTo *time.Time) ([]ds.Registry, error) {
	query := r.db.Model(&ds.Registry{}).
		Joins("JOIN contracts ON contracts.id = registries.contract_id").
		Where("contracts.seller_id = ? OR contracts.buyer_id = ? OR registries.bank_id = ?", companyID, companyID, companyID).
		Preload("Contract").
		Preload("Contract.Seller").
		Preload("Contract.Buyer").
		Preload("Bank")

	if status != "" {
		query = query.Where("registries.status = ?", status)
	}
	if dateFrom != nil {
		query = query.Where("registries.date >= ?", *dateFrom)
	}
	if dateTo != nil {
		query = query.Where("registries.date <= ?", *dateTo)
	}

	var registries []ds.Registry
	err := query.Order("registries.date DESC").Find(&registries).Error
	return registries, err
}

// Создать реестр из поставок по договору. Флаги договора определяют допустимую
// схему финансирования; сумма реестра - сумма его поставок.
func (r *Repository) CreateRegistry(creatorID, contractID uint, financeType ds.FinanceType, supplyIDs []uint, bankID, agreementID *uint) (*ds.Registry, error) {
	var registry *ds.Registry

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var contract ds.Contract
		if err := tx.First(&contract, contractID).Error; err != nil {
			return err
		}

		if financeType == ds.DynamicDiscounting && !contract.IsDynamicDiscounting {
			return &workflow.ValidationError{Field: "FinanceType", Message: "договор не допускает динамическое дисконтирование"}
		}
		if financeType == ds.SupplyVerification {
			if !contract.IsFactoring {
				return &workflow.ValidationError{Field: "FinanceType", Message: "договор не допускает факторинг"}
			}
			if bankID == nil || agreementID == nil {
				return &workflow.ValidationError{Field: "BankID", Message: "верификация поставок требует банк и договор факторинга"}
			}
		}

		var supplies []ds.Supply
		if err := tx.Where("id IN ? AND contract_id = ? AND registry_id IS NULL", supplyIDs, contractID).Find(&supplies).Error; err != nil {
			return err
		}
		if len(supplies) != len(supplyIDs) {
			return &workflow.ValidationError{Field: "SupplyIDs", Message: "часть поставок не найдена или уже включена в реестр"}
		}

		var amount float64
		for _, s := range supplies {
			amount += s.Amount
		}

		registry = &ds.Registry{
			Number:               fmt.Sprintf("R-%s", uuid.New().String()[:8]),
			Date:                 time.Now(),
			Amount:               amount,
			ContractID:           contractID,
			CreatorID:            creatorID,
			Status:               ds.StatusInProcess,
			SignStatus:           ds.SignNotSigned,
			FinanceType:          financeType,
			BankID:               bankID,
			FactoringAgreementID: agreementID,
		}
		if err := tx.Create(registry).Error; err != nil {
			return err
		}

		return tx.Model(&ds.Supply{}).Where("id IN ?", supplyIDs).Update("registry_id", registry.ID).Error
	})

	if err != nil {
		return nil, err
	}
	return r.GetRegistryByID(registry.ID)
}

// SignRegistry проводит подпись реестра компанией: вычисляет новый статус
// подписания, выводит из него статус реестра и проставляет банк поставкам.
func (r *Repository) SignRegistry(registryID, userID, companyID uint, artifactKey string) (*SignResult, error) {
	var result *SignResult

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var registry ds.Registry
		if err := tx.Preload("Contract").Preload("Contract.Seller").Preload("Contract.Buyer").Preload("Supplies").
			First(&registry, registryID).Error; err != nil {
			return err
		}

		// конечный реестр не принимает подписи
		if registry.IsFinal() {
			return &workflow.ForbiddenError{Reason: fmt.Sprintf("реестр %d уже в статусе %s", registry.ID, registry.Status)}
		}

		signer, err := workflow.ResolveSignerRole(&registry, companyID)
		if err != nil {
			return err
		}

		next, err := workflow.AdvanceSignStatus(registry.SignStatus, signer)
		if err != nil {
			return err
		}

		hasPersonal, err := hasPersonalDiscount(tx, registry.ID)
		if err != nil {
			return err
		}

		status, verified := workflow.DeriveStatus(next, registry.FinanceType, hasPersonal)
		registry.SignStatus = next
		registry.Status = status
		registry.IsVerified = verified

		if workflow.NeedsBankPropagation(next) && registry.BankID != nil {
			if err := tx.Model(&ds.Supply{}).Where("registry_id = ?", registry.ID).
				Update("bank_id", *registry.BankID).Error; err != nil {
				return err
			}
		}

		if err := tx.Save(&registry).Error; err != nil {
			return err
		}

		signature := ds.Signature{
			UserID:      userID,
			CompanyID:   companyID,
			RegistryID:  &registry.ID,
			ArtifactKey: artifactKey,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(&signature).Error; err != nil {
			return err
		}

		result = &SignResult{
			Registry: &registry,
			Signer:   signer,
			Finished: status == ds.StatusFinished,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeclineRegistry отклоняет реестр стороной: подписи сбрасываются, реестр
// переходит в конечный статус "отклонён".
func (r *Repository) DeclineRegistry(registryID, userID, companyID uint) (*SignResult, error) {
	var result *SignResult

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var registry ds.Registry
		if err := tx.Preload("Contract").Preload("Contract.Seller").Preload("Contract.Buyer").
			First(&registry, registryID).Error; err != nil {
			return err
		}

		decliner, err := workflow.ResolveSignerRole(&registry, companyID)
		if err != nil {
			return err
		}

		if err := workflow.CanDecline(&registry, decliner); err != nil {
			return err
		}

		registry.SignStatus, registry.Status = workflow.ApplyDecline()
		if err := tx.Save(&registry).Error; err != nil {
			return err
		}

		// прежние подписи недействительны
		if err := tx.Where("registry_id = ?", registry.ID).Delete(&ds.Signature{}).Error; err != nil {
			return err
		}

		result = &SignResult{
			Registry: &registry,
			Signer:   decliner,
			Finished: true,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// Подписи по реестру
func (r *Repository) GetRegistrySignatures(registryID uint) ([]ds.Signature, error) {
	var signatures []ds.Signature
	err := r.db.Preload("Company").Preload("User").
		Where("registry_id = ?", registryID).Order("created_at").Find(&signatures).Error
	return signatures, err
}
