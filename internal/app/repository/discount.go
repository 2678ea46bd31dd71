package repository

import (
	"errors"
	"fmt"
	"math"
	"time"

	"factoring-backend/internal/app/ds"
	"factoring-backend/internal/app/workflow"

	"gorm.io/gorm"
)

// Методы для дисконтов. Дисконт существует максимум один на реестр и может
// создаваться/меняться только пока реестр не подписан всеми сторонами.

func hasPersonalDiscount(tx *gorm.DB, registryID uint) (bool, error) {
	var count int64
	err := tx.Model(&ds.Discount{}).
		Where("registry_id = ? AND discounting_source = ?", registryID, ds.DiscountPersonal).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) GetDiscountByRegistry(registryID uint) (*ds.Discount, error) {
	var discount ds.Discount
	err := r.db.Where("registry_id = ?", registryID).First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

// округление денежных сумм до копеек
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// проверка даты оплаты по настройкам плательщика (покупателя по договору)
func (r *Repository) validatePaymentDate(tx *gorm.DB, payerID uint, planned time.Time) error {
	var settings ds.DiscountSettings
	err := tx.Where("company_id = ?", payerID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// без настроек ограничений на дату нет
		return nil
	}
	if err != nil {
		return err
	}

	var days []ds.FreeDay
	if err := tx.Where("is_active = ?", true).Find(&days).Error; err != nil {
		return err
	}

	return workflow.ValidatePlannedPaymentDate(time.Now(), planned, settings, workflow.NormalizeFreeDays(days))
}

// CreateDiscount создаёт дисконт по реестру динамического дисконтирования.
// Если обе торговые стороны уже подписали реестр, личный дисконт сразу
// завершает его.
func (r *Repository) CreateDiscount(registryID uint, rate float64, planned time.Time, source ds.DiscountingSource) (*ds.Discount, error) {
	var discount *ds.Discount

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var registry ds.Registry
		if err := tx.Preload("Contract").First(&registry, registryID).Error; err != nil {
			return err
		}

		if registry.FinanceType != ds.DynamicDiscounting {
			return &workflow.ForbiddenError{Reason: "дисконт доступен только при динамическом дисконтировании"}
		}
		if registry.IsFinal() || registry.SignStatus == ds.SignedByAll {
			return &workflow.ForbiddenError{Reason: fmt.Sprintf("реестр %d не принимает изменения дисконта", registry.ID)}
		}

		if rate <= 0 || rate >= 100 {
			return &workflow.ValidationError{Field: "Rate", Message: "ставка должна быть в интервале (0, 100)"}
		}

		if err := r.validatePaymentDate(tx, registry.Contract.BuyerID, planned); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&ds.Discount{}).Where("registry_id = ?", registryID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return &workflow.ValidationError{Field: "RegistryID", Message: "дисконт по реестру уже существует"}
		}

		discounted := roundMoney(registry.Amount * rate / 100)
		discount = &ds.Discount{
			RegistryID:         registryID,
			Rate:               rate,
			DiscountedAmount:   discounted,
			AmountToPay:        roundMoney(registry.Amount - discounted),
			PlannedPaymentDate: planned,
			DiscountingSource:  source,
		}
		if err := tx.Create(discount).Error; err != nil {
			return err
		}

		// появление личного дисконта может завершить уже подписанный реестр
		status, verified := workflow.DeriveStatus(registry.SignStatus, registry.FinanceType, source == ds.DiscountPersonal)
		if status != registry.Status {
			registry.Status = status
			registry.IsVerified = verified
			if err := tx.Save(&registry).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return discount, nil
}

// UpdateDiscount меняет условия дисконта. Изменение ставки обесценивает уже
// собранные подписи: статус подписания сбрасывается, подписи удаляются.
func (r *Repository) UpdateDiscount(registryID uint, rate float64, planned time.Time) (*ds.Discount, error) {
	var discount *ds.Discount

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var registry ds.Registry
		if err := tx.Preload("Contract").First(&registry, registryID).Error; err != nil {
			return err
		}

		if registry.IsFinal() || registry.SignStatus == ds.SignedByAll {
			return &workflow.ForbiddenError{Reason: fmt.Sprintf("реестр %d не принимает изменения дисконта", registry.ID)}
		}

		var existing ds.Discount
		if err := tx.Where("registry_id = ?", registryID).First(&existing).Error; err != nil {
			return err
		}

		if rate <= 0 || rate >= 100 {
			return &workflow.ValidationError{Field: "Rate", Message: "ставка должна быть в интервале (0, 100)"}
		}

		if err := r.validatePaymentDate(tx, registry.Contract.BuyerID, planned); err != nil {
			return err
		}

		rateChanged := existing.Rate != rate

		discounted := roundMoney(registry.Amount * rate / 100)
		existing.Rate = rate
		existing.DiscountedAmount = discounted
		existing.AmountToPay = roundMoney(registry.Amount - discounted)
		existing.PlannedPaymentDate = planned
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		if rateChanged {
			// новая ставка требует повторного подписания всеми сторонами
			registry.SignStatus = ds.SignNotSigned
			registry.Status = ds.StatusInProcess
			registry.IsVerified = false
			if err := tx.Save(&registry).Error; err != nil {
				return err
			}
			if err := tx.Where("registry_id = ?", registry.ID).Delete(&ds.Signature{}).Error; err != nil {
				return err
			}
		}

		discount = &existing
		return nil
	})

	if err != nil {
		return nil, err
	}
	return discount, nil
}
