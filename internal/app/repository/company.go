package repository

import (
	"time"

	"factoring-backend/internal/app/ds"
)

// Методы для компаний, настроек дисконтирования и календаря праздничных дней

func (r *Repository) GetCompanyByID(id uint) (*ds.Company, error) {
	var company ds.Company
	err := r.db.First(&company, id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *Repository) GetCompanies(search string) ([]ds.Company, error) {
	var companies []ds.Company
	query := r.db.Model(&ds.Company{})
	if search != "" {
		query = query.Where("short_name ILIKE ? OR tin LIKE ?", "%"+search+"%", search+"%")
	}
	err := query.Find(&companies).Error
	return companies, err
}

func (r *Repository) CreateCompany(shortName, fullName, tin, email string, isBank bool) (*ds.Company, error) {
	company := ds.Company{
		ShortName: shortName,
		FullName:  fullName,
		TIN:       tin,
		Email:     email,
		IsBank:    isBank,
	}
	err := r.db.Create(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Получить договор между продавцом и покупателем
func (r *Repository) GetContractByID(id uint) (*ds.Contract, error) {
	var contract ds.Contract
	err := r.db.Preload("Seller").Preload("Buyer").First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *Repository) GetContractsForCompany(companyID uint) ([]ds.Contract, error) {
	var contracts []ds.Contract
	err := r.db.Preload("Seller").Preload("Buyer").
		Where("seller_id = ? OR buyer_id = ?", companyID, companyID).
		Find(&contracts).Error
	return contracts, err
}

func (r *Repository) CreateContract(number string, date time.Time, sellerID, buyerID uint, isDD, isFactoring, isRequired bool) (*ds.Contract, error) {
	contract := ds.Contract{
		Number:               number,
		Date:                 date,
		SellerID:             sellerID,
		BuyerID:              buyerID,
		IsDynamicDiscounting: isDD,
		IsFactoring:          isFactoring,
		IsRequiredRegistry:   isRequired,
	}
	err := r.db.Create(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *Repository) GetFactoringAgreement(id uint) (*ds.FactoringAgreement, error) {
	var agreement ds.FactoringAgreement
	err := r.db.Preload("Bank").First(&agreement, id).Error
	if err != nil {
		return nil, err
	}
	return &agreement, nil
}

// Настройки дисконтирования компании (создаются с дефолтами при первом обращении)
func (r *Repository) GetDiscountSettings(companyID uint) (*ds.DiscountSettings, error) {
	var settings ds.DiscountSettings
	err := r.db.Where("company_id = ?", companyID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}

	settings = ds.DiscountSettings{
		CompanyID:          companyID,
		DaysType:           ds.CalendarDays,
		PaymentWeekDays:    31, // будние дни
		MinimumDaysToShift: 1,
	}
	if err := r.db.Create(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *Repository) UpdateDiscountSettings(companyID uint, daysType ds.DaysType, weekDays, minShift int) error {
	settings, err := r.GetDiscountSettings(companyID)
	if err != nil {
		return err
	}
	settings.DaysType = daysType
	settings.PaymentWeekDays = weekDays
	settings.MinimumDaysToShift = minShift
	return r.db.Save(settings).Error
}

// Календарь праздничных дней

func (r *Repository) GetActiveFreeDays() ([]ds.FreeDay, error) {
	var days []ds.FreeDay
	err := r.db.Where("is_active = ?", true).Order("date").Find(&days).Error
	return days, err
}

func (r *Repository) CreateFreeDay(day time.Time) (*ds.FreeDay, error) {
	freeDay := ds.FreeDay{Date: day, IsActive: true}
	err := r.db.Create(&freeDay).Error
	if err != nil {
		return nil, err
	}
	return &freeDay, nil
}

func (r *Repository) DeactivateFreeDay(id uint) error {
	return r.db.Model(&ds.FreeDay{}).Where("id = ?", id).Update("is_active", false).Error
}
