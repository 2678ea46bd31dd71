package handler

import (
	"net/http"
	"strconv"
	"time"

	"factoring-backend/internal/app/ds"
	"factoring-backend/internal/app/dto"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ============ СПРАВОЧНИКИ И НАСТРОЙКИ ============

// GetCompanies получает справочник компаний
// @Summary Получение списка компаний
// @Description Возвращает компании с поиском по названию или ИНН
// @Tags Companies
// @Produce json
// @Param query query string false "Поиск по названию или ИНН"
// @Success 200 {array} dto.CompanyResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/companies [get]
func (h *APIHandler) GetCompanies(c *gin.Context) {
	companies, err := h.Repository.GetCompanies(c.Query("query"))
	if err != nil {
		logrus.Error("Error getting companies: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения компаний")
		return
	}

	response := make([]dto.CompanyResponse, len(companies))
	for i, company := range companies {
		response[i] = dto.CompanyResponse{
			ID:        company.ID,
			ShortName: company.ShortName,
			TIN:       company.TIN,
			IsBank:    company.IsBank,
		}
	}
	c.JSON(http.StatusOK, response)
}

// GetContracts получает договоры компании
// @Summary Получение договоров компании
// @Description Возвращает договоры, где компания пользователя выступает продавцом или покупателем
// @Tags Companies
// @Produce json
// @Success 200 {array} dto.ContractResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/contracts [get]
func (h *APIHandler) GetContracts(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	contracts, err := h.Repository.GetContractsForCompany(companyID)
	if err != nil {
		logrus.Error("Error getting contracts: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения договоров")
		return
	}

	response := make([]dto.ContractResponse, len(contracts))
	for i, contract := range contracts {
		response[i] = dto.ContractResponse{
			ID:                   contract.ID,
			Number:               contract.Number,
			Date:                 contract.Date,
			Seller:               contract.Seller.ShortName,
			Buyer:                contract.Buyer.ShortName,
			IsDynamicDiscounting: contract.IsDynamicDiscounting,
			IsFactoring:          contract.IsFactoring,
		}
	}
	c.JSON(http.StatusOK, response)
}

// GetDiscountSettings получает настройки дисконтирования компании
// @Summary Получение настроек дисконтирования
// @Description Возвращает настройки проверки плановой даты оплаты; при первом обращении создаются значения по умолчанию
// @Tags Settings
// @Produce json
// @Success 200 {object} dto.DiscountSettingsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/settings/discount [get]
func (h *APIHandler) GetDiscountSettings(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	settings, err := h.Repository.GetDiscountSettings(companyID)
	if err != nil {
		logrus.Error("Error getting discount settings: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения настроек")
		return
	}

	c.JSON(http.StatusOK, dto.DiscountSettingsResponse{
		CompanyID:          settings.CompanyID,
		DaysType:           string(settings.DaysType),
		PaymentWeekDays:    settings.PaymentWeekDays,
		MinimumDaysToShift: settings.MinimumDaysToShift,
	})
}

// UpdateDiscountSettings меняет настройки дисконтирования компании
// @Summary Изменение настроек дисконтирования
// @Description Меняет тип дней, маску платёжных дней недели и минимальный сдвиг даты оплаты
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body dto.UpdateDiscountSettingsRequest true "Новые настройки"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/settings/discount [put]
func (h *APIHandler) UpdateDiscountSettings(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	var request dto.UpdateDiscountSettingsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	err = h.Repository.UpdateDiscountSettings(companyID, ds.DaysType(request.DaysType),
		request.PaymentWeekDays, request.MinimumDaysToShift)
	if err != nil {
		h.domainError(c, err)
		return
	}

	h.successResponse(c, http.StatusOK, "Настройки успешно обновлены", nil)
}

// GetFreeDays получает календарь праздничных дней
// @Summary Получение праздничных дней
// @Description Возвращает активные праздничные дни, исключаемые из рабочих при проверке даты оплаты
// @Tags Settings
// @Produce json
// @Success 200 {array} dto.FreeDayResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/free-days [get]
func (h *APIHandler) GetFreeDays(c *gin.Context) {
	days, err := h.Repository.GetActiveFreeDays()
	if err != nil {
		logrus.Error("Error getting free days: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения праздничных дней")
		return
	}

	response := make([]dto.FreeDayResponse, len(days))
	for i, day := range days {
		response[i] = dto.FreeDayResponse{
			ID:       day.ID,
			Date:     day.Date,
			IsActive: day.IsActive,
		}
	}
	c.JSON(http.StatusOK, response)
}

// CreateFreeDay добавляет праздничный день (только администратор)
// @Summary Добавление праздничного дня
// @Description Добавляет дату в календарь праздничных дней
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body dto.CreateFreeDayRequest true "Дата"
// @Success 201 {object} dto.FreeDayResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/free-days [post]
func (h *APIHandler) CreateFreeDay(c *gin.Context) {
	var request dto.CreateFreeDayRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	day, err := h.Repository.CreateFreeDay(request.Date.Truncate(24 * time.Hour))
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FreeDayResponse{
		ID:       day.ID,
		Date:     day.Date,
		IsActive: day.IsActive,
	})
}

// DeleteFreeDay деактивирует праздничный день (только администратор)
// @Summary Деактивация праздничного дня
// @Description Помечает праздничный день неактивным, сохраняя историю
// @Tags Settings
// @Produce json
// @Param id path int true "ID праздничного дня"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/free-days/{id} [delete]
func (h *APIHandler) DeleteFreeDay(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID праздничного дня")
		return
	}

	if err := h.Repository.DeactivateFreeDay(uint(id)); err != nil {
		h.domainError(c, err)
		return
	}

	h.successResponse(c, http.StatusOK, "Праздничный день деактивирован", nil)
}
