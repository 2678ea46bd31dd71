package handler

import (
	"net/http"
	"strconv"

	"factoring-backend/internal/app/ds"
	"factoring-backend/internal/app/dto"

	"github.com/gin-gonic/gin"
)

// ============ ДОМЕН ДИСКОНТЫ ============

func toDiscountResponse(d *ds.Discount) dto.DiscountResponse {
	return dto.DiscountResponse{
		ID:                 d.ID,
		RegistryID:         d.RegistryID,
		Rate:               d.Rate,
		DiscountedAmount:   d.DiscountedAmount,
		AmountToPay:        d.AmountToPay,
		PlannedPaymentDate: d.PlannedPaymentDate,
		DiscountingSource:  string(d.DiscountingSource),
	}
}

// проверка, что компания - сторона реестра, и разбор ID из пути
func (h *APIHandler) registryForDiscount(c *gin.Context) (*ds.Registry, bool) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return nil, false
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID реестра")
		return nil, false
	}

	registry, err := h.Repository.GetRegistryByID(uint(id))
	if err != nil {
		h.domainError(c, err)
		return nil, false
	}
	if !registryVisibleTo(registry, companyID) {
		h.errorResponse(c, http.StatusForbidden, "компания не является стороной реестра")
		return nil, false
	}
	return registry, true
}

// GetDiscount получает дисконт реестра
// @Summary Получение дисконта
// @Description Возвращает дисконт по реестру динамического дисконтирования
// @Tags Discounts
// @Produce json
// @Param id path int true "ID реестра"
// @Success 200 {object} dto.DiscountResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/registries/{id}/discount [get]
func (h *APIHandler) GetDiscount(c *gin.Context) {
	registry, ok := h.registryForDiscount(c)
	if !ok {
		return
	}

	discount, err := h.Repository.GetDiscountByRegistry(registry.ID)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toDiscountResponse(discount))
}

// CreateDiscount создает дисконт по реестру
// @Summary Создание дисконта
// @Description Создаёт дисконт по реестру динамического дисконтирования; плановая дата оплаты проверяется по настройкам покупателя
// @Tags Discounts
// @Accept json
// @Produce json
// @Param id path int true "ID реестра"
// @Param request body dto.CreateDiscountRequest true "Условия дисконта"
// @Success 201 {object} dto.DiscountResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/registries/{id}/discount [post]
func (h *APIHandler) CreateDiscount(c *gin.Context) {
	registry, ok := h.registryForDiscount(c)
	if !ok {
		return
	}

	var request dto.CreateDiscountRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	source := ds.DiscountingSource(request.DiscountingSource)
	if source == "" {
		source = ds.DiscountPersonal
	}

	discount, err := h.Repository.CreateDiscount(registry.ID, request.Rate, request.PlannedPaymentDate, source)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDiscountResponse(discount))
}

// UpdateDiscount меняет условия дисконта
// @Summary Изменение дисконта
// @Description Меняет ставку и плановую дату оплаты; изменение ставки сбрасывает собранные подписи
// @Tags Discounts
// @Accept json
// @Produce json
// @Param id path int true "ID реестра"
// @Param request body dto.UpdateDiscountRequest true "Новые условия"
// @Success 200 {object} dto.DiscountResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/registries/{id}/discount [put]
func (h *APIHandler) UpdateDiscount(c *gin.Context) {
	registry, ok := h.registryForDiscount(c)
	if !ok {
		return
	}

	var request dto.UpdateDiscountRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	discount, err := h.Repository.UpdateDiscount(registry.ID, request.Rate, request.PlannedPaymentDate)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toDiscountResponse(discount))
}
