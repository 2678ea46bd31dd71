package handler

import (
	"io"
	"net/http"
	"strconv"

	"factoring-backend/internal/app/ds"
	"factoring-backend/internal/app/dto"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ============ ДОМЕН ПОСТАВКИ ============

// GetSupplies получает поставки компании
// @Summary Получение списка поставок
// @Description Возвращает поставки по договорам компании с поиском по номеру; free=true оставляет только не включённые в реестр
// @Tags Supplies
// @Produce json
// @Param number query string false "Поиск по номеру поставки"
// @Param free query bool false "Только свободные поставки"
// @Success 200 {object} dto.SupplyListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/supplies [get]
func (h *APIHandler) GetSupplies(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	onlyFree := c.Query("free") == "true"
	supplies, err := h.Repository.GetSupplies(companyID, c.Query("number"), onlyFree)
	if err != nil {
		logrus.Error("Error getting supplies: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения поставок")
		return
	}

	dtoSupplies := make([]dto.SupplyResponse, len(supplies))
	for i, s := range supplies {
		dtoSupplies[i] = toSupplyResponse(s)
	}

	c.JSON(http.StatusOK, dto.SupplyListResponse{
		Supplies: dtoSupplies,
		Total:    len(dtoSupplies),
	})
}

// GetSupply получает одну поставку
// @Summary Получение поставки
// @Description Возвращает поставку по ID; доступна только сторонам договора
// @Tags Supplies
// @Produce json
// @Param id path int true "ID поставки"
// @Success 200 {object} dto.SupplyResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/supplies/{id} [get]
func (h *APIHandler) GetSupply(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID поставки")
		return
	}

	supply, err := h.Repository.GetSupplyByID(uint(id))
	if err != nil {
		h.domainError(c, err)
		return
	}
	if supply.Contract.SellerID != companyID && supply.Contract.BuyerID != companyID {
		h.errorResponse(c, http.StatusForbidden, "компания не является стороной договора поставки")
		return
	}

	c.JSON(http.StatusOK, toSupplyResponse(*supply))
}

// CreateSupply создает поставку
// @Summary Создание поставки
// @Description Создаёт поставку по договору компании
// @Tags Supplies
// @Accept json
// @Produce json
// @Param request body dto.CreateSupplyRequest true "Данные поставки"
// @Success 201 {object} dto.SupplyResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/supplies [post]
func (h *APIHandler) CreateSupply(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	var request dto.CreateSupplyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	contract, err := h.Repository.GetContractByID(request.ContractID)
	if err != nil {
		h.domainError(c, err)
		return
	}
	if contract.SellerID != companyID && contract.BuyerID != companyID {
		h.errorResponse(c, http.StatusForbidden, "компания не является стороной договора")
		return
	}

	supply, err := h.Repository.CreateSupply(request.Number, request.Date, request.Amount,
		ds.SupplyType(request.Type), request.ContractID, request.DelayEndDate)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSupplyResponse(*supply))
}

// DeleteSupply удаляет поставку
// @Summary Удаление поставки
// @Description Удаляет поставку, пока она не включена в реестр
// @Tags Supplies
// @Produce json
// @Param id path int true "ID поставки"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/supplies/{id} [delete]
func (h *APIHandler) DeleteSupply(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID поставки")
		return
	}

	supply, err := h.Repository.GetSupplyByID(uint(id))
	if err != nil {
		h.domainError(c, err)
		return
	}
	if supply.Contract.SellerID != companyID && supply.Contract.BuyerID != companyID {
		h.errorResponse(c, http.StatusForbidden, "компания не является стороной договора поставки")
		return
	}

	if err := h.Repository.DeleteSupply(uint(id)); err != nil {
		h.domainError(c, err)
		return
	}

	h.successResponse(c, http.StatusOK, "Поставка успешно удалена", nil)
}

// UploadSupplyDocument загружает файл документа поставки
// @Summary Загрузка документа поставки
// @Description Сохраняет файл первичного документа в хранилище и привязывает его к поставке
// @Tags Supplies
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID поставки"
// @Param file formData file true "Файл документа"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/supplies/{id}/document [post]
func (h *APIHandler) UploadSupplyDocument(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID поставки")
		return
	}

	supply, err := h.Repository.GetSupplyByID(uint(id))
	if err != nil {
		h.domainError(c, err)
		return
	}
	if supply.Contract.SellerID != companyID && supply.Contract.BuyerID != companyID {
		h.errorResponse(c, http.StatusForbidden, "компания не является стороной договора поставки")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Файл не найден в запросе")
		return
	}

	src, err := file.Open()
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка чтения файла")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка чтения файла")
		return
	}

	documentKey, err := h.Storage.UploadFile(data, file.Filename)
	if err != nil {
		logrus.Error("Error uploading supply document: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка загрузки документа")
		return
	}

	if err := h.Repository.UpdateSupplyDocument(uint(id), documentKey); err != nil {
		// запись не удалась - подчищаем только что загруженный объект
		if delErr := h.Storage.DeleteFile(documentKey); delErr != nil {
			logrus.Warn("Failed to clean up uploaded document: ", delErr)
		}
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка привязки документа")
		return
	}

	// Прежний файл удаляем после успешной привязки нового
	if supply.DocumentKey != "" {
		if err := h.Storage.DeleteFile(supply.DocumentKey); err != nil {
			logrus.Warn("Failed to delete old supply document: ", err)
		}
	}

	h.successResponse(c, http.StatusOK, "Документ успешно загружен", gin.H{
		"document_key": documentKey,
	})
}

// GetSupplyDocumentURL возвращает временную ссылку на документ поставки
// @Summary Ссылка на документ поставки
// @Description Возвращает временный URL (1 час) для скачивания документа поставки
// @Tags Supplies
// @Produce json
// @Param id path int true "ID поставки"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/supplies/{id}/document [get]
func (h *APIHandler) GetSupplyDocumentURL(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID поставки")
		return
	}

	supply, err := h.Repository.GetSupplyByID(uint(id))
	if err != nil {
		h.domainError(c, err)
		return
	}
	if supply.Contract.SellerID != companyID && supply.Contract.BuyerID != companyID {
		h.errorResponse(c, http.StatusForbidden, "компания не является стороной договора поставки")
		return
	}
	if supply.DocumentKey == "" {
		h.errorResponse(c, http.StatusNotFound, "у поставки нет загруженного документа")
		return
	}

	url, err := h.Storage.GetFileURL(supply.DocumentKey)
	if err != nil {
		logrus.Error("Error generating document URL: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения ссылки")
		return
	}

	h.successResponse(c, http.StatusOK, "", gin.H{"url": url})
}
