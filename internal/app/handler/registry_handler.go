package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"factoring-backend/internal/app/ds"
	"factoring-backend/internal/app/dto"
	"factoring-backend/internal/app/report"
	"factoring-backend/internal/app/workflow"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ============ ДОМЕН РЕЕСТРЫ ============

func toSupplyResponse(s ds.Supply) dto.SupplyResponse {
	return dto.SupplyResponse{
		ID:           s.ID,
		Number:       s.Number,
		Date:         s.Date,
		Amount:       s.Amount,
		Type:         string(s.Type),
		ContractID:   s.ContractID,
		RegistryID:   s.RegistryID,
		BankID:       s.BankID,
		DelayEndDate: s.DelayEndDate,
		DocumentKey:  s.DocumentKey,
	}
}

func toRegistryResponse(r *ds.Registry, withSupplies bool) dto.RegistryResponse {
	response := dto.RegistryResponse{
		ID:          r.ID,
		Number:      r.Number,
		Date:        r.Date,
		Amount:      r.Amount,
		Status:      string(r.Status),
		SignStatus:  string(r.SignStatus),
		FinanceType: string(r.FinanceType),
		Seller:      r.Contract.Seller.ShortName,
		Buyer:       r.Contract.Buyer.ShortName,
		IsVerified:  r.IsVerified,
	}
	if r.Bank != nil {
		response.Bank = r.Bank.ShortName
	}
	if withSupplies {
		response.Supplies = make([]dto.SupplyResponse, len(r.Supplies))
		for i, s := range r.Supplies {
			response.Supplies[i] = toSupplyResponse(s)
		}
	}
	return response
}

// компания является стороной реестра: продавцом, покупателем или банком
func registryVisibleTo(r *ds.Registry, companyID uint) bool {
	if r.Contract.SellerID == companyID || r.Contract.BuyerID == companyID {
		return true
	}
	return r.BankID != nil && *r.BankID == companyID
}

// GetRegistries получает список реестров компании
// @Summary Получение списка реестров
// @Description Возвращает реестры, в которых компания пользователя выступает продавцом, покупателем или банком
// @Tags Registries
// @Produce json
// @Param status query string false "Фильтр по статусу (in_process, finished, declined)"
// @Param date_from query string false "Начало периода (YYYY-MM-DD)"
// @Param date_to query string false "Конец периода (YYYY-MM-DD)"
// @Success 200 {object} dto.RegistryListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/registries [get]
func (h *APIHandler) GetRegistries(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	var dateFrom, dateTo *time.Time
	if v := c.Query("date_from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.errorResponse(c, http.StatusBadRequest, "Неверный формат date_from")
			return
		}
		dateFrom = &parsed
	}
	if v := c.Query("date_to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.errorResponse(c, http.StatusBadRequest, "Неверный формат date_to")
			return
		}
		dateTo = &parsed
	}

	registries, err := h.Repository.GetRegistries(companyID, ds.RegistryStatus(c.Query("status")), dateFrom, dateTo)
	if err != nil {
		logrus.Error("Error getting registries: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения реестров")
		return
	}

	dtoRegistries := make([]dto.RegistryResponse, len(registries))
	for i := range registries {
		dtoRegistries[i] = toRegistryResponse(&registries[i], false)
	}

	c.JSON(http.StatusOK, dto.RegistryListResponse{
		Registries: dtoRegistries,
		Total:      len(dtoRegistries),
	})
}

// GetRegistry получает один реестр с поставками
// @Summary Получение реестра
// @Description Возвращает реестр со списком поставок; доступен только сторонам реестра
// @Tags Registries
// @Produce json
// @Param id path int true "ID реестра"
// @Success 200 {object} dto.RegistryResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/registries/{id} [get]
func (h *APIHandler) GetRegistry(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID реестра")
		return
	}

	registry, err := h.Repository.GetRegistryByID(uint(id))
	if err != nil {
		h.domainError(c, err)
		return
	}

	if !registryVisibleTo(registry, companyID) {
		h.errorResponse(c, http.StatusForbidden, "компания не является стороной реестра")
		return
	}

	c.JSON(http.StatusOK, toRegistryResponse(registry, true))
}

// CreateRegistry создает реестр из поставок
// @Summary Создание реестра
// @Description Создаёт реестр из свободных поставок по договору; сумма реестра равна сумме поставок
// @Tags Registries
// @Accept json
// @Produce json
// @Param request body dto.CreateRegistryRequest true "Данные реестра"
// @Success 201 {object} dto.RegistryResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/registries [post]
func (h *APIHandler) CreateRegistry(c *gin.Context) {
	userID, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	var request dto.CreateRegistryRequest
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

	registry, err := h.Repository.CreateRegistry(userID, request.ContractID,
		ds.FinanceType(request.FinanceType), request.SupplyIDs, request.BankID, request.FactoringAgreementID)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRegistryResponse(registry, true))
}

// SignRegistry подписывает реестр текущей компанией
// @Summary Подписание реестра
// @Description Фиксирует подпись стороны реестра; файл отсоединённой подписи передаётся полем signature
// @Tags Registries
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID реестра"
// @Param signature formData file false "Файл подписи (.p7s)"
// @Success 200 {object} dto.RegistryResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/registries/{id}/sign [put]
func (h *APIHandler) SignRegistry(c *gin.Context) {
	userID, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID реестра")
		return
	}

	artifactKey, err := h.uploadSignatureArtifact(c)
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка загрузки файла подписи")
		return
	}

	result, err := h.Repository.SignRegistry(uint(id), userID, companyID, artifactKey)
	if err != nil {
		h.cleanupSignatureArtifact(artifactKey)
		h.domainError(c, err)
		return
	}

	// Уведомления уходят после фиксации транзакции и не влияют на ответ
	if result.Finished {
		h.Mailer.NotifyRegistryFinished(result.Registry)
	} else {
		h.Mailer.NotifyRegistrySigned(result.Registry, result.Signer.String())
	}

	c.JSON(http.StatusOK, toRegistryResponse(result.Registry, true))
}

// DeclineRegistry отклоняет реестр текущей компанией
// @Summary Отклонение реестра
// @Description Переводит реестр в конечный статус "отклонён" и аннулирует собранные подписи
// @Tags Registries
// @Produce json
// @Param id path int true "ID реестра"
// @Success 200 {object} dto.RegistryResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/registries/{id}/decline [put]
func (h *APIHandler) DeclineRegistry(c *gin.Context) {
	userID, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID реестра")
		return
	}

	result, err := h.Repository.DeclineRegistry(uint(id), userID, companyID)
	if err != nil {
		h.domainError(c, err)
		return
	}

	h.Mailer.NotifyRegistryDeclined(result.Registry, result.Signer.String(),
		declineAudienceCompanies(result.Registry, result.Signer))

	c.JSON(http.StatusOK, toRegistryResponse(result.Registry, true))
}

// адресаты уведомления об отклонении в виде компаний реестра
func declineAudienceCompanies(registry *ds.Registry, decliner workflow.SignerRole) []ds.Company {
	var companies []ds.Company
	for _, r := range workflow.DeclineAudience(decliner) {
		switch r {
		case workflow.Seller:
			companies = append(companies, registry.Contract.Seller)
		case workflow.Buyer:
			companies = append(companies, registry.Contract.Buyer)
		case workflow.Bank:
			if registry.Bank != nil {
				companies = append(companies, *registry.Bank)
			}
		}
	}
	return companies
}

// GetRegistryReport выгружает реестр в xlsx
// @Summary Выгрузка реестра в Excel
// @Description Формирует xlsx-файл с реквизитами реестра и таблицей поставок
// @Tags Registries
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "ID реестра"
// @Success 200 {file} file
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/registries/{id}/report [get]
func (h *APIHandler) GetRegistryReport(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID реестра")
		return
	}

	registry, err := h.Repository.GetRegistryByID(uint(id))
	if err != nil {
		h.domainError(c, err)
		return
	}
	if !registryVisibleTo(registry, companyID) {
		h.errorResponse(c, http.StatusForbidden, "компания не является стороной реестра")
		return
	}

	data, err := report.RegistryExcel(registry)
	if err != nil {
		logrus.Error("Error building registry report: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка формирования отчёта")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=registry_%s.xlsx", registry.Number))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// uploadSignatureArtifact сохраняет файл подписи из multipart-формы, если он передан
func (h *APIHandler) uploadSignatureArtifact(c *gin.Context) (string, error) {
	file, err := c.FormFile("signature")
	if err != nil {
		// подпись без файла допустима
		return "", nil
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	return h.Storage.UploadFile(data, file.Filename)
}

// cleanupSignatureArtifact подчищает загруженный файл подписи, если запись не удалась
func (h *APIHandler) cleanupSignatureArtifact(artifactKey string) {
	if artifactKey == "" {
		return
	}
	if err := h.Storage.DeleteFile(artifactKey); err != nil {
		logrus.Warn("Failed to clean up signature artifact: ", err)
	}
}
