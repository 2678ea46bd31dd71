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

// ============ ДОМЕН НЕФОРМАЛИЗОВАННЫЕ ДОКУМЕНТЫ ============

func toDocumentResponse(d *ds.UnformalizedDocument) dto.DocumentResponse {
	receivers := make([]dto.DocumentReceiverResponse, len(d.Receivers))
	for i, r := range d.Receivers {
		receivers[i] = dto.DocumentReceiverResponse{
			CompanyID: r.CompanyID,
			Company:   r.Company.ShortName,
			IsSigned:  r.IsSigned,
			SignedAt:  r.SignedAt,
		}
	}
	return dto.DocumentResponse{
		ID:            d.ID,
		Sender:        d.Sender.ShortName,
		Topic:         d.Topic,
		Message:       d.Message,
		Status:        string(d.Status),
		DeclineReason: d.DeclineReason,
		AttachmentKey: d.AttachmentKey,
		CreatedAt:     d.CreatedAt,
		Receivers:     receivers,
	}
}

// компания видит документ, если она отправитель или получатель
func documentVisibleTo(d *ds.UnformalizedDocument, companyID uint) bool {
	if d.SenderID == companyID {
		return true
	}
	for _, r := range d.Receivers {
		if r.CompanyID == companyID {
			return true
		}
	}
	return false
}

// GetDocuments получает документы компании
// @Summary Получение списка документов
// @Description Возвращает неформализованные документы, отправленные компанией или адресованные ей
// @Tags Documents
// @Produce json
// @Param status query string false "Фильтр по статусу (in_process, signed, declined)"
// @Success 200 {object} dto.DocumentListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/documents [get]
func (h *APIHandler) GetDocuments(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	documents, err := h.Repository.GetDocumentsForCompany(companyID, ds.DocumentStatus(c.Query("status")))
	if err != nil {
		logrus.Error("Error getting documents: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения документов")
		return
	}

	dtoDocuments := make([]dto.DocumentResponse, len(documents))
	for i := range documents {
		dtoDocuments[i] = toDocumentResponse(&documents[i])
	}

	c.JSON(http.StatusOK, dto.DocumentListResponse{
		Documents: dtoDocuments,
		Total:     len(dtoDocuments),
	})
}

// GetDocument получает один документ
// @Summary Получение документа
// @Description Возвращает неформализованный документ с получателями и их подписями
// @Tags Documents
// @Produce json
// @Param id path int true "ID документа"
// @Success 200 {object} dto.DocumentResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/documents/{id} [get]
func (h *APIHandler) GetDocument(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID документа")
		return
	}

	document, err := h.Repository.GetDocumentByID(uint(id))
	if err != nil {
		h.domainError(c, err)
		return
	}
	if !documentVisibleTo(document, companyID) {
		h.errorResponse(c, http.StatusForbidden, "компания не имеет доступа к документу")
		return
	}

	c.JSON(http.StatusOK, toDocumentResponse(document))
}

// CreateDocument создает неформализованный документ
// @Summary Отправка документа на подпись
// @Description Создаёт документ и рассылает его на подпись указанным компаниям; вложение передаётся полем file
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param topic formData string true "Тема документа"
// @Param message formData string false "Сопроводительное сообщение"
// @Param receiver_ids formData []int true "ID компаний-получателей"
// @Param file formData file false "Вложение"
// @Success 201 {object} dto.DocumentResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/documents [post]
func (h *APIHandler) CreateDocument(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	topic := c.PostForm("topic")
	if topic == "" {
		h.errorResponse(c, http.StatusBadRequest, "Тема документа обязательна")
		return
	}
	message := c.PostForm("message")

	var receiverIDs []uint
	for _, v := range c.PostFormArray("receiver_ids") {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			h.errorResponse(c, http.StatusBadRequest, "Неверный ID получателя: "+v)
			return
		}
		receiverIDs = append(receiverIDs, uint(id))
	}

	attachmentKey := ""
	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			h.errorResponse(c, http.StatusInternalServerError, "Ошибка чтения файла")
			return
		}
		data, readErr := io.ReadAll(src)
		src.Close()
		if readErr != nil {
			h.errorResponse(c, http.StatusInternalServerError, "Ошибка чтения файла")
			return
		}

		attachmentKey, err = h.Storage.UploadFile(data, file.Filename)
		if err != nil {
			logrus.Error("Error uploading document attachment: ", err)
			h.errorResponse(c, http.StatusInternalServerError, "Ошибка загрузки вложения")
			return
		}
	}

	document, err := h.Repository.CreateDocument(companyID, topic, message, attachmentKey, receiverIDs)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDocumentResponse(document))
}

// SignDocument подписывает документ получателем
// @Summary Подписание документа
// @Description Фиксирует подпись компании-получателя; когда подписали все, документ переходит в статус "подписан"
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID документа"
// @Param signature formData file false "Файл подписи (.p7s)"
// @Success 200 {object} dto.DocumentResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/documents/{id}/sign [put]
func (h *APIHandler) SignDocument(c *gin.Context) {
	userID, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID документа")
		return
	}

	artifactKey, err := h.uploadSignatureArtifact(c)
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка загрузки файла подписи")
		return
	}

	document, err := h.Repository.SignDocument(uint(id), userID, companyID, artifactKey)
	if err != nil {
		h.cleanupSignatureArtifact(artifactKey)
		h.domainError(c, err)
		return
	}

	if signer, err := h.Repository.GetCompanyByID(companyID); err == nil {
		h.Mailer.NotifyDocumentSigned(document, signer.ShortName)
	}

	c.JSON(http.StatusOK, toDocumentResponse(document))
}

// DeclineDocument отклоняет документ получателем
// @Summary Отклонение документа
// @Description Переводит документ в статус "отклонён" с указанием причины
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path int true "ID документа"
// @Param request body dto.DeclineDocumentRequest true "Причина отклонения"
// @Success 200 {object} dto.DocumentResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/documents/{id}/decline [put]
func (h *APIHandler) DeclineDocument(c *gin.Context) {
	_, companyID, _, err := h.getUserFromContext(c)
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID документа")
		return
	}

	var request dto.DeclineDocumentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	document, err := h.Repository.DeclineDocument(uint(id), companyID, request.Reason)
	if err != nil {
		h.domainError(c, err)
		return
	}

	if decliner, err := h.Repository.GetCompanyByID(companyID); err == nil {
		h.Mailer.NotifyDocumentDeclined(document, decliner.ShortName)
	}

	c.JSON(http.StatusOK, toDocumentResponse(document))
}
