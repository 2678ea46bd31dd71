package handler

import (
	"errors"
	"fmt"
	"net/http"

	"factoring-backend/internal/app/dto"
	"factoring-backend/internal/app/mailer"
	"factoring-backend/internal/app/repository"
	"factoring-backend/internal/app/role"
	"factoring-backend/internal/app/workflow"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ObjectStorage - операции с файлами в объектном хранилище (MinIO)
type ObjectStorage interface {
	UploadFile(fileData []byte, originalFilename string) (string, error)
	DeleteFile(objectName string) error
	GetFileURL(objectName string) (string, error)
}

// APIHandler содержит обработчики для REST API
type APIHandler struct {
	Repository  *repository.Repository
	Storage     ObjectStorage
	Mailer      *mailer.Mailer
	AuthHandler *AuthHandler
}

func NewAPIHandler(r *repository.Repository, objectStorage ObjectStorage, m *mailer.Mailer, authHandler *AuthHandler) *APIHandler {
	return &APIHandler{
		Repository:  r,
		Storage:     objectStorage,
		Mailer:      m,
		AuthHandler: authHandler,
	}
}

// Получение текущего пользователя из контекста
func (h *APIHandler) getUserFromContext(c *gin.Context) (uint, uint, role.Role, error) {
	userID, exists := c.Get("userID")
	if !exists {
		logrus.Warn("userID not found in context")
		return 0, 0, role.Employee, fmt.Errorf("user not authenticated")
	}

	userRole, _ := c.Get("userRole")
	r, _ := userRole.(role.Role)

	id, ok := userID.(uint)
	if !ok {
		logrus.Errorf("getUserFromContext: invalid userID type: %T", userID)
		return 0, 0, r, fmt.Errorf("invalid user ID")
	}

	companyID, _ := c.Get("companyID")
	company, ok := companyID.(uint)
	if !ok {
		logrus.Errorf("getUserFromContext: invalid companyID type: %T", companyID)
		return id, 0, r, fmt.Errorf("invalid company ID")
	}

	return id, company, r, nil
}

// ============ Вспомогательные функции ============

func (h *APIHandler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Status:  "fail",
		Message: message,
	})
}

func (h *APIHandler) successResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := dto.SuccessResponse{
		Status:  "success",
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(statusCode, response)
}

// domainError переводит доменные ошибки в HTTP-статусы:
// запреты в 403, ошибки валидации в 422, отсутствующие записи в 404.
func (h *APIHandler) domainError(c *gin.Context, err error) {
	var forbidden *workflow.ForbiddenError
	var validation *workflow.ValidationError

	switch {
	case errors.As(err, &forbidden):
		h.errorResponse(c, http.StatusForbidden, forbidden.Reason)
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Status:  "fail",
			Message: validation.Message,
			Field:   validation.Field,
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		h.errorResponse(c, http.StatusNotFound, "запись не найдена")
	default:
		logrus.Error(err)
		h.errorResponse(c, http.StatusInternalServerError, "внутренняя ошибка сервера")
	}
}
