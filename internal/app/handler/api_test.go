package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"factoring-backend/internal/app/config"
	"factoring-backend/internal/app/ds"
	"factoring-backend/internal/app/dto"
	"factoring-backend/internal/app/mailer"
	"factoring-backend/internal/app/repository"
	"factoring-backend/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var handlerDBCounter int64

func newTestHandler(t *testing.T) (*APIHandler, *repository.Repository) {
	t.Helper()

	n := atomic.AddInt64(&handlerDBCounter, 1)
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", n)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo, err := repository.NewWithDB(db)
	require.NoError(t, err)

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Token:         "test",
			ExpiresIn:     time.Hour,
			SigningMethod: jwt.SigningMethodHS256,
		},
	}

	authHandler := NewAuthHandler(repo, nil, cfg)
	apiHandler := NewAPIHandler(repo, nil, mailer.NewMailer(config.SMTPConfig{}), authHandler)
	return apiHandler, repo
}

// хранилище-заглушка, запоминающее загрузки и удаления файлов
type fakeStorage struct {
	uploads int
	deleted []string
}

func (s *fakeStorage) UploadFile(fileData []byte, originalFilename string) (string, error) {
	s.uploads++
	return fmt.Sprintf("obj_%d_%s", s.uploads, originalFilename), nil
}

func (s *fakeStorage) DeleteFile(objectName string) error {
	s.deleted = append(s.deleted, objectName)
	return nil
}

func (s *fakeStorage) GetFileURL(objectName string) (string, error) {
	return "http://storage.local/" + objectName, nil
}

type apiFixture struct {
	seller   *ds.Company
	buyer    *ds.Company
	bank     *ds.Company
	stranger *ds.Company
	contract *ds.Contract
	supplies []uint
}

func seedAPIFixture(t *testing.T, repo *repository.Repository) apiFixture {
	t.Helper()

	seller, err := repo.CreateCompany("ООО Ромашка", "ООО \"Ромашка\"", "7701234567", "seller@example.org", false)
	require.NoError(t, err)
	buyer, err := repo.CreateCompany("АО Сеть", "АО \"Торговая Сеть\"", "7709876543", "buyer@example.org", false)
	require.NoError(t, err)
	bank, err := repo.CreateCompany("Банк Альфа", "АО \"Банк Альфа\"", "7702000000", "bank@example.org", true)
	require.NoError(t, err)
	stranger, err := repo.CreateCompany("ООО Чужой", "ООО \"Чужой\"", "7703000000", "", false)
	require.NoError(t, err)

	contract, err := repo.CreateContract("Д-1", time.Now(), seller.ID, buyer.ID, true, true, true)
	require.NoError(t, err)

	var supplyIDs []uint
	for i := 0; i < 2; i++ {
		supply, err := repo.CreateSupply(fmt.Sprintf("П-%d", i+1), time.Now(), 1000, ds.SupplyInvoice, contract.ID, nil)
		require.NoError(t, err)
		supplyIDs = append(supplyIDs, supply.ID)
	}

	return apiFixture{
		seller:   seller,
		buyer:    buyer,
		bank:     bank,
		stranger: stranger,
		contract: contract,
		supplies: supplyIDs,
	}
}

// маршруты с подменой авторизации: пользователь и компания фиксированы
func testRouter(h *APIHandler, userID, companyID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("companyID", companyID)
		c.Set("userRole", role.Manager)
	})

	api := r.Group("/api")
	api.GET("/registries/:id", h.GetRegistry)
	api.PUT("/registries/:id/sign", h.SignRegistry)
	api.PUT("/registries/:id/decline", h.DeclineRegistry)
	api.POST("/registries/:id/discount", h.CreateDiscount)
	api.PUT("/documents/:id/sign", h.SignDocument)
	api.POST("/auth/register", h.AuthHandler.RegisterUser)
	api.POST("/auth/login", h.AuthHandler.LoginUser)
	return r
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegistryHTTPStatuses(t *testing.T) {
	h, repo := newTestHandler(t)
	f := seedAPIFixture(t, repo)

	registry, err := repo.CreateRegistry(1, f.contract.ID, ds.DynamicDiscounting, f.supplies, nil, nil)
	require.NoError(t, err)

	t.Run("подписание посторонней компанией запрещено", func(t *testing.T) {
		router := testRouter(h, 1, f.stranger.ID)
		w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/registries/%d/sign", registry.ID), nil)
		require.Equal(t, http.StatusForbidden, w.Code)

		var response dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "fail", response.Status)
	})

	t.Run("подписание стороной договора", func(t *testing.T) {
		router := testRouter(h, 1, f.seller.ID)
		w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/registries/%d/sign", registry.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var response dto.RegistryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, string(ds.SignedBySeller), response.SignStatus)
	})

	t.Run("повторное подписание той же стороной запрещено", func(t *testing.T) {
		router := testRouter(h, 1, f.seller.ID)
		w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/registries/%d/sign", registry.ID), nil)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("несуществующий реестр даёт 404", func(t *testing.T) {
		router := testRouter(h, 1, f.seller.ID)
		w := doJSON(t, router, http.MethodGet, "/api/registries/9999", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("отклонение покупателем и неизменяемость после", func(t *testing.T) {
		router := testRouter(h, 1, f.buyer.ID)
		w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/registries/%d/decline", registry.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var response dto.RegistryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, string(ds.StatusDeclined), response.Status)
		assert.Equal(t, string(ds.SignNotSigned), response.SignStatus)

		// конечный статус блокирует дальнейшее подписание
		sellerRouter := testRouter(h, 1, f.seller.ID)
		w = doJSON(t, sellerRouter, http.MethodPut, fmt.Sprintf("/api/registries/%d/sign", registry.ID), nil)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

// запрос на подписание с файлом отсоединённой подписи
func doSignWithFile(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("signature", "sig.p7s")
	require.NoError(t, err)
	_, err = part.Write([]byte("signed-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignatureArtifactCleanup(t *testing.T) {
	h, repo := newTestHandler(t)
	fake := &fakeStorage{}
	h.Storage = fake
	f := seedAPIFixture(t, repo)

	registry, err := repo.CreateRegistry(1, f.contract.ID, ds.DynamicDiscounting, f.supplies, nil, nil)
	require.NoError(t, err)

	sellerRouter := testRouter(h, 1, f.seller.ID)
	signPath := fmt.Sprintf("/api/registries/%d/sign", registry.ID)

	t.Run("файл успешной подписи остаётся в хранилище", func(t *testing.T) {
		w := doSignWithFile(t, sellerRouter, signPath)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, fake.uploads)
		assert.Empty(t, fake.deleted)
	})

	t.Run("при отказе в подписании реестра файл удаляется", func(t *testing.T) {
		w := doSignWithFile(t, sellerRouter, signPath)
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, 2, fake.uploads)
		assert.Equal(t, []string{"obj_2_sig.p7s"}, fake.deleted)
	})

	t.Run("при отказе в подписании документа файл удаляется", func(t *testing.T) {
		document, err := repo.CreateDocument(f.seller.ID, "Акт сверки", "", "", []uint{f.buyer.ID})
		require.NoError(t, err)

		buyerRouter := testRouter(h, 2, f.buyer.ID)
		docPath := fmt.Sprintf("/api/documents/%d/sign", document.ID)

		w := doSignWithFile(t, buyerRouter, docPath)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 3, fake.uploads)

		// повторная подпись отклоняется, её файл не должен осиротеть
		w = doSignWithFile(t, buyerRouter, docPath)
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, 4, fake.uploads)
		assert.Equal(t, []string{"obj_2_sig.p7s", "obj_4_sig.p7s"}, fake.deleted)
	})
}

func TestDiscountValidationHTTP(t *testing.T) {
	h, repo := newTestHandler(t)
	f := seedAPIFixture(t, repo)

	registry, err := repo.CreateRegistry(1, f.contract.ID, ds.DynamicDiscounting, f.supplies, nil, nil)
	require.NoError(t, err)

	// у покупателя настроен минимальный сдвиг в 3 дня
	require.NoError(t, repo.UpdateDiscountSettings(f.buyer.ID, ds.CalendarDays, 127, 3))

	router := testRouter(h, 1, f.seller.ID)

	t.Run("слишком ранняя дата оплаты даёт 422 с полем", func(t *testing.T) {
		request := dto.CreateDiscountRequest{
			Rate:               2.5,
			PlannedPaymentDate: time.Now().Add(24 * time.Hour),
		}
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/registries/%d/discount", registry.ID), request)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "PlannedPaymentDate", response.Field)
	})

	t.Run("допустимая дата создаёт дисконт", func(t *testing.T) {
		request := dto.CreateDiscountRequest{
			Rate:               2.5,
			PlannedPaymentDate: time.Now().Add(10 * 24 * time.Hour),
		}
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/registries/%d/discount", registry.ID), request)
		require.Equal(t, http.StatusCreated, w.Code)

		var response dto.DiscountResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.InDelta(t, 50.0, response.DiscountedAmount, 0.001)
		assert.InDelta(t, 1950.0, response.AmountToPay, 0.001)
		assert.Equal(t, string(ds.DiscountPersonal), response.DiscountingSource)
	})

	t.Run("неверная ставка даёт 400 на этапе binding", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/registries/%d/discount", registry.ID),
			gin.H{"rate": -1, "planned_payment_date": time.Now().Add(10 * 24 * time.Hour)})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHTTP(t *testing.T) {
	h, repo := newTestHandler(t)
	f := seedAPIFixture(t, repo)

	router := testRouter(h, 0, 0)

	t.Run("регистрация и вход", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
			Login:     "ivanov",
			Password:  "secret123",
			FullName:  "Иванов Иван",
			CompanyID: f.seller.ID,
			Role:      int(role.Manager),
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, http.MethodPost, "/api/auth/login", dto.LoginRequest{
			Login:    "ivanov",
			Password: "secret123",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response["token"])
		assert.Equal(t, "Bearer", response["token_type"])
	})

	t.Run("неверный пароль даёт 401", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/login", dto.LoginRequest{
			Login:    "ivanov",
			Password: "wrong",
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("повторная регистрация логина запрещена", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
			Login:     "ivanov",
			Password:  "another123",
			FullName:  "Другой Иванов",
			CompanyID: f.seller.ID,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}
