package repository

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"factoring-backend/internal/app/ds"
	"factoring-backend/internal/app/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// тестовый репозиторий на in-memory SQLite
func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo, err := NewWithDB(db)
	require.NoError(t, err)
	return repo
}

type fixture struct {
	seller   *ds.Company
	buyer    *ds.Company
	bank     *ds.Company
	contract *ds.Contract
	supplies []*ds.Supply
}

func seedFixture(t *testing.T, repo *Repository) *fixture {
	t.Helper()

	seller, err := repo.CreateCompany(`ООО "Ромашка"`, "", "7701234567", "seller@example.com", false)
	require.NoError(t, err)
	buyer, err := repo.CreateCompany(`АО "Торговый дом"`, "", "7707654321", "buyer@example.com", false)
	require.NoError(t, err)
	bank, err := repo.CreateCompany(`ПАО "Банк"`, "", "7700000001", "bank@example.com", true)
	require.NoError(t, err)

	contract, err := repo.CreateContract("Д-1", time.Now(), seller.ID, buyer.ID, true, true, true)
	require.NoError(t, err)

	var supplies []*ds.Supply
	for i := 1; i <= 2; i++ {
		supply, err := repo.CreateSupply(fmt.Sprintf("S-%d", i), time.Now(), 1000, ds.SupplyInvoice, contract.ID, nil)
		require.NoError(t, err)
		supplies = append(supplies, supply)
	}

	return &fixture{seller: seller, buyer: buyer, bank: bank, contract: contract, supplies: supplies}
}

func createTestRegistry(t *testing.T, repo *Repository, f *fixture, financeType ds.FinanceType, withBank bool) *ds.Registry {
	t.Helper()

	var bankID, agreementID *uint
	if withBank {
		bankID = &f.bank.ID
		agreement := ds.FactoringAgreement{Number: "Ф-1", Date: time.Now(), CompanyID: f.seller.ID, BankID: f.bank.ID}
		require.NoError(t, repo.db.Create(&agreement).Error)
		agreementID = &agreement.ID
	}

	supplyIDs := []uint{f.supplies[0].ID, f.supplies[1].ID}
	registry, err := repo.CreateRegistry(1, f.contract.ID, financeType, supplyIDs, bankID, agreementID)
	require.NoError(t, err)
	return registry
}

func TestCreateRegistry(t *testing.T) {
	repo := newTestRepository(t)
	f := seedFixture(t, repo)

	t.Run("amount is the sum of supplies", func(t *testing.T) {
		registry := createTestRegistry(t, repo, f, ds.DynamicDiscounting, false)
		assert.Equal(t, float64(2000), registry.Amount)
		assert.Equal(t, ds.StatusInProcess, registry.Status)
		assert.Equal(t, ds.SignNotSigned, registry.SignStatus)
		assert.Len(t, registry.Supplies, 2)
	})

	t.Run("supply cannot be registered twice", func(t *testing.T) {
		_, err := repo.CreateRegistry(1, f.contract.ID, ds.DynamicDiscounting,
			[]uint{f.supplies[0].ID}, nil, nil)
		var vErr *workflow.ValidationError
		require.ErrorAs(t, err, &vErr)
	})

	t.Run("verification requires a bank", func(t *testing.T) {
		_, err := repo.CreateRegistry(1, f.contract.ID, ds.SupplyVerification, []uint{}, nil, nil)
		var vErr *workflow.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "BankID", vErr.Field)
	})
}

func TestSignRegistry(t *testing.T) {
	t.Run("seller then buyer finishes discounting with personal discount", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)
		registry := createTestRegistry(t, repo, f, ds.DynamicDiscounting, true)

		_, err := repo.CreateDiscount(registry.ID, 5, time.Now().AddDate(0, 1, 0), ds.DiscountPersonal)
		require.NoError(t, err)

		result, err := repo.SignRegistry(registry.ID, 1, f.seller.ID, "sig-seller.p7s")
		require.NoError(t, err)
		assert.Equal(t, ds.SignedBySeller, result.Registry.SignStatus)
		assert.Equal(t, ds.StatusInProcess, result.Registry.Status)

		result, err = repo.SignRegistry(registry.ID, 2, f.buyer.ID, "sig-buyer.p7s")
		require.NoError(t, err)
		assert.Equal(t, ds.SignedBySellerBuyer, result.Registry.SignStatus)
		assert.Equal(t, ds.StatusFinished, result.Registry.Status)
		assert.True(t, result.Finished)

		// поставкам проставлен банк реестра
		supplies, err := repo.GetSupplies(f.seller.ID, "", false)
		require.NoError(t, err)
		for _, s := range supplies {
			require.NotNil(t, s.BankID)
			assert.Equal(t, f.bank.ID, *s.BankID)
		}
	})

	t.Run("without personal discount both signatures keep registry in process", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)
		registry := createTestRegistry(t, repo, f, ds.DynamicDiscounting, false)

		_, err := repo.SignRegistry(registry.ID, 2, f.buyer.ID, "")
		require.NoError(t, err)
		result, err := repo.SignRegistry(registry.ID, 1, f.seller.ID, "")
		require.NoError(t, err)

		assert.Equal(t, ds.SignedBySellerBuyer, result.Registry.SignStatus)
		assert.Equal(t, ds.StatusInProcess, result.Registry.Status)
	})

	t.Run("bank signature is final and verifies supplies", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)
		registry := createTestRegistry(t, repo, f, ds.SupplyVerification, true)

		result, err := repo.SignRegistry(registry.ID, 3, f.bank.ID, "sig-bank.p7s")
		require.NoError(t, err)
		assert.Equal(t, ds.SignedByAll, result.Registry.SignStatus)
		assert.Equal(t, ds.StatusFinished, result.Registry.Status)
		assert.True(t, result.Registry.IsVerified)

		// банк проставляется поставкам и при авторитетной подписи банка
		supplies, err := repo.GetSupplies(f.seller.ID, "", false)
		require.NoError(t, err)
		for _, s := range supplies {
			require.NotNil(t, s.BankID)
			assert.Equal(t, f.bank.ID, *s.BankID)
		}
	})

	t.Run("double signing is rejected and nothing is persisted", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)
		registry := createTestRegistry(t, repo, f, ds.DynamicDiscounting, false)

		_, err := repo.SignRegistry(registry.ID, 1, f.seller.ID, "")
		require.NoError(t, err)

		_, err = repo.SignRegistry(registry.ID, 1, f.seller.ID, "")
		var fErr *workflow.ForbiddenError
		require.ErrorAs(t, err, &fErr)

		signatures, err := repo.GetRegistrySignatures(registry.ID)
		require.NoError(t, err)
		assert.Len(t, signatures, 1)
	})

	t.Run("stranger company cannot sign", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)
		registry := createTestRegistry(t, repo, f, ds.DynamicDiscounting, false)

		stranger, err := repo.CreateCompany("ООО Чужая", "", "7799999999", "", false)
		require.NoError(t, err)

		_, err = repo.SignRegistry(registry.ID, 9, stranger.ID, "")
		var fErr *workflow.ForbiddenError
		require.ErrorAs(t, err, &fErr)
	})

	t.Run("finished registry accepts no more signatures", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)
		registry := createTestRegistry(t, repo, f, ds.SupplyVerification, true)

		_, err := repo.SignRegistry(registry.ID, 3, f.bank.ID, "")
		require.NoError(t, err)

		_, err = repo.SignRegistry(registry.ID, 1, f.seller.ID, "")
		var fErr *workflow.ForbiddenError
		require.ErrorAs(t, err, &fErr)
	})
}

func TestDeclineRegistry(t *testing.T) {
	t.Run("decline resets signatures", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)
		registry := createTestRegistry(t, repo, f, ds.DynamicDiscounting, false)

		_, err := repo.SignRegistry(registry.ID, 1, f.seller.ID, "")
		require.NoError(t, err)

		result, err := repo.DeclineRegistry(registry.ID, 2, f.buyer.ID)
		require.NoError(t, err)
		assert.Equal(t, ds.SignNotSigned, result.Registry.SignStatus)
		assert.Equal(t, ds.StatusDeclined, result.Registry.Status)

		signatures, err := repo.GetRegistrySignatures(registry.ID)
		require.NoError(t, err)
		assert.Empty(t, signatures)
	})

	t.Run("declined registry is immutable", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)
		registry := createTestRegistry(t, repo, f, ds.DynamicDiscounting, false)

		_, err := repo.DeclineRegistry(registry.ID, 2, f.buyer.ID)
		require.NoError(t, err)

		var fErr *workflow.ForbiddenError
		_, err = repo.SignRegistry(registry.ID, 1, f.seller.ID, "")
		require.ErrorAs(t, err, &fErr)
		_, err = repo.DeclineRegistry(registry.ID, 1, f.seller.ID)
		require.ErrorAs(t, err, &fErr)
	})
}

func TestDiscount(t *testing.T) {
	t.Run("amounts are derived from rate", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)
		registry := createTestRegistry(t, repo, f, ds.DynamicDiscounting, false)

		discount, err := repo.CreateDiscount(registry.ID, 2.5, time.Now().AddDate(0, 1, 0), ds.DiscountPersonal)
		require.NoError(t, err)
		assert.Equal(t, float64(50), discount.DiscountedAmount)
		assert.Equal(t, float64(1950), discount.AmountToPay)
	})

	t.Run("personal discount finishes a registry signed by both parties", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)
		registry := createTestRegistry(t, repo, f, ds.DynamicDiscounting, false)

		_, err := repo.SignRegistry(registry.ID, 1, f.seller.ID, "")
		require.NoError(t, err)
		_, err = repo.SignRegistry(registry.ID, 2, f.buyer.ID, "")
		require.NoError(t, err)

		_, err = repo.CreateDiscount(registry.ID, 3, time.Now().AddDate(0, 1, 0), ds.DiscountPersonal)
		require.NoError(t, err)

		updated, err := repo.GetRegistryByID(registry.ID)
		require.NoError(t, err)
		assert.Equal(t, ds.StatusFinished, updated.Status)
	})

	t.Run("rate change forces re-signature", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)
		registry := createTestRegistry(t, repo, f, ds.DynamicDiscounting, false)

		_, err := repo.CreateDiscount(registry.ID, 3, time.Now().AddDate(0, 1, 0), ds.DiscountExternal)
		require.NoError(t, err)

		_, err = repo.SignRegistry(registry.ID, 1, f.seller.ID, "")
		require.NoError(t, err)

		_, err = repo.UpdateDiscount(registry.ID, 4, time.Now().AddDate(0, 1, 0))
		require.NoError(t, err)

		updated, err := repo.GetRegistryByID(registry.ID)
		require.NoError(t, err)
		assert.Equal(t, ds.SignNotSigned, updated.SignStatus)

		signatures, err := repo.GetRegistrySignatures(registry.ID)
		require.NoError(t, err)
		assert.Empty(t, signatures)
	})

	t.Run("planned date is checked against payer settings", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)
		registry := createTestRegistry(t, repo, f, ds.DynamicDiscounting, false)

		// покупатель платит только по средам, сдвиг минимум 3 дня
		err := repo.UpdateDiscountSettings(f.buyer.ID, ds.CalendarDays, workflow.WeekdayMask(time.Wednesday), 3)
		require.NoError(t, err)

		_, err = repo.CreateDiscount(registry.ID, 3, time.Now().AddDate(0, 0, 1), ds.DiscountPersonal)
		var vErr *workflow.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "PlannedPaymentDate", vErr.Field)
	})

	t.Run("discount is rejected for verification registries", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)
		registry := createTestRegistry(t, repo, f, ds.SupplyVerification, true)

		_, err := repo.CreateDiscount(registry.ID, 3, time.Now().AddDate(0, 1, 0), ds.DiscountPersonal)
		var fErr *workflow.ForbiddenError
		require.ErrorAs(t, err, &fErr)
	})
}

func TestDocuments(t *testing.T) {
	t.Run("document is signed when all receivers sign", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)

		document, err := repo.CreateDocument(f.seller.ID, "Сверка расчётов", "Просим подписать акт",
			"act.pdf", []uint{f.buyer.ID, f.bank.ID})
		require.NoError(t, err)
		assert.Equal(t, ds.DocumentInProcess, document.Status)

		document, err = repo.SignDocument(document.ID, 2, f.buyer.ID, "sig1.p7s")
		require.NoError(t, err)
		assert.Equal(t, ds.DocumentInProcess, document.Status)

		document, err = repo.SignDocument(document.ID, 3, f.bank.ID, "sig2.p7s")
		require.NoError(t, err)
		assert.Equal(t, ds.DocumentSigned, document.Status)
	})

	t.Run("receiver cannot sign twice", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)

		document, err := repo.CreateDocument(f.seller.ID, "Акт", "", "", []uint{f.buyer.ID, f.bank.ID})
		require.NoError(t, err)

		_, err = repo.SignDocument(document.ID, 2, f.buyer.ID, "")
		require.NoError(t, err)
		_, err = repo.SignDocument(document.ID, 2, f.buyer.ID, "")
		var fErr *workflow.ForbiddenError
		require.ErrorAs(t, err, &fErr)
	})

	t.Run("decline stores the reason", func(t *testing.T) {
		repo := newTestRepository(t)
		f := seedFixture(t, repo)

		document, err := repo.CreateDocument(f.seller.ID, "Акт", "", "", []uint{f.buyer.ID})
		require.NoError(t, err)

		document, err = repo.DeclineDocument(document.ID, f.buyer.ID, "расхождения в суммах")
		require.NoError(t, err)
		assert.Equal(t, ds.DocumentDeclined, document.Status)
		assert.Equal(t, "расхождения в суммах", document.DeclineReason)

		_, err = repo.SignDocument(document.ID, 3, f.buyer.ID, "")
		var fErr *workflow.ForbiddenError
		require.ErrorAs(t, err, &fErr)
	})
}
