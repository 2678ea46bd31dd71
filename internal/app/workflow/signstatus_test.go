package workflow

import (
	"testing"

	"factoring-backend/internal/app/ds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceSignStatus(t *testing.T) {
	t.Run("seller then buyer", func(t *testing.T) {
		st, err := AdvanceSignStatus(ds.SignNotSigned, Seller)
		require.NoError(t, err)
		require.Equal(t, ds.SignedBySeller, st)

		st, err = AdvanceSignStatus(st, Buyer)
		require.NoError(t, err)
		require.Equal(t, ds.SignedBySellerBuyer, st)
	})

	t.Run("buyer then seller", func(t *testing.T) {
		st, err := AdvanceSignStatus(ds.SignNotSigned, Buyer)
		require.NoError(t, err)
		require.Equal(t, ds.SignedByBuyer, st)

		st, err = AdvanceSignStatus(st, Seller)
		require.NoError(t, err)
		require.Equal(t, ds.SignedBySellerBuyer, st)
	})

	t.Run("bank signs from any state", func(t *testing.T) {
		for _, from := range []ds.SignStatus{
			ds.SignNotSigned,
			ds.SignedBySeller,
			ds.SignedByBuyer,
			ds.SignedBySellerBuyer,
		} {
			st, err := AdvanceSignStatus(from, Bank)
			require.NoError(t, err, "from %s", from)
			assert.Equal(t, ds.SignedByAll, st)
		}
	})

	t.Run("double signing is forbidden", func(t *testing.T) {
		var fErr *ForbiddenError

		_, err := AdvanceSignStatus(ds.SignedBySeller, Seller)
		require.ErrorAs(t, err, &fErr)

		_, err = AdvanceSignStatus(ds.SignedByBuyer, Buyer)
		require.ErrorAs(t, err, &fErr)

		_, err = AdvanceSignStatus(ds.SignedBySellerBuyer, Seller)
		require.ErrorAs(t, err, &fErr)

		_, err = AdvanceSignStatus(ds.SignedBySellerBuyer, Buyer)
		require.ErrorAs(t, err, &fErr)
	})

	t.Run("no signature after signed by all", func(t *testing.T) {
		for _, signer := range []SignerRole{Seller, Buyer, Bank} {
			_, err := AdvanceSignStatus(ds.SignedByAll, signer)
			var fErr *ForbiddenError
			require.ErrorAs(t, err, &fErr, "signer %s", signer)
		}
	})
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name         string
		signStatus   ds.SignStatus
		financeType  ds.FinanceType
		hasDiscount  bool
		wantStatus   ds.RegistryStatus
		wantVerified bool
	}{
		{"not signed", ds.SignNotSigned, ds.DynamicDiscounting, false, ds.StatusInProcess, false},
		{"signed by seller", ds.SignedBySeller, ds.DynamicDiscounting, false, ds.StatusInProcess, false},
		{"signed by buyer", ds.SignedByBuyer, ds.SupplyVerification, false, ds.StatusInProcess, false},
		{"both signed, discounting, personal discount", ds.SignedBySellerBuyer, ds.DynamicDiscounting, true, ds.StatusFinished, false},
		{"both signed, discounting, no discount", ds.SignedBySellerBuyer, ds.DynamicDiscounting, false, ds.StatusInProcess, false},
		{"both signed, verification", ds.SignedBySellerBuyer, ds.SupplyVerification, true, ds.StatusInProcess, false},
		{"all signed, discounting", ds.SignedByAll, ds.DynamicDiscounting, false, ds.StatusFinished, false},
		{"all signed, verification", ds.SignedByAll, ds.SupplyVerification, false, ds.StatusFinished, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, verified := DeriveStatus(tt.signStatus, tt.financeType, tt.hasDiscount)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantVerified, verified)

			// функция чистая: повторный вызов даёт тот же результат
			status2, verified2 := DeriveStatus(tt.signStatus, tt.financeType, tt.hasDiscount)
			assert.Equal(t, status, status2)
			assert.Equal(t, verified, verified2)
		})
	}
}

func TestResolveSignerRole(t *testing.T) {
	bankID := uint(30)
	registry := &ds.Registry{
		ID:       1,
		BankID:   &bankID,
		Contract: ds.Contract{SellerID: 10, BuyerID: 20},
	}

	t.Run("seller", func(t *testing.T) {
		r, err := ResolveSignerRole(registry, 10)
		require.NoError(t, err)
		assert.Equal(t, Seller, r)
	})

	t.Run("buyer", func(t *testing.T) {
		r, err := ResolveSignerRole(registry, 20)
		require.NoError(t, err)
		assert.Equal(t, Buyer, r)
	})

	t.Run("bank", func(t *testing.T) {
		r, err := ResolveSignerRole(registry, 30)
		require.NoError(t, err)
		assert.Equal(t, Bank, r)
	})

	t.Run("stranger company", func(t *testing.T) {
		_, err := ResolveSignerRole(registry, 99)
		var fErr *ForbiddenError
		require.ErrorAs(t, err, &fErr)
	})

	t.Run("no bank assigned", func(t *testing.T) {
		noBank := &ds.Registry{ID: 2, Contract: ds.Contract{SellerID: 10, BuyerID: 20}}
		_, err := ResolveSignerRole(noBank, 30)
		var fErr *ForbiddenError
		require.ErrorAs(t, err, &fErr)
	})
}

func TestDecline(t *testing.T) {
	t.Run("audience table", func(t *testing.T) {
		assert.ElementsMatch(t, []SignerRole{Seller, Buyer}, DeclineAudience(Bank))
		assert.ElementsMatch(t, []SignerRole{Seller}, DeclineAudience(Buyer))
		assert.ElementsMatch(t, []SignerRole{Buyer}, DeclineAudience(Seller))
	})

	t.Run("decline resets signatures", func(t *testing.T) {
		signStatus, status := ApplyDecline()
		assert.Equal(t, ds.SignNotSigned, signStatus)
		assert.Equal(t, ds.StatusDeclined, status)
	})

	t.Run("final registry cannot be declined", func(t *testing.T) {
		var fErr *ForbiddenError

		finished := &ds.Registry{ID: 1, Status: ds.StatusFinished}
		require.ErrorAs(t, CanDecline(finished, Seller), &fErr)

		declined := &ds.Registry{ID: 2, Status: ds.StatusDeclined}
		require.ErrorAs(t, CanDecline(declined, Buyer), &fErr)
	})

	t.Run("in process registry can be declined", func(t *testing.T) {
		bankID := uint(30)
		registry := &ds.Registry{ID: 3, Status: ds.StatusInProcess, BankID: &bankID}
		require.NoError(t, CanDecline(registry, Seller))
		require.NoError(t, CanDecline(registry, Buyer))
		require.NoError(t, CanDecline(registry, Bank))
	})

	t.Run("bank cannot decline without assignment", func(t *testing.T) {
		registry := &ds.Registry{ID: 4, Status: ds.StatusInProcess}
		var fErr *ForbiddenError
		require.ErrorAs(t, CanDecline(registry, Bank), &fErr)
	})
}

func TestNeedsBankPropagation(t *testing.T) {
	assert.False(t, NeedsBankPropagation(ds.SignNotSigned))
	assert.False(t, NeedsBankPropagation(ds.SignedBySeller))
	assert.False(t, NeedsBankPropagation(ds.SignedByBuyer))
	assert.True(t, NeedsBankPropagation(ds.SignedBySellerBuyer))
	assert.True(t, NeedsBankPropagation(ds.SignedByAll))
}
