package workflow

import (
	"testing"
	"time"

	"factoring-backend/internal/app/ds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidatePlannedPaymentDate_Calendar(t *testing.T) {
	settings := ds.DiscountSettings{
		DaysType:           ds.CalendarDays,
		PaymentWeekDays:    WeekdayMask(time.Wednesday),
		MinimumDaysToShift: 3,
	}
	today := date(2020, time.October, 18) // воскресенье
	freeDays := map[time.Time]bool{}

	t.Run("threshold date is valid inclusively", func(t *testing.T) {
		// 21.10.2020 - среда, ровно today + 3
		err := ValidatePlannedPaymentDate(today, date(2020, time.October, 21), settings, freeDays)
		require.NoError(t, err)
	})

	t.Run("wrong weekday fails", func(t *testing.T) {
		// 22.10.2020 - четверг
		err := ValidatePlannedPaymentDate(today, date(2020, time.October, 22), settings, freeDays)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "PlannedPaymentDate", vErr.Field)
	})

	t.Run("date before threshold fails", func(t *testing.T) {
		err := ValidatePlannedPaymentDate(today, date(2020, time.October, 20), settings, freeDays)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "PlannedPaymentDate", vErr.Field)
	})

	t.Run("free day is not payable", func(t *testing.T) {
		free := map[time.Time]bool{date(2020, time.October, 21): true}
		err := ValidatePlannedPaymentDate(today, date(2020, time.October, 21), settings, free)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
	})
}

func TestValidatePlannedPaymentDate_Business(t *testing.T) {
	settings := ds.DiscountSettings{
		DaysType:           ds.BusinessDays,
		PaymentWeekDays:    WeekdayMask(time.Wednesday, time.Saturday),
		MinimumDaysToShift: 5,
	}
	freeDays := NormalizeFreeDays([]ds.FreeDay{
		{Date: date(2020, time.October, 17), IsActive: true},
		{Date: date(2020, time.October, 18), IsActive: true},
	})

	for _, today := range []time.Time{
		date(2020, time.October, 16),
		date(2020, time.October, 17),
	} {
		t.Run("saturday after five business days is valid from "+today.Format("02.01"), func(t *testing.T) {
			err := ValidatePlannedPaymentDate(today, date(2020, time.October, 24), settings, freeDays)
			require.NoError(t, err)
		})

		t.Run("insufficient shift fails from "+today.Format("02.01"), func(t *testing.T) {
			// 21.10 - среда, но рабочих дней прошло меньше пяти
			err := ValidatePlannedPaymentDate(today, date(2020, time.October, 21), settings, freeDays)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "PlannedPaymentDate", vErr.Field)
		})
	}

	t.Run("midweek holiday pushes threshold", func(t *testing.T) {
		s := ds.DiscountSettings{
			DaysType:           ds.BusinessDays,
			PaymentWeekDays:    WeekdayMask(time.Thursday, time.Friday),
			MinimumDaysToShift: 3,
		}
		free := NormalizeFreeDays([]ds.FreeDay{
			{Date: date(2020, time.October, 14), IsActive: true}, // среда - праздник
		})
		today := date(2020, time.October, 12) // понедельник

		// рабочие дни: 13, 15, 16 -> порог 16.10 (пятница)
		require.NoError(t, ValidatePlannedPaymentDate(today, date(2020, time.October, 16), s, free))

		err := ValidatePlannedPaymentDate(today, date(2020, time.October, 15), s, free)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
	})

	t.Run("inactive free day is ignored", func(t *testing.T) {
		free := NormalizeFreeDays([]ds.FreeDay{
			{Date: date(2020, time.October, 21), IsActive: false},
		})
		assert.Empty(t, free)
	})
}

func TestWeekdayMask(t *testing.T) {
	mask := WeekdayMask(time.Monday, time.Sunday)
	assert.True(t, WeekdayAllowed(mask, date(2020, time.October, 19)))  // понедельник
	assert.True(t, WeekdayAllowed(mask, date(2020, time.October, 18)))  // воскресенье
	assert.False(t, WeekdayAllowed(mask, date(2020, time.October, 20))) // вторник
}
