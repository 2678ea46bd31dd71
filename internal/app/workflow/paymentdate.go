package workflow

import (
	"time"

	"factoring-backend/internal/app/ds"
)

// Битовая маска дней недели: бит 0 - понедельник, бит 6 - воскресенье.
func weekdayBit(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// WeekdayAllowed проверяет, входит ли день недели даты в маску разрешённых.
func WeekdayAllowed(mask int, date time.Time) bool {
	return mask&(1<<uint(weekdayBit(date.Weekday()))) != 0
}

// WeekdayMask собирает маску из списка дней недели.
func WeekdayMask(days ...time.Weekday) int {
	mask := 0
	for _, d := range days {
		mask |= 1 << uint(weekdayBit(d))
	}
	return mask
}

// truncateDate отбрасывает время, оставляя дату в UTC
func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeFreeDays приводит календарь праздничных дней к множеству дат,
// пригодному для валидатора. Неактивные дни отбрасываются.
func NormalizeFreeDays(days []ds.FreeDay) map[time.Time]bool {
	set := make(map[time.Time]bool, len(days))
	for _, d := range days {
		if d.IsActive {
			set[truncateDate(d.Date)] = true
		}
	}
	return set
}

// рабочий день - не суббота, не воскресенье и не праздник
func isBusinessDay(date time.Time, freeDays map[time.Time]bool) bool {
	if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
		return false
	}
	return !freeDays[truncateDate(date)]
}

// minPaymentDate вычисляет ближайшую допустимую дату оплаты от опорной даты.
// Граница включительна: оплата ровно в вычисленную дату допустима.
func minPaymentDate(today time.Time, settings ds.DiscountSettings, freeDays map[time.Time]bool) time.Time {
	today = truncateDate(today)

	if settings.DaysType == ds.CalendarDays {
		return today.AddDate(0, 0, settings.MinimumDaysToShift)
	}

	// рабочие дни: двигаемся вперёд, пока не израсходуем требуемый сдвиг,
	// пропуская выходные и праздники
	date := today
	remaining := settings.MinimumDaysToShift
	for remaining > 0 {
		date = date.AddDate(0, 0, 1)
		if isBusinessDay(date, freeDays) {
			remaining--
		}
	}
	return date
}

// ValidatePlannedPaymentDate проверяет дату досрочной оплаты дисконта по
// настройкам компании. Нарушение любого правила - ValidationError c полем
// PlannedPaymentDate; вызывающий исправляет дату и повторяет запрос.
func ValidatePlannedPaymentDate(today, planned time.Time, settings ds.DiscountSettings, freeDays map[time.Time]bool) error {
	planned = truncateDate(planned)

	threshold := minPaymentDate(today, settings, freeDays)
	if planned.Before(threshold) {
		return &ValidationError{
			Field:   "PlannedPaymentDate",
			Message: "дата оплаты раньше минимально допустимой " + threshold.Format("02.01.2006"),
		}
	}

	if !WeekdayAllowed(settings.PaymentWeekDays, planned) {
		return &ValidationError{
			Field:   "PlannedPaymentDate",
			Message: "день недели не входит в список платёжных дней компании",
		}
	}

	if freeDays[planned] {
		return &ValidationError{
			Field:   "PlannedPaymentDate",
			Message: "дата оплаты приходится на праздничный день",
		}
	}

	return nil
}
