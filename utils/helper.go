package utils

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

// CountryCode is the default region for phone numbers given without an
// international prefix.
var CountryCode = "MM"

func IsValidEmail(email string) bool {
	// Basic email validation regex pattern
	pattern := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	regex := regexp.MustCompile(pattern)
	return regex.MatchString(email)
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err // Phone number is invalid
	}

	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}

	return nil // Phone number is valid for the specified country code
}

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func UniqueSlice[T comparable](slice []T) []T {
	inResult := make(map[T]bool)
	var result []T
	for _, elm := range slice {
		if _, ok := inResult[elm]; !ok {
			// if not exists in map, append it, otherwise do nothing
			inResult[elm] = true
			result = append(result, elm)
		}
	}
	return result
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

// Window filter types accepted by the dashboard. All windows are rolling,
// anchored to "now" rather than to calendar boundaries; "weekly" means the
// last 7 days, not the current calendar week.
const (
	WindowToday   = "today"
	WindowWeekly  = "weekly"
	WindowMonthly = "monthly"
	WindowYearly  = "yearly"
)

// Window is a resolved reporting range plus the comparable prior range used
// for percentage-change figures.
type Window struct {
	Start     time.Time
	End       time.Time
	PrevStart time.Time
	PrevEnd   time.Time
}

// ResolveWindow turns a filter type into concrete boundaries. An unknown
// filter type is a programmer error and is rejected outright.
func ResolveWindow(filterType string, now time.Time) (Window, error) {
	switch filterType {
	case WindowToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return Window{
			Start:     start,
			End:       now,
			PrevStart: start.AddDate(0, 0, -1),
			PrevEnd:   now.AddDate(0, 0, -1),
		}, nil
	case WindowWeekly:
		return Window{
			Start:     now.AddDate(0, 0, -7),
			End:       now,
			PrevStart: now.AddDate(0, 0, -14),
			PrevEnd:   now.AddDate(0, 0, -7),
		}, nil
	case WindowMonthly:
		return Window{
			Start:     addMonthsClamped(now, -1),
			End:       now,
			PrevStart: addMonthsClamped(now, -2),
			PrevEnd:   addMonthsClamped(now, -1),
		}, nil
	case WindowYearly:
		return Window{
			Start:     addMonthsClamped(now, -12),
			End:       now,
			PrevStart: addMonthsClamped(now, -24),
			PrevEnd:   addMonthsClamped(now, -12),
		}, nil
	default:
		return Window{}, NewValidationError("filter", "unknown filter type "+filterType)
	}
}

// addMonthsClamped shifts by whole months, clamping the day-of-month to the
// target month's length instead of letting it spill into the next month
// (time.AddDate would turn Mar 31 - 1 month into Mar 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// Percentage-change directions reported alongside dashboard figures.
const (
	ChangeIncrease = "increase"
	ChangeDecrease = "decrease"
	ChangeNone     = "no-change"
)

type PercentageChange struct {
	Value     float64 `json:"value"`
	Direction string  `json:"direction"`
}

// CalculatePercentageChange reports the magnitude of the change between two
// figures, rounded to 2 decimals, with an explicit direction. A zero previous
// value with a non-zero current value is reported as a flat 100% increase.
func CalculatePercentageChange(current, previous decimal.Decimal) PercentageChange {
	if previous.IsZero() {
		if current.IsZero() {
			return PercentageChange{Value: 0, Direction: ChangeNone}
		}
		return PercentageChange{Value: 100, Direction: ChangeIncrease}
	}

	diff := current.Sub(previous)
	if diff.IsZero() {
		return PercentageChange{Value: 0, Direction: ChangeNone}
	}

	direction := ChangeIncrease
	if diff.IsNegative() {
		direction = ChangeDecrease
	}

	pct, _ := diff.Abs().Div(previous.Abs()).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return PercentageChange{Value: pct, Direction: direction}
}
