package booking

import (
	"strings"
	"time"

	"tablebook/internal/pkg/validator"
)

// CreateBookingInput is the raw form input for a new booking.
type CreateBookingInput struct {
	Date      string `json:"date" validate:"localdate"`
	Time      string `json:"time" validate:"localtime"`
	PartySize string `json:"partySize" validate:"positivecount"`
}

// checked in form order; the first failing field is reported
var fieldMessages = []struct {
	field   string
	message string
}{
	{"date", "use the format YYYY-MM-DD"},
	{"time", "use the format HH:mm"},
	{"partySize", "enter a valid number of guests"},
}

func (in CreateBookingInput) trimmed() CreateBookingInput {
	return CreateBookingInput{
		Date:      strings.TrimSpace(in.Date),
		Time:      strings.TrimSpace(in.Time),
		PartySize: strings.TrimSpace(in.PartySize),
	}
}

// Parse validates the input and returns the booking instant in loc and the
// party size.
func (in CreateBookingInput) Parse(loc *time.Location) (time.Time, int, error) {
	in = in.trimmed()
	if loc == nil {
		loc = time.Local
	}

	if failed := validator.Validate(in); len(failed) > 0 {
		for _, fm := range fieldMessages {
			if _, ok := failed[fm.field]; ok {
				return time.Time{}, 0, &ValidationError{Field: fm.field, Message: fm.message}
			}
		}
	}

	day, err := time.ParseInLocation("2006-01-02", in.Date, loc)
	if err != nil {
		return time.Time{}, 0, &ValidationError{Field: "date", Message: fieldMessages[0].message}
	}
	clock, err := time.Parse("15:04", in.Time)
	if err != nil {
		return time.Time{}, 0, &ValidationError{Field: "time", Message: fieldMessages[1].message}
	}
	size, _ := validator.ParsePositiveCount(in.PartySize)

	at := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
	return at, size, nil
}
