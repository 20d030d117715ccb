package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// header holds the envelope fields every event must carry.
type header struct {
	EventID   string `json:"eventId" validate:"required"`
	Timestamp string `json:"timestamp" validate:"required"`
	EventType Type   `json:"eventType" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseError reports a serialized event that could not be decoded.
type ParseError struct {
	// Missing lists absent envelope fields by their JSON name.
	Missing []string
	Err     error
}

func (e *ParseError) Error() string {
	if len(e.Missing) > 0 {
		return "invalid event: missing " + strings.Join(e.Missing, ", ")
	}
	return fmt.Sprintf("invalid event: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes one serialized event. Only the envelope is validated; unknown
// eventType values are accepted and rejected later by the processor.
func Parse(raw []byte) (Event, error) {
	var h header
	if err := json.Unmarshal(raw, &h); err != nil {
		return Event{}, &ParseError{Err: err}
	}

	if err := validate.Struct(h); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Event{}, &ParseError{Err: err}
		}
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			missing = append(missing, fe.Field())
		}
		return Event{}, &ParseError{Missing: missing, Err: err}
	}

	body := make(json.RawMessage, len(raw))
	copy(body, raw)

	return Event{
		ID:        h.EventID,
		Timestamp: h.Timestamp,
		Type:      h.EventType,
		raw:       body,
	}, nil
}
