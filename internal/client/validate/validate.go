// Package validate checks forms before they are sent to the API. The
// rules are a convenience for the user; the server remains authoritative.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	MinNameLen        = 3
	MinPhoneDigits    = 7
	MaxPhoneDigits    = 15
	MinPasswordLen    = 6
	MinDurationCreate = 5
	MinDurationEdit   = 15

	// DateLayout is what the terminal asks the user to type.
	DateLayout = "2006-01-02 15:04"
)

// Errors maps a field's JSON name to a message for the user.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e[k])
	}
	return strings.Join(parts, "; ")
}

// orNil keeps a typed nil map from turning into a non-nil error.
func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = val.RegisterValidation("digits", isDigits)
	_ = val.RegisterValidation("appointment_date", isAppointmentDate)
	return val
}

func isDigits(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isAppointmentDate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// ParseDate accepts DateLayout in local time, the HTML datetime-local
// form, or RFC 3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not %s or RFC 3339", s, DateLayout)
	}
	return t, nil
}

// check trims form's string fields (unless tagged trim:"-") and runs the
// struct rules.
func check(form any) Errors {
	trimStrings(form)

	errs := Errors{}
	err := v.Struct(form)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["form"] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		if _, seen := errs[fe.Field()]; !seen {
			errs[fe.Field()] = message(fe.Field(), fe.Tag(), fe.Param(), fe.Kind())
		}
	}
	return errs
}

func trimStrings(form any) {
	rv := reflect.ValueOf(form)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() != reflect.String || !f.CanSet() || rt.Field(i).Tag.Get("trim") == "-" {
			continue
		}
		f.SetString(strings.TrimSpace(f.String()))
	}
}

func unit(field string) string {
	switch field {
	case "phone":
		return "digits"
	case "durationMinutes":
		return "minutes"
	}
	return "characters"
}

func message(field, tag, param string, kind reflect.Kind) string {
	switch tag {
	case "required":
		return field + " is required"
	case "digits":
		return field + " must contain digits only"
	case "min":
		if kind == reflect.String {
			return fmt.Sprintf("%s must have a minimum of %s %s", field, param, unit(field))
		}
		return fmt.Sprintf("%s must be at least %s %s", field, param, unit(field))
	case "max":
		if kind == reflect.String {
			return fmt.Sprintf("%s must have a maximum of %s %s", field, param, unit(field))
		}
		return fmt.Sprintf("%s must be at most %s %s", field, param, unit(field))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "appointment_date":
		return fmt.Sprintf("%s must look like %s", field, DateLayout)
	}
	return field + " is invalid"
}
