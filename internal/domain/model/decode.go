package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/items/internal/domain/fault"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// itemPayload keeps the raw field values so they can be coerced to text.
type itemPayload struct {
	Name        json.RawMessage `json:"name"`
	Description json.RawMessage `json:"description"`
}

// DecodeNewItem reads a JSON object from r and returns the validated input.
//
// An empty body is an empty object. Strings are kept verbatim, numbers and
// booleans are coerced to their literal text, null means absent. Unknown
// fields, nested values, trailing data and over-long text are rejected with
// a validation fault.
func DecodeNewItem(r io.Reader) (NewItem, error) {
	const op = "model.decode_item"

	data, err := io.ReadAll(r)
	if err != nil {
		return NewItem{}, fault.New(op, fault.KindValidation, fmt.Errorf("%w: %w", ErrInvalidBody, err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return NewItem{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p itemPayload
	if err := dec.Decode(&p); err != nil {
		return NewItem{}, fault.New(op, fault.KindValidation, fmt.Errorf("%w: %w", ErrInvalidBody, err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return NewItem{}, fault.New(op, fault.KindValidation, fmt.Errorf("%w: body must contain a single JSON object", ErrInvalidBody))
	}

	var in NewItem
	if in.Name, err = coerceText("name", p.Name); err != nil {
		return NewItem{}, fault.New(op, fault.KindValidation, err)
	}
	if in.Description, err = coerceText("description", p.Description); err != nil {
		return NewItem{}, fault.New(op, fault.KindValidation, err)
	}
	if err := in.Validate(); err != nil {
		return NewItem{}, err
	}
	return in, nil
}

// Validate checks the field constraints of the input.
func (n NewItem) Validate() error {
	const op = "model.validate_item"
	err := validate.Struct(n)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fault.New(op, fault.KindValidation, fmt.Errorf("%w: %w", ErrInvalidItem, err))
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}
	return fault.New(op, fault.KindValidation, fmt.Errorf("%w: %s", ErrInvalidItem, strings.Join(msgs, "; ")))
}

func coerceText(field string, raw json.RawMessage) (*string, error) {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return nil, nil
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidItem, field, err)
		}
		return &s, nil
	case 't', 'f':
		b, err := strconv.ParseBool(string(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidItem, field, err)
		}
		return Text(strconv.FormatBool(b)), nil
	case '{', '[':
		return nil, fmt.Errorf("%w: cast to string failed for %s", ErrInvalidItem, field)
	default:
		// Any other valid JSON value here is a number literal.
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidItem, field, err)
		}
		return Text(formatNumber(f)), nil
	}
}

// formatNumber renders f the way a JavaScript String cast does for the
// common range: shortest round-trip digits, no exponent, no trailing zeros.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if a := math.Abs(f); a < 1e-6 || a >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
