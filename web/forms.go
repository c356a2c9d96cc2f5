package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// form is a request body that can also be read from url-encoded fields
type form interface {
	fromValues(get func(key string) string)
}

type credentialsForm struct {
	Handle string `json:"handle" validate:"required,max=255"`
	Secret string `json:"secret" validate:"required,max=1024"`
}

// Older forms posted username/password; both spellings are accepted.
func (f *credentialsForm) fromValues(get func(string) string) {
	f.Handle = firstNonEmpty(get("handle"), get("username"))
	f.Secret = firstNonEmpty(get("secret"), get("password"))
}

// amountField holds the submitted text of a money amount. JSON clients may
// send it as a string or as a number; both keep their exact digits.
type amountField string

func (a *amountField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number: %w", err)
	}
	*a = amountField(n.String())
	return nil
}

func (a amountField) String() string { return string(a) }

type depositForm struct {
	Amount amountField `json:"amount" validate:"required,max=64"`
}

func (f *depositForm) fromValues(get func(string) string) {
	f.Amount = amountField(firstNonEmpty(get("amount"), get("valor")))
}

type wagerForm struct {
	Wager  amountField `json:"wager" validate:"required,max=64"`
	Choice string      `json:"choice" validate:"max=32"`
}

func (f *wagerForm) fromValues(get func(string) string) {
	f.Wager = amountField(firstNonEmpty(get("wager"), get("aposta")))
	f.Choice = firstNonEmpty(get("choice"), get("escolha"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var errUnreadableBody = errors.New("request body could not be read")

// decodeForm fills dst from a JSON body or from form fields, then validates it
func (h *Handler) decodeForm(r *http.Request, dst form) error {
	if render.GetRequestContentType(r) == render.ContentTypeJSON {
		if err := render.DecodeJSON(r.Body, dst); err != nil {
			return errUnreadableBody
		}
	} else {
		dst.fromValues(r.PostFormValue)
	}

	return h.validate.Struct(dst)
}

// formMessage turns a decoding or validation failure into a player-facing message
func formMessage(err error) string {
	if errors.Is(err, errUnreadableBody) {
		return "The submitted form could not be read"
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "The submitted form is invalid"
	}

	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field %s is required", fe.Field())
	case "max":
		return fmt.Sprintf("Field %s is too long", fe.Field())
	case "oneof":
		return fmt.Sprintf("Field %s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("Field %s is invalid", fe.Field())
	}
}
