package httpx

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/alima/supply/internal/shared"
)

// Headers carrying the acting user and supplier business.
const (
	HeaderUserID     = "X-User-ID"
	HeaderBusinessID = "X-Supplier-Business-ID"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct tag validation and reports violations as a
// validation error naming every failing field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: campos inválidos: %s", shared.ErrValidation, strings.Join(msgs, ", "))
}

// Decode reads a JSON body into dst and validates it.
func Decode(r *http.Request, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		return fmt.Errorf("%w: cuerpo JSON inválido: %v", shared.ErrValidation, err)
	}
	return Validate(dst)
}

// ActorFromHeaders parses the actor headers.
func ActorFromHeaders(r *http.Request) (shared.Actor, error) {
	business, err := uuid.Parse(r.Header.Get(HeaderBusinessID))
	if err != nil {
		return shared.Actor{}, fmt.Errorf("%w: encabezado %s inválido", shared.ErrValidation, HeaderBusinessID)
	}
	user, err := uuid.Parse(r.Header.Get(HeaderUserID))
	if err != nil {
		return shared.Actor{}, fmt.Errorf("%w: encabezado %s inválido", shared.ErrValidation, HeaderUserID)
	}
	return shared.Actor{UserID: user, BusinessID: business}, nil
}

// Actor returns the actor stored by the actor middleware.
func Actor(r *http.Request) (shared.Actor, error) {
	if actor, ok := shared.ActorFromContext(r.Context()); ok {
		return actor, nil
	}
	return ActorFromHeaders(r)
}

// ParamUUID parses a URL parameter value as a UUID.
func ParamUUID(value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s no es un identificador válido", shared.ErrValidation, name)
	}
	return id, nil
}
