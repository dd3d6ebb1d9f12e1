package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation indicates input that failed validation.
	ErrValidation = errors.New("validation failed")
)

// UserSafeMessage returns a message suitable for API consumers. Known
// domain errors pass through unchanged, anything else is masked so
// internal details never leak into responses.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "el recurso solicitado no existe"
	case errors.Is(err, ErrInvalidCredentials):
		return "credenciales invalidas"
	case errors.Is(err, ErrValidation):
		return err.Error()
	default:
		return "ocurrio un error inesperado"
	}
}
