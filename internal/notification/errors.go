package notification

import (
	"errors"
	"fmt"

	"spicy-biryani/internal/domain"
)

// ErrNotConfigured indica que faltan credenciales del proveedor.
var ErrNotConfigured = errors.New("provider not configured")

// ConfigurationError se devuelve cuando un canal no tiene credenciales.
type ConfigurationError struct {
	Channel domain.Channel
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Channel, ErrNotConfigured)
	}
	return fmt.Sprintf("%s: %v: %s", e.Channel, ErrNotConfigured, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrNotConfigured
}

// ProviderError es un rechazo del proveedor externo (respuesta no 2xx).
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}
