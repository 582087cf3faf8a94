package payment

import (
	"errors"
	"net/url"
	"time"
)

// DefaultMercadoPagoBaseURL is the production API host
const DefaultMercadoPagoBaseURL = "https://api.mercadopago.com"

// MercadoPagoConfig configures the provider client
type MercadoPagoConfig struct {
	// BaseURL overrides the API host; tests point it at httptest
	BaseURL string
	// AccessToken is sent as a bearer token
	AccessToken string
	// Timeout bounds one fetch including the body read
	Timeout time.Duration
}

var (
	ErrMercadoPagoMissingToken   = errors.New("mercadopago: missing access token")
	ErrMercadoPagoInvalidBaseURL = errors.New("mercadopago: invalid base URL")
)

// Validate checks the configuration and fills defaults
func (c *MercadoPagoConfig) Validate() error {
	if c.AccessToken == "" {
		return ErrMercadoPagoMissingToken
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultMercadoPagoBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrMercadoPagoInvalidBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}
