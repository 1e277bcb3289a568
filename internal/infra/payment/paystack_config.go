package payment

import (
	"errors"
	"net/url"
	"time"
)

type PaystackConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

var (
	ErrPaystackMissingSecretKey = errors.New("paystack: missing secret key")
	ErrPaystackInvalidBaseURL   = errors.New("paystack: invalid base URL")
)

func (c *PaystackConfig) Validate() error {
	if c.SecretKey == "" {
		return ErrPaystackMissingSecretKey
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrPaystackInvalidBaseURL
	}
	return nil
}
