// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/connectapp/connect/internal/qrcode"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field rules. Every failure
// wraps ErrInvalidConfig.
func Validate(cfg AppConfig) error {
	var problems []string

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), redactValue(fe)))
		}
	}

	switch cfg.Store.Backend {
	case "file":
		if cfg.Store.Path == "" {
			problems = append(problems, "store.path: required for the file backend")
		}
	case "redis":
		if cfg.Store.Redis.Addr == "" {
			problems = append(problems, "store.redis.addr: required for the redis backend")
		}
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		problems = append(problems, "telemetry.endpoint: required when telemetry is enabled")
	}

	if _, err := qrcode.NewDecoder(cfg.DecoderOptions()); err != nil {
		problems = append(problems, fmt.Sprintf("qr: %v", err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func redactValue(fe validator.FieldError) any {
	if isSensitive(fe.Field()) {
		return "***"
	}
	return fe.Value()
}

// DecoderOptions maps the qr section onto decoder options.
func (c AppConfig) DecoderOptions() qrcode.Options {
	return qrcode.Options{
		Scheme:  c.QR.Scheme,
		Path:    c.QR.Path,
		Param:   c.QR.Param,
		Strict:  c.QR.Strict,
		Pattern: c.QR.Pattern,
	}
}
