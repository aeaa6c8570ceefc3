// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const redacted = "***redacted***"

// Redacted returns a copy safe to print.
func (c AppConfig) Redacted() AppConfig {
	if c.Store.Redis.Password != "" {
		c.Store.Redis.Password = redacted
	}
	return c
}

// Dump renders the effective config (secrets redacted) as YAML.
func Dump(cfg AppConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Redacted()); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
