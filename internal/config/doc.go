// SPDX-License-Identifier: MIT

// Package config loads the connect configuration.
//
// Precedence is ENV > YAML file > defaults. YAML is decoded strictly: unknown
// keys fail the load with ErrUnknownConfigField. Environment keys use the
// CONNECT_ prefix (see envkeys.go).
package config
