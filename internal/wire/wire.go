// SPDX-License-Identifier: MIT

// Package wire holds the JSON conventions shared by the event backend's endpoints.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxBodyBytes bounds how much of a response body is read.
const MaxBodyBytes = 1 << 20

// User-facing messages for failures that carry no server text.
const (
	MsgUnreachablePrefix = "Não foi possível conectar ao servidor: "
	MsgRequestSetup      = "Erro ao configurar a requisição"
)

// UnreachableMessage names the endpoint that could not be reached.
func UnreachableMessage(base string) string {
	return MsgUnreachablePrefix + base
}

// FlexString handles JSON fields that can be "123" or 123.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}

	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("flexstring: invalid json value: %s", string(b))
	}
	if i, err := n.Int64(); err == nil {
		*s = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string { return string(s) }

// ErrorBody is the error envelope returned by the backend. Older endpoints
// use the Portuguese "erro" key.
type ErrorBody struct {
	Error string `json:"error,omitempty"`
	Erro  string `json:"erro,omitempty"`
	Code  string `json:"code,omitempty"`
}

// Message returns the server-supplied text, or "" when none was sent.
func (e ErrorBody) Message() string {
	if m := strings.TrimSpace(e.Error); m != "" {
		return m
	}
	return strings.TrimSpace(e.Erro)
}

// ServerMessage extracts the error text from a raw body, falling back when
// the body is not JSON or carries no message.
func ServerMessage(body []byte, fallback string) string {
	var e ErrorBody
	if err := json.Unmarshal(body, &e); err != nil {
		return fallback
	}
	if m := e.Message(); m != "" {
		return m
	}
	return fallback
}

// ReadBody reads at most MaxBodyBytes from r.
func ReadBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, MaxBodyBytes))
}
