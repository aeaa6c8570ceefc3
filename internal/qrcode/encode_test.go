// SPDX-License-Identifier: MIT

package qrcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppURL(t *testing.T) {
	assert.Equal(t, "connectapp://presenca?palestraId=42", AppURL("42"))
}

func TestHTTPURLDefaultsBase(t *testing.T) {
	assert.Equal(t, "http://192.168.3.30:5000/api/v1/presenca/qr?palestraId=7", HTTPURL("", "7"))
	assert.Equal(t, "https://api.example.org/api/v1/presenca/qr?palestraId=7", HTTPURL("https://api.example.org/", "7"))
}

func TestEncodersRoundTrip(t *testing.T) {
	for _, id := range []string{"42", "a b&c", "ção"} {
		got, ok := Decode(AppURL(id))
		require.True(t, ok, id)
		assert.Equal(t, Identifier(id), got)

		got, ok = Decode(HTTPURL("", id))
		require.True(t, ok, id)
		assert.Equal(t, Identifier(id), got)
	}
}
