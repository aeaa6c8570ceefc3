// SPDX-License-Identifier: MIT

package qrcode

import (
	"net/url"
	"strings"
)

// DefaultHTTPBase is the host used by HTTPURL when base is empty.
const DefaultHTTPBase = "http://192.168.3.30:5000"

// AppURL returns the deep link printed on attendance QR codes.
func AppURL(palestraID string) string {
	return AppURLWith(DefaultOptions(), palestraID)
}

// AppURLWith builds the deep link using the scheme, path and parameter from opts.
func AppURLWith(opts Options, palestraID string) string {
	def := DefaultOptions()
	if opts.Scheme == "" {
		opts.Scheme = def.Scheme
	}
	if opts.Path == "" {
		opts.Path = def.Path
	}
	if opts.Param == "" {
		opts.Param = def.Param
	}
	return opts.Scheme + "://" + opts.Path + "?" + opts.Param + "=" + url.QueryEscape(palestraID)
}

// HTTPURL returns the HTTP variant of the QR payload, used when testing
// without the app installed.
func HTTPURL(base, palestraID string) string {
	if strings.TrimSpace(base) == "" {
		base = DefaultHTTPBase
	}
	return strings.TrimRight(base, "/") + "/api/v1/presenca/qr?" + DefaultParam + "=" + url.QueryEscape(palestraID)
}
