// SPDX-License-Identifier: MIT

// Package qrcode decodes attendance QR payloads into palestra identifiers.
//
// Four encodings are accepted and tried in a fixed order; the first matcher
// that claims a payload decides the result:
//
//	connectapp://presenca?palestraId=42           application deep link
//	https://host/api/v1/presenca/qr?palestraId=42 plain HTTP(S) URL
//	{"palestraId":"42"}                            JSON object
//	42                                             bare identifier (no "://")
//
// Prefixes are matched exactly: no case folding and no trimming.
//
// Decoding is pure: no I/O and no logging.
package qrcode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultScheme  = "connectapp"
	DefaultPath    = "presenca"
	DefaultParam   = "palestraId"
	DefaultPattern = `^[A-Za-z0-9_-]{1,64}$`
)

// Identifier is a decoded palestra identifier. It is never empty when
// returned with ok == true.
type Identifier string

func (id Identifier) String() string { return string(id) }

// Encoding names the payload format a matcher recognises.
type Encoding string

const (
	EncodingNone   Encoding = ""
	EncodingAppURI Encoding = "app_uri"
	EncodingHTTP   Encoding = "http_url"
	EncodingJSON   Encoding = "json"
	EncodingBare   Encoding = "bare"
)

// Match is the tagged result of running one matcher against a payload.
// Claimed reports whether the matcher recognised the payload format at all;
// a claimed match with OK == false is a decode failure and stops the search.
type Match struct {
	Encoding   Encoding
	Identifier Identifier
	Claimed    bool
	OK         bool
	Reason     string
}

// Options configures a Decoder.
type Options struct {
	Scheme string // custom URI scheme, without "://"
	Path   string // host/path segment expected after the scheme
	Param  string // query parameter and JSON field carrying the identifier
	// Strict rejects bare identifiers that do not match Pattern.
	Strict  bool
	Pattern string
}

// DefaultOptions returns the options used by the package-level Decode.
func DefaultOptions() Options {
	return Options{
		Scheme:  DefaultScheme,
		Path:    DefaultPath,
		Param:   DefaultParam,
		Pattern: DefaultPattern,
	}
}

// ErrInvalidOptions is returned by NewDecoder for unusable options.
var ErrInvalidOptions = errors.New("qrcode: invalid decoder options")

type matcher struct {
	encoding Encoding
	match    func(raw string) Match
}

// Decoder runs the ordered matcher list against raw payloads.
type Decoder struct {
	opts     Options
	pattern  *regexp.Regexp
	matchers []matcher
}

// NewDecoder builds a decoder. Empty option fields fall back to defaults.
func NewDecoder(opts Options) (*Decoder, error) {
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
	if opts.Pattern == "" {
		opts.Pattern = def.Pattern
	}
	if strings.Contains(opts.Scheme, "://") {
		return nil, fmt.Errorf("%w: scheme %q must not contain \"://\"", ErrInvalidOptions, opts.Scheme)
	}
	re, err := regexp.Compile(opts.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern: %v", ErrInvalidOptions, err)
	}

	d := &Decoder{opts: opts, pattern: re}
	d.matchers = []matcher{
		{EncodingAppURI, d.matchAppURI},
		{EncodingHTTP, d.matchHTTP},
		{EncodingJSON, d.matchJSON},
		{EncodingBare, d.matchBare},
	}
	return d, nil
}

// Options returns the effective options.
func (d *Decoder) Options() Options { return d.opts }

// Decode returns the identifier carried by raw, or ok == false when the
// payload is empty, malformed, or lacks the identifier.
func (d *Decoder) Decode(raw string) (Identifier, bool) {
	m := d.Inspect(raw)
	return m.Identifier, m.OK
}

// Inspect runs the matchers in order and returns the first claiming match.
func (d *Decoder) Inspect(raw string) Match {
	if raw == "" {
		return Match{Reason: "empty payload"}
	}
	for _, m := range d.matchers {
		res := m.match(raw)
		if !res.Claimed {
			continue
		}
		res.Encoding = m.encoding
		if res.OK && res.Identifier == "" {
			res.OK = false
			res.Reason = "empty identifier"
		}
		return res
	}
	return Match{Reason: "unrecognized payload"}
}

func (d *Decoder) matchAppURI(raw string) Match {
	prefix := d.opts.Scheme + "://" + d.opts.Path
	if !strings.HasPrefix(raw, prefix) {
		return Match{}
	}
	// net/url handles custom schemes poorly for opaque forms; parse as http.
	return d.fromURL("http://" + raw[len(d.opts.Scheme)+len("://"):])
}

func (d *Decoder) matchHTTP(raw string) Match {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return Match{}
	}
	return d.fromURL(raw)
}

func (d *Decoder) fromURL(raw string) Match {
	u, err := url.Parse(raw)
	if err != nil {
		return Match{Claimed: true, Reason: "malformed url"}
	}
	v := u.Query().Get(d.opts.Param)
	if v == "" {
		return Match{Claimed: true, Reason: "missing " + d.opts.Param}
	}
	return Match{Claimed: true, OK: true, Identifier: Identifier(v)}
}

func (d *Decoder) matchJSON(raw string) Match {
	if raw[0] != '{' {
		return Match{}
	}
	var obj map[string]json.RawMessage
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return Match{Claimed: true, Reason: "malformed json"}
	}
	field, ok := obj[d.opts.Param]
	if !ok {
		return Match{Claimed: true, Reason: "missing " + d.opts.Param}
	}
	id, ok := scalarString(field)
	if !ok {
		return Match{Claimed: true, Reason: "unsupported " + d.opts.Param + " type"}
	}
	return Match{Claimed: true, OK: true, Identifier: Identifier(id)}
}

func (d *Decoder) matchBare(raw string) Match {
	if strings.Contains(raw, "://") {
		return Match{}
	}
	if d.opts.Strict && !d.pattern.MatchString(raw) {
		return Match{Claimed: true, Reason: "identifier does not match pattern"}
	}
	return Match{Claimed: true, OK: true, Identifier: Identifier(raw)}
}

// scalarString accepts "42" and 42 alike.
func scalarString(b json.RawMessage) (string, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", false
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false
		}
		return s, true
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", false
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), true
	}
	return n.String(), true
}

var defaultDecoder = func() *Decoder {
	d, err := NewDecoder(DefaultOptions())
	if err != nil {
		panic(err)
	}
	return d
}()

// Decode decodes raw with the default options.
func Decode(raw string) (Identifier, bool) {
	return defaultDecoder.Decode(raw)
}
