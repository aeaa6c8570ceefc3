// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/connectapp/connect/internal/qrcode"
)

// runDecode prints the identifier and encoding of each payload argument.
func (c *cli) runDecode(args []string) int {
	fs := flag.NewFlagSet("connect decode", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	asJSON := fs.Bool("json", false, "print the full match as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(c.stderr, "Usage: connect decode [--json] <payload>...")
		return 2
	}

	cfg, _, err := c.loadConfig()
	if err != nil {
		return c.fail(err)
	}
	dec, err := qrcode.NewDecoder(cfg.DecoderOptions())
	if err != nil {
		return c.fail(err)
	}

	code := 0
	for _, raw := range fs.Args() {
		m := dec.Inspect(raw)
		if *asJSON {
			_ = json.NewEncoder(c.stdout).Encode(m)
		} else if m.OK {
			fmt.Fprintf(c.stdout, "%s\t%s\n", m.Identifier, m.Encoding)
		} else {
			fmt.Fprintf(c.stdout, "invalid\t%s\n", strings.TrimSpace(m.Reason))
		}
		if !m.OK {
			code = 1
		}
	}
	return code
}

// runQR prints the payloads to print on an activity's QR code.
func (c *cli) runQR(args []string) int {
	fs := flag.NewFlagSet("connect qr", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	httpOnly := fs.Bool("http", false, "print only the HTTP variant")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		fmt.Fprintln(c.stderr, "Usage: connect qr [--http] <palestraId>")
		return 2
	}
	cfg, _, err := c.loadConfig()
	if err != nil {
		return c.fail(err)
	}
	id := strings.TrimSpace(fs.Arg(0))
	if !*httpOnly {
		fmt.Fprintln(c.stdout, qrcode.AppURLWith(cfg.DecoderOptions(), id))
	}
	fmt.Fprintln(c.stdout, qrcode.HTTPURL(cfg.QR.HTTPBase, id))
	return 0
}
