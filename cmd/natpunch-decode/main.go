// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Command natpunch-decode prints the header and attributes of a STUN
// message given as base64 or hex.
package main

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pion/natpunch/stun"
)

var useHex = flag.Bool("hex", false, "argument is hex instead of base64") //nolint:gochecknoglobals

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", "natpunch-decode")
		fmt.Fprintln(os.Stderr, "natpunch-decode AQEADCESpEIBAgMEBQYHCAkKCwwAIAAIAAGc1fSfOK4=")
		fmt.Fprintln(os.Stderr, "First argument must be a base64.StdEncoding-encoded message")
		flag.PrintDefaults()
	}
	flag.Parse()

	var (
		data []byte
		err  error
	)
	if *useHex {
		data, err = hex.DecodeString(flag.Arg(0))
	} else {
		data, err = base64.StdEncoding.DecodeString(flag.Arg(0))
	}
	if err != nil {
		log.Fatalln("Unable to decode value:", err)
	}
	if err = decode(os.Stdout, data); err != nil {
		log.Fatalln("Unable to decode message:", err)
	}
}

var errBadCookie = errors.New("magic cookie mismatch, not a STUN message")

func decode(w io.Writer, data []byte) error {
	m, err := stun.Parse(data)
	if err != nil {
		return err
	}
	if m.Cookie != stun.MagicCookie {
		return errBadCookie
	}
	fmt.Fprintln(w, m)

	m.Walk(func(a stun.RawAttribute) bool {
		switch a.Type {
		case stun.AttrMappedAddress, stun.AttrXORMappedAddress:
			addr, err := stun.DecodeMappedAddress(a, m.Cookie, a.Type == stun.AttrXORMappedAddress)
			if err != nil {
				fmt.Fprintf(w, "  %s: %v\n", a.Type, err)
			} else {
				fmt.Fprintf(w, "  %s: %s\n", a.Type, addr)
			}
		case stun.AttrErrorCode:
			code, err := stun.DecodeErrorCode(a)
			if err != nil {
				fmt.Fprintf(w, "  %s: %v\n", a.Type, err)
			} else {
				fmt.Fprintf(w, "  %s: %s\n", a.Type, code)
			}
		case stun.AttrSoftware:
			fmt.Fprintf(w, "  %s: %q\n", a.Type, a.Value)
		default:
			fmt.Fprintf(w, "  %s\n", a)
		}

		return true
	})

	return nil
}
