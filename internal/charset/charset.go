// Package charset transcodes text payloads between UTF-8 and the legacy
// single-byte code pages GOST-era systems exchange.
package charset

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var byName = map[string]*charmap.Charmap{
	"cp1251":    charmap.Windows1251,
	"cp866":     charmap.CodePage866,
	"koi8r":     charmap.KOI8R,
	"koi8u":     charmap.KOI8U,
	"iso8859-5": charmap.ISO8859_5,
	"cp1252":    charmap.Windows1252,
}

// Names lists the supported code page names.
func Names() []string {
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the encoding for name. An empty name or "utf-8" selects
// no transcoding and returns nil.
func Lookup(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(name))
	switch key {
	case "", "utf8":
		return nil, nil
	case "windows1251":
		key = "cp1251"
	case "windows1252":
		key = "cp1252"
	case "iso88595":
		key = "iso8859-5"
	}
	if cm, ok := byName[key]; ok {
		return cm, nil
	}
	return nil, fmt.Errorf("charset: unknown code page %q", name)
}

// Encode converts UTF-8 text to the named code page.
func Encode(name string, text []byte) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil || enc == nil {
		return text, err
	}
	out, err := enc.NewEncoder().Bytes(text)
	if err != nil {
		return nil, fmt.Errorf("charset: encode %s: %w", name, err)
	}
	return out, nil
}

// Decode converts text in the named code page to UTF-8.
func Decode(name string, text []byte) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil || enc == nil {
		return text, err
	}
	out, err := enc.NewDecoder().Bytes(text)
	if err != nil {
		return nil, fmt.Errorf("charset: decode %s: %w", name, err)
	}
	return out, nil
}
