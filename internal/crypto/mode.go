package crypto

import (
	"fmt"
	"strings"
)

// Mode is a block cipher mode of operation.
type Mode int

const (
	ECB Mode = iota // Electronic Codebook
	CBC             // Cipher Block Chaining
	CFB             // Cipher Feedback
	OFB             // Output Feedback
)

// Modes lists every supported mode in declaration order.
var Modes = []Mode{ECB, CBC, CFB, OFB}

func (m Mode) String() string {
	switch m {
	case ECB:
		return "ECB"
	case CBC:
		return "CBC"
	case CFB:
		return "CFB"
	case OFB:
		return "OFB"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// UsesIV reports whether the mode seeds a feedback register from the IV.
func (m Mode) UsesIV() bool { return m != ECB }

// ParseMode accepts a mode name in any letter case.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("crypto: parse mode %q: %w", s, ErrUnknownMode)
}

// MarshalText lets modes appear by name in JSON configs and manifests.
func (m Mode) MarshalText() ([]byte, error) {
	if m < ECB || m > OFB {
		return nil, fmt.Errorf("crypto: marshal %v: %w", m, ErrUnknownMode)
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
