package batch

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"gost28147/internal/crypto"
)

// Manifest describes one batch run. Mode and IV travel out of band, so the
// manifest is what a receiver needs besides the key.
type Manifest struct {
	Mode      crypto.Mode `json:"mode"`
	Direction string      `json:"direction"`
	IV        string      `json:"iv,omitempty"`
	Created   time.Time   `json:"created"`
	Files     []Result    `json:"files"`
}

// WriteManifest writes manifest.json to path.
func WriteManifest(path string, cfg Config, results []Result) error {
	m := Manifest{
		Mode:      cfg.Mode,
		Direction: cfg.Direction.String(),
		Created:   time.Now().UTC(),
		Files:     results,
	}
	if cfg.Mode.UsesIV() {
		iv := cfg.Cipher.IV()
		m.IV = "hex:" + hex.EncodeToString(iv[:])
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(data, &m)
	return m, err
}
