package config

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"gost28147/internal/crypto"
)

// Config holds key material locations and run settings shared by the tools.
type Config struct {
	// Key material
	KeyFile string `json:"key_file"`
	Key     string `json:"key"`
	IV      string `json:"iv"`

	// Cipher settings
	Mode    string `json:"mode"`
	Charset string `json:"charset"`

	// Batch settings
	OutputDir string `json:"output_dir"`
	Suffix    string `json:"suffix"`
	Workers   int    `json:"workers"`

	// Service settings
	Listen string `json:"listen"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Environment variables understood by LoadEnv.
const (
	EnvKey     = "GOST_KEY"
	EnvKeyFile = "GOST_KEY_FILE"
	EnvIV      = "GOST_IV"
	EnvMode    = "GOST_MODE"
	EnvCharset = "GOST_CHARSET"
	EnvListen  = "GOST_LISTEN"
	EnvWorkers = "GOST_WORKERS"
)

// LoadEnv overlays values from dotenv files and the process environment.
// Process variables win over the files; missing files are skipped.
func (c *Config) LoadEnv(files ...string) error {
	vars := map[string]string{}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("config: read env %s: %w", f, err)
		}
		for k, v := range m {
			vars[k] = v
		}
	}

	get := func(name string) string {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return vars[name]
	}

	if v := get(EnvKey); v != "" {
		c.Key = v
	}
	if v := get(EnvKeyFile); v != "" {
		c.KeyFile = v
	}
	if v := get(EnvIV); v != "" {
		c.IV = v
	}
	if v := get(EnvMode); v != "" {
		c.Mode = v
	}
	if v := get(EnvCharset); v != "" {
		c.Charset = v
	}
	if v := get(EnvListen); v != "" {
		c.Listen = v
	}
	if v := get(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvWorkers, v, err)
		}
		c.Workers = n
	}
	return nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	KeyFile   string
	Key       string
	IV        string
	Mode      string
	Charset   string
	OutputDir string
	Listen    string
	Workers   int
}

// Resolve applies CLI overrides and fills in defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.KeyFile != "" {
		c.KeyFile = flags.KeyFile
	}
	if flags.Key != "" {
		c.Key = flags.Key
	}
	if flags.IV != "" {
		c.IV = flags.IV
	}
	if flags.Mode != "" {
		c.Mode = flags.Mode
	}
	if flags.Charset != "" {
		c.Charset = flags.Charset
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Listen != "" {
		c.Listen = flags.Listen
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.KeyFile != "" && !filepath.IsAbs(c.KeyFile) {
		if abs, err := filepath.Abs(c.KeyFile); err == nil {
			c.KeyFile = abs
		}
	}

	// Defaults
	if c.Mode == "" {
		c.Mode = crypto.CBC.String()
	}
	if c.Suffix == "" {
		c.Suffix = ".gost"
	}
	if c.Listen == "" {
		c.Listen = ":3001"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// KeyBytes returns the 32-byte key from KeyFile, or from Key when no file
// is configured.
func (c Config) KeyBytes() ([]byte, error) {
	var key []byte
	switch {
	case c.KeyFile != "":
		data, err := os.ReadFile(c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("config: read key %s: %w", c.KeyFile, err)
		}
		key = data
	case c.Key != "":
		data, err := ParseMaterial(c.Key)
		if err != nil {
			return nil, fmt.Errorf("config: key: %w", err)
		}
		key = data
	default:
		return nil, errors.New("config: no key configured")
	}

	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("config: key is %d bytes, want %d: %w", len(key), crypto.KeySize, crypto.ErrKeySize)
	}
	return key, nil
}

// IVBytes returns the configured IV, or nil when none is set.
func (c Config) IVBytes() ([]byte, error) {
	if c.IV == "" {
		return nil, nil
	}
	iv, err := ParseMaterial(c.IV)
	if err != nil {
		return nil, fmt.Errorf("config: iv: %w", err)
	}
	if len(iv) != crypto.BlockSize {
		return nil, fmt.Errorf("config: iv is %d bytes, want %d: %w", len(iv), crypto.BlockSize, crypto.ErrIVSize)
	}
	return iv, nil
}

// CipherMode parses Mode.
func (c Config) CipherMode() (crypto.Mode, error) {
	return crypto.ParseMode(c.Mode)
}

// NewCipher builds a cipher from the configured key and IV.
func (c Config) NewCipher(opts ...crypto.Option) (*crypto.Cipher, error) {
	key, err := c.KeyBytes()
	if err != nil {
		return nil, err
	}
	gc, err := crypto.New(key, opts...)
	if err != nil {
		return nil, err
	}

	iv, err := c.IVBytes()
	if err != nil {
		return nil, err
	}
	if iv != nil {
		if err := gc.SetIV(iv); err != nil {
			return nil, err
		}
	}
	return gc, nil
}

// ParseMaterial decodes key or IV text. A "hex:" prefix selects hex
// encoding; anything else is taken byte for byte.
func ParseMaterial(s string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(s, "hex:"); ok {
		b, err := hex.DecodeString(strings.TrimSpace(rest))
		if err != nil {
			return nil, fmt.Errorf("decode hex: %w", err)
		}
		return b, nil
	}
	return []byte(s), nil
}
