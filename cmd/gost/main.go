package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gost28147/internal/batch"
	"gost28147/internal/charset"
	"gost28147/internal/config"
	"gost28147/internal/crypto"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	envFile := flag.String("env", ".env", "Path to .env file (missing file is ignored)")
	decrypt := flag.Bool("d", false, "Decrypt instead of encrypt")
	mode := flag.String("mode", "", "Cipher mode: ECB, CBC, CFB or OFB (default: CBC)")
	key := flag.String("key", "", "Key: 32 characters, or hex:<64 hex digits>")
	keyFile := flag.String("key-file", "", "File holding the 32-byte raw key")
	iv := flag.String("iv", "", "IV: 8 characters, or hex:<16 hex digits>")
	cs := flag.String("charset", "", "Transcode text to/from this code page (cp1251, koi8r, cp866, ...)")
	in := flag.String("in", "-", "Input file (- for stdin)")
	out := flag.String("out", "-", "Output file (- for stdout)")
	batchDir := flag.String("batch", "", "Process every file under this directory")
	outputDir := flag.String("output", "", "Output directory for -batch (default: next to inputs)")
	workers := flag.Int("workers", 0, "Number of worker goroutines for -batch (default: NumCPU)")
	demo := flag.Bool("demo", false, "Run the four-mode demonstration with the reference key and IV")
	verbose := flag.Bool("v", false, "Trace every block on stderr")

	flag.Parse()

	if *demo {
		if err := runDemo(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cfg.LoadEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading environment: %v\n", err)
		os.Exit(1)
	}

	// CLI flags override config file and environment
	cfg.Resolve(config.Flags{
		KeyFile:   *keyFile,
		Key:       *key,
		IV:        *iv,
		Mode:      *mode,
		Charset:   *cs,
		OutputDir: *outputDir,
		Workers:   *workers,
	})

	var opts []crypto.Option
	if *verbose {
		opts = append(opts, crypto.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	c, err := cfg.NewCipher(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m, err := cfg.CipherMode()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dir := crypto.Encrypt
	if *decrypt {
		dir = crypto.Decrypt
	}

	if *batchDir != "" {
		os.Exit(runBatch(cfg, c, m, dir, *batchDir))
	}

	if err := runSingle(c, m, dir, cfg.Charset, *in, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSingle(c *crypto.Cipher, mode crypto.Mode, dir crypto.Direction, cs, inPath, outPath string) error {
	var src io.Reader = os.Stdin
	if inPath != "-" {
		f, err := os.Open(inPath)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	src = bufio.NewReader(src)

	var dst io.Writer = os.Stdout
	if outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		dst = f
	}
	w := bufio.NewWriter(dst)
	defer w.Flush()

	if _, err := charset.Lookup(cs); err != nil {
		return err
	}
	if cs == "" {
		var err error
		if dir == crypto.Encrypt {
			_, err = c.EncryptStream(mode, src, w)
		} else {
			_, err = c.DecryptStream(mode, src, w)
		}
		if err != nil {
			return err
		}
		return w.Flush()
	}

	// Text mode: transcoding needs the whole payload.
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	if dir == crypto.Encrypt {
		if data, err = charset.Encode(cs, data); err != nil {
			return err
		}
		data, err = c.EncryptBytes(mode, data)
	} else {
		if data, err = c.DecryptBytes(mode, data); err != nil {
			return err
		}
		data, err = charset.Decode(cs, data)
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Flush()
}

func runBatch(cfg config.Config, c *crypto.Cipher, mode crypto.Mode, dir crypto.Direction, root string) int {
	// Decryption only picks up files a previous encryption run produced.
	suffix := ""
	if dir == crypto.Decrypt {
		suffix = cfg.Suffix
	}
	inputs, err := batch.Inputs(root, suffix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(inputs) == 0 {
		fmt.Println("No files to process.")
		return 0
	}

	fmt.Printf("GOST 28147-89 %s, mode %v\n", dir, mode)
	fmt.Printf("Files: %d, Workers: %d\n", len(inputs), cfg.Workers)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	batchCfg := batch.Config{
		Cipher:    c,
		Mode:      mode,
		Direction: dir,
		OutputDir: cfg.OutputDir,
		Suffix:    cfg.Suffix,
		Workers:   cfg.Workers,
		Progress:  os.Stdout,
	}
	results := batch.Run(batchCfg, inputs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Processed: %d/%d\n", success, len(inputs))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(20, len(errors))
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Input, e.Error)
		}
	}

	// Write manifest
	manifestDir := cfg.OutputDir
	if manifestDir == "" {
		manifestDir = root
	}
	manifestPath := filepath.Join(manifestDir, batch.ManifestName)
	os.MkdirAll(manifestDir, 0755)
	if err := batch.WriteManifest(manifestPath, batchCfg, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		return 1
	}
	return 0
}

var (
	demoKey = []byte("ABCDEFGHIJKLMNOPQRSTUVWXABCDEFGH")
	demoIV  = []byte("abcdefgh")
)

// runDemo encrypts and decrypts a short message in each mode with the
// reference key and IV. Unaligned messages come back with zero padding.
func runDemo(w io.Writer) error {
	c, err := crypto.New(demoKey)
	if err != nil {
		return err
	}
	if err := c.SetIV(demoIV); err != nil {
		return err
	}

	samples := []struct {
		mode crypto.Mode
		text string
	}{
		{crypto.ECB, "Hello, World!"},
		{crypto.CBC, "GOST 28147-89"},
		{crypto.CFB, "OpenAI rocks!"},
		{crypto.OFB, "Simple Text!"},
	}

	fmt.Fprintf(w, "Key: %s\nIV:  %s\n\n", demoKey, demoIV)
	for _, s := range samples {
		ct, err := c.Encrypt(s.mode, bytes.NewReader([]byte(s.text)))
		if err != nil {
			return err
		}
		pt, err := c.Decrypt(s.mode, bytes.NewReader(ct))
		if err != nil {
			return err
		}

		status := "exact round trip"
		if !bytes.Equal(pt, []byte(s.text)) {
			status = fmt.Sprintf("%d zero byte(s) of padding kept", len(pt)-len(s.text))
		}
		fmt.Fprintf(w, "[%v] %q\n  encrypted: % x\n  decrypted: %q (%s)\n\n", s.mode, s.text, ct, pt, status)
	}
	return nil
}
