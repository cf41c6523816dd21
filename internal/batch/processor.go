package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gost28147/internal/crypto"
)

// Config holds all shared resources for a batch run.
// The cipher is shared read-only; every file gets its own stream state.
type Config struct {
	Cipher    *crypto.Cipher
	Mode      crypto.Mode
	Direction crypto.Direction
	OutputDir string
	Suffix    string
	Workers   int
	Progress  io.Writer
}

// Result holds the outcome of processing one file.
type Result struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	BytesIn  int64  `json:"bytes_in"`
	BytesOut int64  `json:"bytes_out"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// Run processes all files using a worker pool.
func Run(cfg Config, inputs []string) []Result {
	total := len(inputs)
	results := make([]Result, total)
	var processed atomic.Int64

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						rate := float64(p) / elapsed
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f files/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = processFile(cfg, inputs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

// OutputPath names the file written for input.
// Encryption appends the suffix; decryption strips it, or appends ".dec"
// when the input does not carry it.
func OutputPath(cfg Config, input string) string {
	name := filepath.Base(input)
	if cfg.Direction == crypto.Encrypt {
		name += cfg.Suffix
	} else if cfg.Suffix != "" && strings.HasSuffix(name, cfg.Suffix) && len(name) > len(cfg.Suffix) {
		name = strings.TrimSuffix(name, cfg.Suffix)
	} else {
		name += ".dec"
	}

	dir := cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, name)
}

func processFile(cfg Config, input string) Result {
	res := Result{Input: input, Output: OutputPath(cfg, input)}

	in, err := os.Open(input)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(res.Output), 0755); err != nil {
		res.Error = err.Error()
		return res
	}

	out, err := os.Create(res.Output)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer out.Close()

	src := &countingReader{r: bufio.NewReader(in)}
	dst := bufio.NewWriter(out)

	if cfg.Direction == crypto.Encrypt {
		res.BytesOut, err = cfg.Cipher.EncryptStream(cfg.Mode, src, dst)
	} else {
		res.BytesOut, err = cfg.Cipher.DecryptStream(cfg.Mode, src, dst)
	}
	res.BytesIn = src.n
	if err != nil {
		res.Error = fmt.Sprintf("%v %s: %v", cfg.Mode, cfg.Direction, err)
		return res
	}

	if err := dst.Flush(); err != nil {
		res.Error = fmt.Sprintf("flush %s: %v", res.Output, err)
		return res
	}

	res.Success = true
	return res
}

// ManifestName is the file name WriteManifest output gets in a batch root.
const ManifestName = "manifest.json"

// Inputs lists the regular files under dir, skipping hidden entries and
// batch manifests. A non-empty suffix keeps only files ending in it.
func Inputs(dir, suffix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || d.Name() == ManifestName {
			return nil
		}
		if suffix != "" && !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", dir, err)
	}
	return files, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
