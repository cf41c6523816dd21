package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"gost28147/internal/config"
	"gost28147/internal/crypto"
	"gost28147/internal/imaging"
)

func main() {
	input := flag.String("in", "", "Input image (PNG, JPEG, GIF or TGA); empty draws a test pattern")
	output := flag.String("out", "ecb-vs-chained.webp", "Output WebP file")
	key := flag.String("key", "ABCDEFGHIJKLMNOPQRSTUVWXABCDEFGH", "Key: 32 characters, or hex:<64 hex digits>")
	iv := flag.String("iv", "abcdefgh", "IV: 8 characters, or hex:<16 hex digits>")
	mode := flag.String("mode", "CBC", "Chained mode shown next to ECB")
	maxSize := flag.Int("max", 512, "Shrink the input so no side exceeds this many pixels")
	zoom := flag.Int("zoom", 1, "Integer zoom applied to every panel")
	flag.Parse()

	cfg := config.Config{Key: *key, IV: *iv, Mode: *mode}
	c, err := cfg.NewCipher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	chained, err := cfg.CipherMode()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var src *image.NRGBA
	if *input == "" {
		src = imaging.Pattern(256, 192)
	} else {
		src, err = imaging.Load(*input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	src = imaging.Fit(src, *maxSize)

	ecb, err := imaging.EncryptPixels(src, c, crypto.ECB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	other, err := imaging.EncryptPixels(src, c, chained)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	panel := imaging.SideBySide(8,
		imaging.Enlarge(src, *zoom),
		imaging.Enlarge(ecb, *zoom),
		imaging.Enlarge(other, *zoom))

	if err := imaging.SaveWebP(*output, panel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	b := src.Bounds()
	fmt.Printf("Plain | ECB | %v (%dx%d) -> %s\n", chained, b.Dx(), b.Dy(), *output)
}
