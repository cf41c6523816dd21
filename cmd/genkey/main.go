package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	"gost28147/internal/crypto"
)

func main() {
	iv := flag.Bool("iv", false, "Generate an 8-byte IV instead of a 32-byte key")
	asHex := flag.Bool("hex", false, "Print as hex:<digits> instead of writing a raw file")
	flag.Parse()

	size := crypto.KeySize
	if *iv {
		size = crypto.BlockSize
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal(err)
	}

	if *asHex {
		fmt.Println("hex:" + hex.EncodeToString(buf))
		return
	}

	if flag.NArg() != 1 {
		log.Fatalln("Specify filepath for the key")
	}
	if err := os.WriteFile(flag.Arg(0), buf, 0600); err != nil {
		log.Fatal(err)
	}
}
