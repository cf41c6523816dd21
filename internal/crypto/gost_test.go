package crypto

import (
	"bytes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
)

var demoIV = []byte("abcdefgh")

func newDemoCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := New(demoKey)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.SetIV(demoIV); err != nil {
		t.Fatalf("SetIV: %v", err)
	}
	return c
}

func encrypt(t *testing.T, c *Cipher, mode Mode, p []byte) []byte {
	t.Helper()
	out, err := c.Encrypt(mode, bytes.NewReader(p))
	if err != nil {
		t.Fatalf("Encrypt(%v): %v", mode, err)
	}
	return out
}

func decrypt(t *testing.T, c *Cipher, mode Mode, p []byte) []byte {
	t.Helper()
	out, err := c.Decrypt(mode, bytes.NewReader(p))
	if err != nil {
		t.Fatalf("Decrypt(%v): %v", mode, err)
	}
	return out
}

func TestNewRejectsBadKey(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33} {
		_, err := New(make([]byte, n))
		if !errors.Is(err, ErrKeySize) {
			t.Errorf("New(%d bytes) error = %v, want ErrKeySize", n, err)
		}
	}
}

func TestSetIVRejectsBadLength(t *testing.T) {
	c := newDemoCipher(t)
	for _, n := range []int{0, 7, 9, 16} {
		if err := c.SetIV(make([]byte, n)); !errors.Is(err, ErrIVSize) {
			t.Errorf("SetIV(%d bytes) error = %v, want ErrIVSize", n, err)
		}
	}
	if got := c.IV(); !bytes.Equal(got[:], demoIV) {
		t.Errorf("failed SetIV changed the IV to %q", got[:])
	}
}

func TestKnownAnswers(t *testing.T) {
	tests := []struct {
		mode Mode
		iv   string
		in   string
		want string
	}{
		{ECB, "abcdefgh", "Hello, World!", "430416757917da5a41f147fe1327a63c"},
		{CBC, "abcdefgh", "GOST28147-89ABC!", "ae6b30235ee29ab99401d57dc601301d"},
		{CFB, "abcdefgh", "OpenAI rocks!", "774c398fad617e5d2fcd623e3616732a"},
		{OFB, "abcdefgh", "Simple Text!", "6b553191804d7e7ba033df312a7d24f4"},
		{ECB, "abcdefgh", "ABCDEFGHABCDEFGH", "4c955a51ec5d777c4c955a51ec5d777c"},
		{CBC, "abcdefgh", "ABCDEFGHABCDEFGH", "f114418a7bb080454adc2ff291f79780"},
		{CFB, "abcdefgh", "ABCDEFGHABCDEFGH", "797e1fa5a96e1967479a4e49675c4279"},
		{OFB, "abcdefgh", "ABCDEFGHABCDEFGH", "797e1fa5a96e19678409e8546f3b63bc"},
		{CBC, "abcdefgi", "ABCDEFGHABCDEFGH", "f027c19f699f8429d848b443a5e9c297"},
		{CFB, "abcdefgi", "ABCDEFGHABCDEFGH", "ee04d5070b132a45d00786d32fb899bf"},
		{OFB, "abcdefgi", "ABCDEFGHABCDEFGH", "ee04d5070b132a452c51c10cb736e2e9"},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String()+"/"+tc.in, func(t *testing.T) {
			c := newDemoCipher(t)
			if err := c.SetIV([]byte(tc.iv)); err != nil {
				t.Fatal(err)
			}
			ct := encrypt(t, c, tc.mode, []byte(tc.in))
			if got := hex.EncodeToString(ct); got != tc.want {
				t.Fatalf("ciphertext = %s, want %s", got, tc.want)
			}
		})
	}
}

// Non-aligned plaintext comes back with the zero padding of its last block.
func TestECBUnalignedKeepsPadding(t *testing.T) {
	c := newDemoCipher(t)
	plain := []byte("Hello, World!")

	ct := encrypt(t, c, ECB, plain)
	if len(ct) != 16 {
		t.Fatalf("ciphertext length = %d, want 16", len(ct))
	}

	pt := decrypt(t, c, ECB, ct)
	want := append(append([]byte{}, plain...), 0, 0, 0)
	if !bytes.Equal(pt, want) {
		t.Fatalf("decrypted = %q, want %q", pt, want)
	}
	if bytes.Equal(pt, plain) {
		t.Fatal("unaligned input must not round-trip byte for byte")
	}
}

func TestCBCAlignedRoundTrip(t *testing.T) {
	c := newDemoCipher(t)
	plain := []byte("GOST28147-89ABC!")

	pt := decrypt(t, c, CBC, encrypt(t, c, CBC, plain))
	if !bytes.Equal(pt, plain) {
		t.Fatalf("decrypted = %q, want %q", pt, plain)
	}
}

func TestCFBAndOFBShareFirstBlock(t *testing.T) {
	c := newDemoCipher(t)
	plain := []byte("ABCDEFGHABCDEFGH")

	cfb := encrypt(t, c, CFB, plain)
	ofb := encrypt(t, c, OFB, plain)

	if !bytes.Equal(cfb[:8], ofb[:8]) {
		t.Errorf("first blocks differ: CFB %x, OFB %x", cfb[:8], ofb[:8])
	}
	if bytes.Equal(cfb[8:], ofb[8:]) {
		t.Errorf("second blocks should diverge, both %x", cfb[8:])
	}

	keystream := c.Schedule().CryptBlock(Encrypt, BlockFrom(demoIV))
	want := BlockFrom(plain).Xor(keystream)
	if !bytes.Equal(cfb[:8], want[:]) {
		t.Errorf("first block = %x, want P xor E(IV) = %x", cfb[:8], want)
	}
}

func TestRoundTripAllModes(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for _, mode := range Modes {
		for _, blocks := range []int{0, 1, 2, 5, 64} {
			key := make([]byte, KeySize)
			iv := make([]byte, BlockSize)
			plain := make([]byte, blocks*BlockSize)
			for _, buf := range [][]byte{key, iv, plain} {
				for i := range buf {
					buf[i] = byte(rng.Uint32())
				}
			}

			c, err := New(key)
			if err != nil {
				t.Fatal(err)
			}
			if err := c.SetIV(iv); err != nil {
				t.Fatal(err)
			}

			ct := encrypt(t, c, mode, plain)
			if len(ct) != len(plain) {
				t.Fatalf("%v: ciphertext length %d, want %d", mode, len(ct), len(plain))
			}
			if pt := decrypt(t, c, mode, ct); !bytes.Equal(pt, plain) {
				t.Fatalf("%v/%d blocks: round trip mismatch", mode, blocks)
			}
		}
	}
}

func TestOutputAlwaysWholeBlocks(t *testing.T) {
	c := newDemoCipher(t)
	for _, mode := range Modes {
		for n := 0; n <= 17; n++ {
			ct := encrypt(t, c, mode, bytes.Repeat([]byte{'x'}, n))
			if len(ct) != PaddedLen(n) {
				t.Errorf("%v: %d-byte input gave %d bytes, want %d", mode, n, len(ct), PaddedLen(n))
			}
		}
	}
}

func TestChaining(t *testing.T) {
	c := newDemoCipher(t)
	plain := bytes.Repeat([]byte("SAMEBLK!"), 2)

	ecb := encrypt(t, c, ECB, plain)
	if !bytes.Equal(ecb[:8], ecb[8:]) {
		t.Errorf("ECB: identical blocks encrypted differently: %x", ecb)
	}

	for _, mode := range []Mode{CBC, CFB, OFB} {
		ct := encrypt(t, c, mode, plain)
		if bytes.Equal(ct[:8], ct[8:]) {
			t.Errorf("%v: identical blocks produced identical ciphertext %x", mode, ct[:8])
		}
	}
}

func TestIVSensitivity(t *testing.T) {
	plain := []byte("block one, two!!")
	for _, mode := range Modes {
		for bit := 0; bit < 64; bit++ {
			c := newDemoCipher(t)
			base := encrypt(t, c, mode, plain)

			iv := append([]byte{}, demoIV...)
			iv[bit/8] ^= 1 << (bit % 8)
			if err := c.SetIV(iv); err != nil {
				t.Fatal(err)
			}
			flipped := encrypt(t, c, mode, plain)

			same := bytes.Equal(base[:8], flipped[:8])
			if mode == ECB && !same {
				t.Fatalf("ECB output changed after flipping IV bit %d", bit)
			}
			if mode != ECB && same {
				t.Fatalf("%v first block unchanged after flipping IV bit %d", mode, bit)
			}
		}
	}
}

// Every call reseeds the feedback register from the stored IV.
func TestSequentialCallsReseedFromIV(t *testing.T) {
	c := newDemoCipher(t)
	plain := []byte("sequential calls must agree......")
	for _, mode := range Modes {
		first := encrypt(t, c, mode, plain)
		second := encrypt(t, c, mode, plain)
		if !bytes.Equal(first, second) {
			t.Errorf("%v: second call produced %x, first %x", mode, second, first)
		}
	}
}

func TestGarbledCiphertextDecryptsWithoutError(t *testing.T) {
	c := newDemoCipher(t)
	plain := []byte("integrity is not checked by GOST")
	for _, mode := range Modes {
		ct := encrypt(t, c, mode, plain)
		ct[3] ^= 0x80
		pt, err := c.Decrypt(mode, bytes.NewReader(ct))
		if err != nil {
			t.Fatalf("%v: Decrypt returned %v on garbled input", mode, err)
		}
		if bytes.Equal(pt, plain) {
			t.Errorf("%v: garbled ciphertext decrypted to the original", mode)
		}
	}
}

func TestUnknownMode(t *testing.T) {
	c := newDemoCipher(t)
	if _, err := c.Encrypt(Mode(42), strings.NewReader("whatever")); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("Encrypt error = %v, want ErrUnknownMode", err)
	}
	if _, err := c.DecryptBytes(Mode(-1), []byte("whatever")); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("DecryptBytes error = %v, want ErrUnknownMode", err)
	}
}

func TestBytesMatchesStream(t *testing.T) {
	c := newDemoCipher(t)
	plain := []byte("the in-memory path must agree with the reader path")
	for _, mode := range Modes {
		want := encrypt(t, c, mode, plain)
		got, err := c.EncryptBytes(mode, plain)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%v: EncryptBytes = %x, Encrypt = %x", mode, got, want)
		}

		back, err := c.DecryptBytes(mode, got)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(back, decrypt(t, c, mode, want)) {
			t.Errorf("%v: DecryptBytes disagrees with Decrypt", mode)
		}
	}
}

func TestEncryptStreamWritesTo(t *testing.T) {
	c := newDemoCipher(t)
	var buf bytes.Buffer
	n, err := c.EncryptStream(CBC, strings.NewReader("0123456789"), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 || buf.Len() != 16 {
		t.Fatalf("wrote %d bytes (buffer %d), want 16", n, buf.Len())
	}

	var back bytes.Buffer
	if _, err := c.DecryptStream(CBC, &buf, &back); err != nil {
		t.Fatal(err)
	}
	if got := back.String(); got != "0123456789\x00\x00\x00\x00\x00\x00" {
		t.Errorf("decrypted %q", got)
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestReaderErrorPropagates(t *testing.T) {
	c := newDemoCipher(t)
	boom := errors.New("disk on fire")
	_, err := c.Encrypt(OFB, failingReader{boom})
	if !errors.Is(err, boom) {
		t.Fatalf("Encrypt error = %v, want wrapped %v", err, boom)
	}
}

// The cipher.Block adapter must agree with the native drivers: CBC through
// crypto/cipher, CFB and OFB through feedback loops built on Block.Encrypt.
func TestStandardLibraryModes(t *testing.T) {
	c := newDemoCipher(t)
	plain := []byte("sixteen byte msg and another 16!")
	blk := c.Block()

	cfb := func(dst, src []byte) {
		reg := bytes.Clone(demoIV)
		for i := 0; i < len(src); i += BlockSize {
			blk.Encrypt(reg, reg)
			for j := 0; j < BlockSize; j++ {
				dst[i+j] = src[i+j] ^ reg[j]
			}
			copy(reg, dst[i:i+BlockSize])
		}
	}
	ofb := func(dst, src []byte) {
		reg := bytes.Clone(demoIV)
		for i := 0; i < len(src); i += BlockSize {
			blk.Encrypt(reg, reg)
			for j := 0; j < BlockSize; j++ {
				dst[i+j] = src[i+j] ^ reg[j]
			}
		}
	}

	reference := map[Mode]func(dst, src []byte){
		CBC: cipher.NewCBCEncrypter(blk, demoIV).CryptBlocks,
		CFB: cfb,
		OFB: ofb,
	}
	for mode, crypt := range reference {
		want := make([]byte, len(plain))
		crypt(want, plain)
		if got := encrypt(t, c, mode, plain); !bytes.Equal(got, want) {
			t.Errorf("%v: native %x, reference %x", mode, got, want)
		}
	}

	ct := encrypt(t, c, CBC, plain)
	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(blk, demoIV).CryptBlocks(pt, ct)
	if !bytes.Equal(pt, plain) {
		t.Errorf("crypto/cipher CBC decrypt = %q", pt)
	}
}

func TestConcurrentStreams(t *testing.T) {
	c := newDemoCipher(t)
	plain := bytes.Repeat([]byte("concurrency!"), 40)
	want := encrypt(t, c, CBC, plain)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Encrypt(CBC, bytes.NewReader(plain))
			if err != nil || !bytes.Equal(got, want) {
				errs <- "concurrent CBC stream diverged"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatal(e)
	}
}

func TestDebugTrace(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c, err := New(demoKey, WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Encrypt(ECB, strings.NewReader("Hello, World!")); err != nil {
		t.Fatal(err)
	}

	out := logs.String()
	if n := strings.Count(out, "msg=block"); n != 2 {
		t.Errorf("traced %d blocks, want 2:\n%s", n, out)
	}
	if !strings.Contains(out, "in=48656c6c6f2c2057") {
		t.Errorf("trace missing first input block:\n%s", out)
	}
}

// An empty stream has no partial block to pad, so nothing is emitted.
// This intentionally differs from the C++ reference, whose read loop
// writes one all-zero padded block for empty input.
func TestEmptyInput(t *testing.T) {
	c := newDemoCipher(t)
	for _, mode := range Modes {
		out, err := c.Encrypt(mode, bytes.NewReader(nil))
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 0 {
			t.Errorf("%v: empty input produced %d bytes", mode, len(out))
		}
	}
}

func TestWithIV(t *testing.T) {
	c := newDemoCipher(t)
	other, err := c.WithIV([]byte("abcdefgi"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Schedule() != other.Schedule() {
		t.Error("WithIV should share the key schedule")
	}
	if iv := c.IV(); string(iv[:]) != "abcdefgh" {
		t.Errorf("receiver IV changed to %q", iv[:])
	}

	got := hex.EncodeToString(encrypt(t, other, OFB, []byte("ABCDEFGHABCDEFGH")))
	if want := "ee04d5070b132a452c51c10cb736e2e9"; got != want {
		t.Errorf("OFB with derived IV = %s, want %s", got, want)
	}

	if _, err := c.WithIV([]byte("short")); !errors.Is(err, ErrIVSize) {
		t.Errorf("WithIV(short) error = %v, want ErrIVSize", err)
	}
}
