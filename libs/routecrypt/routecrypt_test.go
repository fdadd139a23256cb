package routecrypt

import (
	"strings"
	"testing"
)

const testSecret = "0123456789abcdef"

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := New(testSecret)
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	return c
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := newTestCipher(t)

	segments := []string{
		"masters",
		"continents",
		"userType",
		"waste-collections",
		"a",
		"",
		"ward ünïcode/окtoo",
	}
	for _, segment := range segments {
		token, err := c.Encode(segment)
		if err != nil {
			t.Fatalf("encode %q: %v", segment, err)
		}
		got, ok := c.Decode(token)
		if segment == "" {
			// empty plaintext still round-trips through a sealed token
			if !ok || got != "" {
				t.Fatalf("empty round trip failed: %q ok=%v", got, ok)
			}
			continue
		}
		if !ok {
			t.Fatalf("decode %q: not ok", segment)
		}
		if got != segment {
			t.Fatalf("round trip mismatch: got %q want %q", got, segment)
		}
	}
}

func TestEncodeIsRandomizedButInvertible(t *testing.T) {
	c := newTestCipher(t)

	first, err := c.Encode("continents")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := c.Encode("continents")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if first == second {
		t.Fatal("expected two encodings of the same plaintext to differ")
	}
	for _, token := range []string{first, second} {
		got, ok := c.Decode(token)
		if !ok || got != "continents" {
			t.Fatalf("decode %q: got %q ok=%v", token, got, ok)
		}
	}
}

func TestEncodeOutputIsURLSafe(t *testing.T) {
	c := newTestCipher(t)

	for i := 0; i < 50; i++ {
		token, err := c.Encode("wasteCollections")
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if strings.ContainsAny(token, "+/=") {
			t.Fatalf("token contains unsafe characters: %q", token)
		}
	}
}

func TestDecodeMalformedInput(t *testing.T) {
	c := newTestCipher(t)

	inputs := []string{
		"",
		"not-a-token",
		"!!!!",
		"AAAA",
		strings.Repeat("A", 7),
	}
	for _, input := range inputs {
		if got, ok := c.Decode(input); ok {
			t.Fatalf("decode %q: expected failure, got %q", input, got)
		}
	}
}

func TestDecodeRejectsForeignSecret(t *testing.T) {
	c := newTestCipher(t)
	other, err := New("another-secret-entirely")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	token, err := other.Encode("districts")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got, ok := c.Decode(token); ok {
		t.Fatalf("expected decode under wrong secret to fail, got %q", got)
	}
}

func TestDecodeRejectsTamperedToken(t *testing.T) {
	c := newTestCipher(t)

	token, err := c.Encode("zones")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// flip a character near the end of the ciphertext
	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'B' {
		tampered[last] = 'C'
	} else {
		tampered[last] = 'B'
	}
	if got, ok := c.Decode(string(tampered)); ok && got == "zones" {
		t.Fatal("expected tampered token to fail authentication")
	}
}
