// Package obfuscate implements the reversible XOR + base64 transform used for
// stored values and backup artifacts.
//
// This is an obfuscation and portability transform, not encryption. Anyone
// holding the key (or a few known plaintext bytes) can recover the input.
package obfuscate

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf16"
)

var (
	ErrEmptyKey       = errors.New("obfuscate: key is empty")
	ErrMalformedInput = errors.New("obfuscate: malformed input")
)

// Encode XORs the UTF-16 code units of plaintext with the repeating UTF-16
// code units of key and returns the result as standard base64. Each code unit
// is written as two big-endian bytes so units above 0xFF survive.
func Encode(plaintext, key string) (string, error) {
	keyUnits := utf16.Encode([]rune(key))
	if len(keyUnits) == 0 {
		return "", ErrEmptyKey
	}
	units := utf16.Encode([]rune(plaintext))
	buf := make([]byte, 2*len(units))
	for i, u := range units {
		binary.BigEndian.PutUint16(buf[2*i:], u^keyUnits[i%len(keyUnits)])
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Decode reverses Encode. A wrong key does not produce an error here; it
// produces garbage that the caller's parser rejects.
func Decode(encoded, key string) (string, error) {
	keyUnits := utf16.Encode([]rune(key))
	if len(keyUnits) == 0 {
		return "", ErrEmptyKey
	}
	buf, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(buf)%2 != 0 {
		return "", fmt.Errorf("%w: odd byte length %d", ErrMalformedInput, len(buf))
	}
	units := make([]uint16, len(buf)/2)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(buf[2*i:]) ^ keyUnits[i%len(keyUnits)]
	}
	return string(utf16.Decode(units)), nil
}

// EncodeBytes is Encode for callers holding UTF-8 bytes.
func EncodeBytes(plaintext []byte, key string) ([]byte, error) {
	out, err := Encode(string(plaintext), key)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// DecodeBytes is Decode for callers holding the encoded text as bytes.
func DecodeBytes(encoded []byte, key string) ([]byte, error) {
	out, err := Decode(string(encoded), key)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
