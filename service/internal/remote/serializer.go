package remote

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const hexBase = 16

// SerializeInt encodes a 32-bit value as unsigned hexadecimal.
func SerializeInt(v uint32) string { return strconv.FormatUint(uint64(v), hexBase) }

// DeserializeInt parses an unsigned hexadecimal 32-bit value.
func DeserializeInt(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, hexBase, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad int %q", ErrProtocol, s)
	}
	return uint32(v), nil
}

// SerializeLong encodes a 64-bit value as unsigned hexadecimal.
func SerializeLong(v uint64) string { return strconv.FormatUint(v, hexBase) }

// DeserializeLong parses an unsigned hexadecimal 64-bit value.
func DeserializeLong(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, hexBase, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad long %q", ErrProtocol, s)
	}
	return v, nil
}

// SerializeString encodes s as standard Base64 of its UTF-8 bytes, so it
// never contains the separators.
func SerializeString(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func DeserializeString(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: bad string %q", ErrProtocol, s)
	}
	return string(b), nil
}

// Combine joins parts with sep.
func Combine(sep string, parts ...string) string { return strings.Join(parts, sep) }

// Split is the inverse of Combine.
func Split(sep, s string) []string { return strings.Split(s, sep) }
