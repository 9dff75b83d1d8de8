// Package binfmt holds the little-endian primitives shared by the Sphere
// resource formats (.rmp, .rts, .rss): fixed-layout headers and
// length-prefixed strings.
package binfmt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrSignature is returned when a file does not start with the expected magic.
var ErrSignature = errors.New("bad signature")

// ReadStruct decodes a fixed-size little-endian record.
func ReadStruct(r io.Reader, v any) error {
	return binary.Read(r, binary.LittleEndian, v)
}

// WriteStruct encodes a fixed-size little-endian record.
func WriteStruct(w io.Writer, v any) error {
	return binary.Write(w, binary.LittleEndian, v)
}

// ReadLString reads a string prefixed by its uint16 length.
func ReadLString(r io.Reader) (string, error) {
	var n uint16
	if err := ReadStruct(r, &n); err != nil {
		return "", err
	}
	return ReadRaw(r, int(n))
}

// ReadRaw reads exactly n bytes as a string. A trailing NUL is dropped, since
// some editors count the terminator in the length.
func ReadRaw(r io.Reader, n int) (string, error) {
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	if buf[n-1] == 0 {
		buf = buf[:n-1]
	}
	return string(buf), nil
}

// WriteLString writes s prefixed by its uint16 length.
func WriteLString(w io.Writer, s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("string of %d bytes exceeds 65535", len(s))
	}
	if err := WriteStruct(w, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// Skip discards n bytes.
func Skip(r io.Reader, n int64) error {
	_, err := io.CopyN(io.Discard, r, n)
	return err
}

// CheckSignature compares a 4-byte magic with the expected one.
func CheckSignature(got [4]byte, want string) error {
	if string(got[:]) != want {
		return fmt.Errorf("%w: %q, expected %q", ErrSignature, string(got[:]), want)
	}
	return nil
}

// Signature converts a magic string into the 4-byte header form.
func Signature(s string) [4]byte {
	var sig [4]byte
	copy(sig[:], s)
	return sig
}
