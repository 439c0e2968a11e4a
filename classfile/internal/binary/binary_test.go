package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.Byte(0xCA)
	w.WriteU16(0xFEBA)
	w.WriteU32(0xDEADBEEF)
	w.WriteU64(0x0102030405060708)
	w.WriteUTF8("java/lang/Object")
	w.WriteBytes([]byte{1, 2, 3})

	r := NewReader(bytes.NewReader(w.Bytes()))

	b, err := r.ReadByte()
	if err != nil || b != 0xCA {
		t.Fatalf("ReadByte = %#x, %v", b, err)
	}
	u16, err := r.ReadU16()
	if err != nil || u16 != 0xFEBA {
		t.Fatalf("ReadU16 = %#x, %v", u16, err)
	}
	u32, err := r.ReadU32()
	if err != nil || u32 != 0xDEADBEEF {
		t.Fatalf("ReadU32 = %#x, %v", u32, err)
	}
	u64, err := r.ReadU64()
	if err != nil || u64 != 0x0102030405060708 {
		t.Fatalf("ReadU64 = %#x, %v", u64, err)
	}
	s, err := r.ReadUTF8()
	if err != nil || s != "java/lang/Object" {
		t.Fatalf("ReadUTF8 = %q, %v", s, err)
	}
	rest, err := r.ReadRemaining()
	if err != nil || !bytes.Equal(rest, []byte{1, 2, 3}) {
		t.Fatalf("ReadRemaining = %v, %v", rest, err)
	}
}

func TestReaderBigEndian(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x00, 0x2A}))
	v, err := r.ReadU16()
	if err != nil {
		t.Fatal(err)
	}
	if v != 42 {
		t.Errorf("ReadU16 = %d, want 42 (big-endian)", v)
	}
}

func TestReaderPosition(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6}))
	if r.Position() != 0 {
		t.Errorf("initial position = %d", r.Position())
	}
	if _, err := r.ReadU16(); err != nil {
		t.Fatal(err)
	}
	if r.Position() != 2 {
		t.Errorf("position after ReadU16 = %d, want 2", r.Position())
	}
	if _, err := r.ReadU32(); err != nil {
		t.Fatal(err)
	}
	if r.Position() != 6 {
		t.Errorf("position after ReadU32 = %d, want 6", r.Position())
	}
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x00}))
	if _, err := r.ReadU32(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadU32 on short input = %v, want EOF", err)
	}
}

func TestReaderInvalidUTF8(t *testing.T) {
	w := NewWriter()
	w.WriteU16(2)
	w.WriteBytes([]byte{0xFF, 0xFE})
	r := NewReader(bytes.NewReader(w.Bytes()))
	if _, err := r.ReadUTF8(); err == nil {
		t.Error("ReadUTF8 accepted invalid UTF-8")
	}
}

func TestWrapError(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2, 3}))
	if _, err := r.ReadU16(); err != nil {
		t.Fatal(err)
	}
	cause := errors.New("boom")
	err := r.WrapError("constant pool", cause)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("WrapError did not return *ParseError: %T", err)
	}
	if pe.Position != 2 || pe.Section != "constant pool" {
		t.Errorf("ParseError = %+v", pe)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not unwrapped")
	}
}
