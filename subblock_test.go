package gif

import (
	"bytes"
	"testing"
)

func TestSubBlockFramingRoundTrip(t *testing.T) {
	payload := make([]byte, 600)
	for i := range payload {
		payload[i] = byte(i)
	}

	buf := newByteBuffer()
	writeSubBlocks(buf, payload)
	framed := buf.GetData()

	if framed[len(framed)-1] != 0x00 {
		t.Fatalf("framed output must end in a terminating zero block")
	}

	r := newSubBlockReader(newByteReader(framed))
	got, err := r.readAll()
	if err != nil {
		t.Fatalf("readAll: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("round-tripped payload differs from original")
	}
}

func TestSubBlockMaxChunkSize(t *testing.T) {
	payload := make([]byte, 300)
	buf := newByteBuffer()
	writeSubBlocks(buf, payload)
	framed := buf.GetData()

	// First byte is the length of the first chunk; it must not exceed 255.
	if framed[0] > maxSubBlockSize {
		t.Errorf("first sub-block length %d exceeds %d", framed[0], maxSubBlockSize)
	}
}

func TestSubBlockSkip(t *testing.T) {
	payload := []byte("hello, sub-block framer")
	buf := newByteBuffer()
	writeSubBlocks(buf, payload)
	buf.WriteByte(0xFF) // sentinel after the framed block, to confirm skip stops correctly
	framed := buf.GetData()

	br := newByteReader(framed)
	if err := newSubBlockReader(br).skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	sentinel, err := br.ReadByte()
	if err != nil {
		t.Fatalf("reading sentinel: %v", err)
	}
	if sentinel != 0xFF {
		t.Errorf("sentinel = %#x, want 0xff", sentinel)
	}
}

func TestSubBlockEmptyPayload(t *testing.T) {
	buf := newByteBuffer()
	writeSubBlocks(buf, nil)
	framed := buf.GetData()
	if len(framed) != 1 || framed[0] != 0 {
		t.Fatalf("empty payload should frame to a single terminator byte, got %v", framed)
	}
}
