package ipc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"launch args", Message{Type: MessageLaunchArgs, Args: []string{"/vaults/a", "b c", ""}}},
		{"launch args empty", Message{Type: MessageLaunchArgs, Args: nil}},
		{"reveal", Message{Type: MessageRevealApp}},
		{"utf8", Message{Type: MessageLaunchArgs, Args: []string{"tresor ä", "金庫"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeFrame(&buf, tc.msg); err != nil {
				t.Fatalf("writeFrame: %v", err)
			}
			got, err := readFrame(&buf)
			if err != nil {
				t.Fatalf("readFrame: %v", err)
			}
			if got.Type != tc.msg.Type {
				t.Fatalf("type = %v, want %v", got.Type, tc.msg.Type)
			}
			if len(got.Args) != len(tc.msg.Args) {
				t.Fatalf("args = %#v, want %#v", got.Args, tc.msg.Args)
			}
			for i := range got.Args {
				if got.Args[i] != tc.msg.Args[i] {
					t.Fatalf("args[%d] = %q, want %q", i, got.Args[i], tc.msg.Args[i])
				}
			}
		})
	}
}

func TestReadFrameCleanEOF(t *testing.T) {
	_, err := readFrame(bytes.NewReader(nil))
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestReadFrameTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFrame(&buf, Message{Type: MessageLaunchArgs, Args: []string{"x"}}); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-3]
	_, err := readFrame(bytes.NewReader(truncated))
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected decode failure, got %v", err)
	}
}

func TestReadFrameRejectsOversized(t *testing.T) {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], maxFrameSize+1)
	_, err := readFrame(bytes.NewReader(header[:]))
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	frame := []byte{0, 0, 0, 1, 0x7f}
	_, err := readFrame(bytes.NewReader(frame))
	if err == nil || !strings.Contains(err.Error(), "unknown message tag") {
		t.Fatalf("expected unknown tag error, got %v", err)
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	frame := []byte{0, 0, 0, 2, byte(MessageRevealApp), 0xff}
	_, err := readFrame(bytes.NewReader(frame))
	if err == nil || !strings.Contains(err.Error(), "trailing bytes") {
		t.Fatalf("expected trailing bytes error, got %v", err)
	}
}
