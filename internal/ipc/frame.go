package ipc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Wire format: a big-endian uint32 frame length, then a one-byte message
// tag, then the payload. LaunchArgs payloads carry a uint32 argument count
// followed by uint32-length-prefixed UTF-8 strings. RevealApp is empty.
const (
	maxFrameSize  = 1 << 20
	maxLaunchArgs = 4096
)

// ErrFrameTooLarge reports a frame exceeding the size limit, on either side
// of the wire.
var ErrFrameTooLarge = errors.New("ipc: frame exceeds size limit")

func encodeMessage(msg Message) ([]byte, error) {
	var payload bytes.Buffer
	payload.WriteByte(byte(msg.Type))
	switch msg.Type {
	case MessageLaunchArgs:
		var scratch [4]byte
		binary.BigEndian.PutUint32(scratch[:], uint32(len(msg.Args)))
		payload.Write(scratch[:])
		for _, arg := range msg.Args {
			binary.BigEndian.PutUint32(scratch[:], uint32(len(arg)))
			payload.Write(scratch[:])
			payload.WriteString(arg)
		}
	case MessageRevealApp:
	default:
		return nil, fmt.Errorf("encode frame: unknown message type 0x%02x", byte(msg.Type))
	}

	if payload.Len() > maxFrameSize {
		return nil, ErrFrameTooLarge
	}

	frame := make([]byte, 4+payload.Len())
	binary.BigEndian.PutUint32(frame, uint32(payload.Len()))
	copy(frame[4:], payload.Bytes())
	return frame, nil
}

func writeFrame(w io.Writer, msg Message) error {
	frame, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// readFrame reads and decodes one frame. A clean end of stream surfaces as
// io.EOF; anything else is a decode failure.
func readFrame(r io.Reader) (Message, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Message{}, io.EOF
		}
		return Message{}, fmt.Errorf("read frame header: %w", err)
	}

	size := binary.BigEndian.Uint32(header[:])
	if size == 0 {
		return Message{}, errors.New("decode frame: empty frame")
	}
	if size > maxFrameSize {
		return Message{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return Message{}, fmt.Errorf("read frame body: %w", err)
	}
	return decodeMessage(body)
}

func decodeMessage(body []byte) (Message, error) {
	tag := MessageType(body[0])
	rest := body[1:]
	switch tag {
	case MessageLaunchArgs:
		if len(rest) < 4 {
			return Message{}, errors.New("decode frame: truncated argument count")
		}
		count := binary.BigEndian.Uint32(rest)
		rest = rest[4:]
		if count > maxLaunchArgs {
			return Message{}, fmt.Errorf("decode frame: argument count %d exceeds limit", count)
		}
		args := make([]string, 0, count)
		for i := uint32(0); i < count; i++ {
			if len(rest) < 4 {
				return Message{}, errors.New("decode frame: truncated argument length")
			}
			size := binary.BigEndian.Uint32(rest)
			rest = rest[4:]
			if uint64(len(rest)) < uint64(size) {
				return Message{}, errors.New("decode frame: truncated argument")
			}
			args = append(args, string(rest[:size]))
			rest = rest[size:]
		}
		if len(rest) != 0 {
			return Message{}, errors.New("decode frame: trailing bytes")
		}
		return Message{Type: MessageLaunchArgs, Args: args}, nil
	case MessageRevealApp:
		if len(rest) != 0 {
			return Message{}, errors.New("decode frame: trailing bytes")
		}
		return Message{Type: MessageRevealApp}, nil
	default:
		return Message{}, fmt.Errorf("decode frame: unknown message tag 0x%02x", byte(tag))
	}
}
