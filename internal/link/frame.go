package link

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/fzdarsky/radiounlock/pkg/protocol"
)

const (
	// SyncByte starts every frame on the wire.
	SyncByte byte = 0x7E

	// MaxPayloadSize is the largest payload a frame may carry.
	MaxPayloadSize = 512

	headerSize  = 4 // sync, type, length
	trailerSize = 4 // crc32
)

var (
	// ErrChecksum is returned when a frame fails its CRC check.
	ErrChecksum = errors.New("link: frame checksum mismatch")
	// ErrFrameTooLarge is returned when a frame exceeds MaxPayloadSize.
	ErrFrameTooLarge = errors.New("link: frame too large")
)

// Encode serializes a packet as [0x7E][type][len BE16][payload][crc32 BE],
// with the checksum computed over type, length and payload.
func Encode(pkt protocol.Packet) ([]byte, error) {
	if len(pkt.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(pkt.Payload))
	}

	buf := make([]byte, headerSize+len(pkt.Payload)+trailerSize)
	buf[0] = SyncByte
	buf[1] = byte(pkt.Type)
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(pkt.Payload)))
	copy(buf[headerSize:], pkt.Payload)

	sum := crc32.ChecksumIEEE(buf[1 : headerSize+len(pkt.Payload)])
	binary.BigEndian.PutUint32(buf[headerSize+len(pkt.Payload):], sum)

	return buf, nil
}

// ReadFrame reads the next frame from r. Bytes preceding a sync byte are
// skipped. A frame is consumed only once its checksum matches: on ErrChecksum
// or ErrFrameTooLarge just the sync byte has been read, so the next call
// resynchronizes on the following sync byte. Any other error is fatal.
func ReadFrame(r *bufio.Reader) (protocol.Packet, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return protocol.Packet{}, err
		}
		if b == SyncByte {
			break
		}
	}

	const prefix = headerSize - 1 // type and length after the sync byte

	hdr, err := r.Peek(prefix)
	if err != nil {
		return protocol.Packet{}, truncated(err)
	}

	length := int(binary.BigEndian.Uint16(hdr[1:3]))
	if length > MaxPayloadSize {
		return protocol.Packet{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	// A corrupted length can claim bytes that belong to later frames. If the
	// claimed frame is not buffered yet but a complete frame already is, give
	// up on this one instead of waiting for data that may never come.
	need := prefix + length + trailerSize
	if avail := r.Buffered(); avail < need {
		if buffered, _ := r.Peek(avail); containsFrame(buffered[min(prefix, len(buffered)):]) {
			return protocol.Packet{}, ErrChecksum
		}
	}

	frame, err := r.Peek(need)
	if err != nil {
		return protocol.Packet{}, truncated(err)
	}

	if crc32.ChecksumIEEE(frame[:prefix+length]) != binary.BigEndian.Uint32(frame[prefix+length:]) {
		return protocol.Packet{}, ErrChecksum
	}

	pkt := protocol.Packet{
		Type:    protocol.FrameType(frame[0]),
		Payload: bytes.Clone(frame[prefix : prefix+length]),
	}
	_, _ = r.Discard(len(frame))

	return pkt, nil
}

// truncated reports a stream that ends inside a frame as io.ErrUnexpectedEOF.
func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// containsFrame reports whether b holds a complete frame with a valid checksum.
func containsFrame(b []byte) bool {
	for i := bytes.IndexByte(b, SyncByte); i >= 0; {
		rest := b[i:]
		if len(rest) >= headerSize+trailerSize {
			length := int(binary.BigEndian.Uint16(rest[2:4]))
			end := headerSize + length
			if length <= MaxPayloadSize && len(rest) >= end+trailerSize &&
				crc32.ChecksumIEEE(rest[1:end]) == binary.BigEndian.Uint32(rest[end:]) {
				return true
			}
		}
		next := bytes.IndexByte(rest[1:], SyncByte)
		if next < 0 {
			return false
		}
		i += next + 1
	}
	return false
}
