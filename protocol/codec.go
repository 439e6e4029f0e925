package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds how much a single frame may declare. Peers never
// send frames anywhere near this; anything larger is a broken or hostile
// connection and gets closed.
const MaxFrameSize = 1 << 20 // 1 MiB

// ErrFrameTooLarge is returned when a frame declares a length above
// MaxFrameSize.
var ErrFrameTooLarge = errors.New("protocol: frame exceeds maximum size")

// WriteEnvelope frames the envelope as a 4-byte big-endian length prefix
// followed by the JSON payload, written in a single call so concurrent
// writers cannot interleave partial frames.
func WriteEnvelope(w io.Writer, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame[:4], uint32(len(payload)))
	copy(frame[4:], payload)

	_, err = w.Write(frame)
	return err
}

// FrameReader decodes length-prefixed envelopes from a stream while
// preserving partial-frame state across failed reads. A read deadline
// that fires between the header and its payload leaves the bytes read so
// far in place, and the next call resumes exactly where the stream
// stopped instead of reparsing payload bytes as a header.
type FrameReader struct {
	r io.Reader

	header      [4]byte
	headerRead  int
	payload     []byte // nil until the header is complete
	payloadRead int
}

// NewFrameReader wraps a stream for resumable envelope reads.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

// ReadEnvelope blocks until the current frame completes and decodes it.
// On a timeout or any other transient error the frame stays pending and
// a later call picks it up mid-frame.
func (fr *FrameReader) ReadEnvelope() (Envelope, error) {
	var env Envelope

	for fr.headerRead < len(fr.header) {
		n, err := fr.r.Read(fr.header[fr.headerRead:])
		fr.headerRead += n
		if err != nil && fr.headerRead < len(fr.header) {
			return env, err
		}
	}

	if fr.payload == nil {
		length := binary.BigEndian.Uint32(fr.header[:])
		if length > MaxFrameSize {
			fr.headerRead = 0
			return env, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
		}
		fr.payload = make([]byte, length)
	}

	for fr.payloadRead < len(fr.payload) {
		n, err := fr.r.Read(fr.payload[fr.payloadRead:])
		fr.payloadRead += n
		if err != nil && fr.payloadRead < len(fr.payload) {
			return env, err
		}
	}

	data := fr.payload
	fr.headerRead = 0
	fr.payload = nil
	fr.payloadRead = 0

	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}

// ReadEnvelope blocks until a full frame has arrived and decodes it. A
// stream that ends before the declared length is satisfied surfaces as an
// io error, which callers treat as a disconnect.
func ReadEnvelope(r io.Reader) (Envelope, error) {
	var env Envelope

	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return env, err
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > MaxFrameSize {
		return env, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return env, err
	}

	if err := json.Unmarshal(payload, &env); err != nil {
		return env, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}
