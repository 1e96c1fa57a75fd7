package workerclassifier

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/user/vidaction/pkg/ports"
)

// Operations understood by a worker.
const (
	OpReset    = "reset"
	OpClassify = "classify"
	OpClose    = "close"
)

// MaxMessageSize bounds a single framed message.
const MaxMessageSize = 64 << 20

// Request is sent to the worker. Frame holds Width*Height RGB triplets,
// row-major, with no padding.
type Request struct {
	Op     string `msgpack:"op"`
	Frame  []byte `msgpack:"frame,omitempty"`
	Width  int    `msgpack:"width,omitempty"`
	Height int    `msgpack:"height,omitempty"`
}

// Response is returned by the worker for every request.
type Response struct {
	Error      string           `msgpack:"error,omitempty"`
	Categories []ports.Category `msgpack:"categories,omitempty"`
}

// WriteMessage writes v as msgpack behind a 4-byte big-endian length prefix.
func WriteMessage(w io.Writer, v interface{}) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal msgpack: %w", err)
	}
	if len(payload) > MaxMessageSize {
		return fmt.Errorf("message of %d bytes exceeds limit", len(payload))
	}

	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[4:], payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// ReadMessage reads one length-prefixed msgpack message into v.
func ReadMessage(r io.Reader, v interface{}) error {
	var lengthBuf [4]byte
	if _, err := io.ReadFull(r, lengthBuf[:]); err != nil {
		return fmt.Errorf("read length prefix: %w", err)
	}

	n := binary.BigEndian.Uint32(lengthBuf[:])
	if n > MaxMessageSize {
		return fmt.Errorf("message of %d bytes exceeds limit", n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return fmt.Errorf("read message body: %w", err)
	}
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("unmarshal msgpack: %w", err)
	}
	return nil
}
