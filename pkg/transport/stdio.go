package transport

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/pkg/protocol"
)

// StreamTransport reads newline or whitespace separated JSON-RPC requests
// from a reader and writes one response per line
type StreamTransport struct {
	decoder *json.Decoder
	mu      sync.Mutex
	writer  *bufio.Writer
}

// NewStdioTransport is a StreamTransport over stdin and stdout
func NewStdioTransport() *StreamTransport {
	return NewStreamTransport(os.Stdin, os.Stdout)
}

func NewStreamTransport(r io.Reader, w io.Writer) *StreamTransport {
	return &StreamTransport{
		decoder: json.NewDecoder(bufio.NewReader(r)),
		writer:  bufio.NewWriter(w),
	}
}

// ReadRequest blocks until a complete JSON value has been read.
// io.EOF is returned unchanged when the client disconnects.
func (t *StreamTransport) ReadRequest() (*protocol.JsonRpcRequest, error) {
	var raw json.RawMessage
	if err := t.decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			logger.Info("Received EOF on stdin, client disconnected")
			return nil, io.EOF
		}
		return nil, &protocol.JsonRpcError{Code: protocol.ErrParse, Message: err.Error()}
	}
	logger.Debug("Received raw request:", string(raw))

	req, err := protocol.ParseJsonRpcRequest(raw)
	if err != nil {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrInvalidRequest, Message: err.Error()}
	}
	return req, nil
}

func (t *StreamTransport) WriteResponse(response *protocol.JsonRpcResponse) error {
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	data = append(data, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush response: %w", err)
	}
	logger.Debug("Response sent", string(data))
	return nil
}
