package mllp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

// TestFrameUnframe tests MLLP framing and unframing functions.
func TestFrameUnframe(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    []byte
		wantErr error
	}{
		{
			name:  "simple message",
			input: []byte("MSH|^~\\&|TEST"),
			want:  []byte{0x0B, 'M', 'S', 'H', '|', '^', '~', '\\', '&', '|', 'T', 'E', 'S', 'T', 0x1C, 0x0D},
		},
		{
			name:  "empty message",
			input: []byte{},
			want:  []byte{0x0B, 0x1C, 0x0D},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			framed := Frame(tt.input)
			if !bytes.Equal(framed, tt.want) {
				t.Errorf("Frame() = %v, want %v", framed, tt.want)
			}

			unframed, err := Unframe(framed)
			if err != nil {
				t.Errorf("Unframe() error = %v", err)
				return
			}
			if !bytes.Equal(unframed, tt.input) {
				t.Errorf("Unframe() = %v, want %v", unframed, tt.input)
			}
		})
	}
}

// TestUnframeErrors tests error conditions in Unframe.
func TestUnframeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{
			name:    "missing start block",
			input:   []byte{'M', 'S', 'H', 0x1C, 0x0D},
			wantErr: ErrInvalidStartBlock,
		},
		{
			name:    "missing end block",
			input:   []byte{0x0B, 'M', 'S', 'H'},
			wantErr: ErrInvalidEndBlock,
		},
		{
			name:    "wrong end sequence",
			input:   []byte{0x0B, 'M', 'S', 'H', 0x0D, 0x0D},
			wantErr: ErrInvalidEndBlock,
		},
		{
			name:    "too short",
			input:   []byte{0x0B},
			wantErr: ErrInvalidStartBlock,
		},
		{
			name:    "empty",
			input:   []byte{},
			wantErr: ErrInvalidStartBlock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unframe(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Unframe() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestReaderReadMessage tests the MLLP reader.
func TestReaderReadMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    []byte
		wantErr error
	}{
		{
			name:  "simple message",
			input: Frame([]byte("MSH|^~\\&|TEST")),
			want:  []byte("MSH|^~\\&|TEST"),
		},
		{
			name:  "message with garbage before",
			input: append([]byte("garbage"), Frame([]byte("MSH|^~\\&|TEST"))...),
			want:  []byte("MSH|^~\\&|TEST"),
		},
		{
			name:    "incomplete message",
			input:   []byte{0x0B, 'M', 'S', 'H'},
			wantErr: ErrConnectionClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewReader(bytes.NewReader(tt.input), MaxMessageSize)
			got, err := reader.ReadMessage()

			if tt.wantErr != nil {
				if err == nil {
					t.Errorf("ReadMessage() expected error %v, got nil", tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("ReadMessage() error = %v", err)
				return
			}

			if !bytes.Equal(got, tt.want) {
				t.Errorf("ReadMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestReaderMaxSize tests message size limits.
func TestReaderMaxSize(t *testing.T) {
	largeData := make([]byte, 100)
	for i := range largeData {
		largeData[i] = 'A'
	}
	framed := Frame(largeData)

	reader := NewReader(bytes.NewReader(framed), 50)
	_, err := reader.ReadMessage()

	if !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("ReadMessage() error = %v, want %v", err, ErrMessageTooLarge)
	}
}

// TestWriterWriteMessage tests the MLLP writer.
func TestWriterWriteMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	writer := NewWriter(buf)

	data := []byte("MSH|^~\\&|TEST")
	err := writer.WriteMessage(data)
	if err != nil {
		t.Errorf("WriteMessage() error = %v", err)
		return
	}

	expected := Frame(data)
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("WriteMessage() wrote %v, want %v", buf.Bytes(), expected)
	}
}

// TestClientOptions tests client configuration options.
func TestClientOptions(t *testing.T) {
	tests := []struct {
		name   string
		opts   []ClientOption
		check  func(*clientConfig) bool
		errMsg string
	}{
		{
			name: "default config",
			opts: nil,
			check: func(c *clientConfig) bool {
				return c.timeout == DefaultTimeout &&
					c.retryAttempts == DefaultRetryAttempts &&
					c.keepAlive == true
			},
			errMsg: "default config values not set correctly",
		},
		{
			name: "with timeout",
			opts: []ClientOption{WithTimeout(5 * time.Second)},
			check: func(c *clientConfig) bool {
				return c.timeout == 5*time.Second
			},
			errMsg: "timeout not set correctly",
		},
		{
			name: "with retry",
			opts: []ClientOption{WithRetry(3, 2*time.Second)},
			check: func(c *clientConfig) bool {
				return c.retryAttempts == 3 && c.retryBackoff == 2*time.Second
			},
			errMsg: "retry config not set correctly",
		},
		{
			name: "with keep alive disabled",
			opts: []ClientOption{WithKeepAlive(false)},
			check: func(c *clientConfig) bool {
				return c.keepAlive == false
			},
			errMsg: "keep alive not set correctly",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := defaultClientConfig()
			for _, opt := range tt.opts {
				opt(&config)
			}
			if !tt.check(&config) {
				t.Error(tt.errMsg)
			}
		})
	}
}

// TestMLLPConstants verifies MLLP framing constants.
func TestMLLPConstants(t *testing.T) {
	if StartBlock != 0x0B {
		t.Errorf("StartBlock = %#x, want %#x", StartBlock, 0x0B)
	}
	if EndBlock != 0x1C {
		t.Errorf("EndBlock = %#x, want %#x", EndBlock, 0x1C)
	}
	if CarriageReturn != 0x0D {
		t.Errorf("CarriageReturn = %#x, want %#x", CarriageReturn, 0x0D)
	}
}

// TestReaderMultipleMessages tests reading multiple messages.
func TestReaderMultipleMessages(t *testing.T) {
	msg1 := Frame([]byte("MSG1"))
	msg2 := Frame([]byte("MSG2"))
	combined := make([]byte, 0, len(msg1)+len(msg2))
	combined = append(combined, msg1...)
	combined = append(combined, msg2...)

	reader := NewReader(bytes.NewReader(combined), MaxMessageSize)

	got1, err := reader.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() 1 error = %v", err)
	}
	if string(got1) != "MSG1" {
		t.Errorf("ReadMessage() 1 = %q, want %q", got1, "MSG1")
	}

	got2, err := reader.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() 2 error = %v", err)
	}
	if string(got2) != "MSG2" {
		t.Errorf("ReadMessage() 2 = %q, want %q", got2, "MSG2")
	}

	_, err = reader.ReadMessage()
	if err != io.EOF {
		t.Errorf("ReadMessage() 3 error = %v, want EOF", err)
	}
}

// TestNewReaderDefaultMaxSize tests that NewReader uses default max size when 0 is passed.
func TestNewReaderDefaultMaxSize(t *testing.T) {
	reader := NewReader(bytes.NewReader([]byte{}), 0)
	if reader.maxSize != MaxMessageSize {
		t.Errorf("NewReader(0) maxSize = %d, want %d", reader.maxSize, MaxMessageSize)
	}
}

// TestNewReaderNegativeMaxSize tests that NewReader uses default max size when negative is passed.
func TestNewReaderNegativeMaxSize(t *testing.T) {
	reader := NewReader(bytes.NewReader([]byte{}), -1)
	if reader.maxSize != MaxMessageSize {
		t.Errorf("NewReader(-1) maxSize = %d, want %d", reader.maxSize, MaxMessageSize)
	}
}

// TestReaderFalseEndBlock tests a message with end block character in the data.
func TestReaderFalseEndBlock(t *testing.T) {
	data := []byte{StartBlock, 'A', EndBlock, 'B', EndBlock, CarriageReturn}
	reader := NewReader(bytes.NewReader(data), MaxMessageSize)

	got, err := reader.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	expected := []byte{'A', EndBlock, 'B'}
	if !bytes.Equal(got, expected) {
		t.Errorf("ReadMessage() = %v, want %v", got, expected)
	}
}

// failingWriter fails writes after a configured number of bytes, to exercise
// WriteMessage's error paths at each framing stage.
type failingWriter struct {
	failAfter int
	written   int
}

func (w *failingWriter) Write(b []byte) (int, error) {
	if w.written >= w.failAfter {
		return 0, errors.New("write failed")
	}
	w.written += len(b)
	return len(b), nil
}

func TestWriterWriteStartBlockError(t *testing.T) {
	w := &failingWriter{failAfter: 0}
	writer := NewWriter(w)

	err := writer.WriteMessage([]byte("test"))
	if err == nil {
		t.Error("WriteMessage() expected error, got nil")
	}
}

func TestWriterWriteDataError(t *testing.T) {
	w := &failingWriter{failAfter: 1}
	writer := NewWriter(w)

	err := writer.WriteMessage([]byte("test"))
	if err == nil {
		t.Error("WriteMessage() expected error, got nil")
	}
}

func TestWriterWriteEndBlockError(t *testing.T) {
	w := &failingWriter{failAfter: 5}
	writer := NewWriter(w)

	err := writer.WriteMessage([]byte("test"))
	if err == nil {
		t.Error("WriteMessage() expected error, got nil")
	}
}

// TestClientClose tests client close behavior.
func TestClientClose(t *testing.T) {
	client, err := NewClient("localhost:2575")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() second call error = %v", err)
	}
}

// TestClientSendNilMessage tests sending nil message.
func TestClientSendNilMessage(t *testing.T) {
	client, err := NewClient("localhost:2575")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer func() { _ = client.Close() }()

	_, err = client.Send(context.Background(), nil)
	if err == nil {
		t.Error("Send(nil) expected error, got nil")
	}
}

// TestClientSendAsyncNilMessage tests sending nil message async.
func TestClientSendAsyncNilMessage(t *testing.T) {
	client, err := NewClient("localhost:2575")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer func() { _ = client.Close() }()

	err = client.SendAsync(context.Background(), nil)
	if err == nil {
		t.Error("SendAsync(nil) expected error, got nil")
	}
}

// TestOptionValidation tests option validation.
func TestOptionValidation(t *testing.T) {
	config := defaultClientConfig()
	WithTimeout(-1 * time.Second)(&config)
	if config.timeout != DefaultTimeout {
		t.Errorf("WithTimeout(-1) changed timeout to %v", config.timeout)
	}

	config = defaultClientConfig()
	WithRetry(-1, time.Second)(&config)
	if config.retryAttempts != DefaultRetryAttempts {
		t.Errorf("WithRetry(-1) changed retryAttempts to %v", config.retryAttempts)
	}

	config = defaultClientConfig()
	WithRetry(3, -1*time.Second)(&config)
	if config.retryBackoff != DefaultRetryBackoff {
		t.Errorf("WithRetry with negative backoff changed retryBackoff to %v", config.retryBackoff)
	}
}

// TestWithTLS tests the TLS configuration option.
func TestWithTLS(t *testing.T) {
	config := defaultClientConfig()
	WithTLS(nil)(&config)
	if config.tlsConfig != nil {
		t.Error("WithTLS(nil) should set tlsConfig to nil")
	}
}

// TestReadMessageDeadline exercises the per-call deadline wrapper used by
// the inbound channel's accept loop.
func TestReadMessageDeadline(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go func() {
		_, _ = client.Write(Frame([]byte("MSH|^~\\&|TEST")))
	}()

	data, err := ReadMessageDeadline(server, time.Second)
	if err != nil {
		t.Fatalf("ReadMessageDeadline() error = %v", err)
	}
	if string(data) != "MSH|^~\\&|TEST" {
		t.Errorf("ReadMessageDeadline() = %q", data)
	}
}
