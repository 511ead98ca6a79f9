package octavia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Transport error codes.
const (
	ErrCodeBadRequest  = "ERR_BAD_REQUEST"
	ErrCodeBadResponse = "ERR_BAD_RESPONSE"
	ErrCodeNetwork     = "ERR_NETWORK"
	ErrCodeCanceled    = "ERR_CANCELED"
	ErrCodeEncode      = "ERR_ENCODE"
	ErrCodeTimeout     = "ETIMEDOUT"
	ErrCodeNotFound    = "ENOTFOUND"
	ErrCodeConnRefused = "ECONNREFUSED"
	ErrCodeConnReset   = "ECONNRESET"
)

const defaultMaxResponseBytes = 32 << 20

// Transport posts a JSON body and returns the parsed reply.
//
// Implementations return a *TransportError when the request cannot complete
// or the server answers with a non-success status.
type Transport interface {
	Post(ctx context.Context, uri string, body any, headers map[string]string) (*TransportResponse, error)
}

// TransportResponse is a reply from the server.
type TransportResponse struct {
	Status int
	// Data is the JSON body, or nil when the body was empty or not JSON.
	Data json.RawMessage
}

// TransportError describes a request that failed in the network, in the
// HTTP layer or while reading the reply.
type TransportError struct {
	Code    string
	Message string
	// Response is set when the server replied; its Data may still be nil.
	Response *TransportResponse
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPTransportConfig holds the configuration for the HTTP transport.
type HTTPTransportConfig struct {
	HTTPClient *http.Client
	// Compress gzips request bodies and sets Content-Encoding.
	Compress bool
	// MaxResponseBytes caps how much of a reply is read. Defaults to 32 MiB.
	MaxResponseBytes int64
}

// HTTPTransport implements Transport on net/http.
type HTTPTransport struct {
	httpClient       *http.Client
	compress         bool
	maxResponseBytes int64
}

// NewHTTPTransport creates a new HTTP transport. A nil config yields the defaults.
func NewHTTPTransport(config *HTTPTransportConfig) *HTTPTransport {
	if config == nil {
		config = &HTTPTransportConfig{}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	maxBytes := config.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxResponseBytes
	}

	return &HTTPTransport{
		httpClient:       httpClient,
		compress:         config.Compress,
		maxResponseBytes: maxBytes,
	}
}

// Post sends body as JSON to uri. Headers with empty values are not sent.
func (t *HTTPTransport) Post(ctx context.Context, uri string, body any, headers map[string]string) (*TransportResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &TransportError{Code: ErrCodeEncode, Message: fmt.Sprintf("failed to marshal request: %v", err), Err: err}
	}

	if t.compress {
		payload, err = gzipBytes(payload)
		if err != nil {
			return nil, &TransportError{Code: ErrCodeEncode, Message: fmt.Sprintf("failed to compress request: %v", err), Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Code: ErrCodeBadRequest, Message: fmt.Sprintf("failed to create request: %v", err), Err: err}
	}

	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	req.Header.Set("Accept", contentTypeJSON)
	if t.compress {
		req.Header.Set("Content-Encoding", "gzip")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Code: classifyNetworkError(err), Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, t.maxResponseBytes+1))
	if err != nil {
		return nil, &TransportError{Code: classifyNetworkError(err), Message: fmt.Sprintf("failed to read response: %v", err), Err: err}
	}
	if int64(len(raw)) > t.maxResponseBytes {
		return nil, &TransportError{
			Code:     ErrCodeBadResponse,
			Message:  fmt.Sprintf("response exceeds %d bytes", t.maxResponseBytes),
			Response: &TransportResponse{Status: resp.StatusCode},
		}
	}

	result := &TransportResponse{Status: resp.StatusCode}
	if len(bytes.TrimSpace(raw)) > 0 && json.Valid(raw) {
		result.Data = raw
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := ErrCodeBadResponse
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			code = ErrCodeBadRequest
		}
		return nil, &TransportError{
			Code:     code,
			Message:  fmt.Sprintf("Request failed with status code %d", resp.StatusCode),
			Response: result,
		}
	}

	if result.Data == nil {
		return nil, &TransportError{
			Code:     ErrCodeBadResponse,
			Message:  "response body is not valid JSON",
			Response: result,
		}
	}

	return result, nil
}

// classifyNetworkError maps a client error onto a stable code.
func classifyNetworkError(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error

	switch {
	case errors.Is(err, context.Canceled):
		return ErrCodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	case errors.As(err, &dnsErr):
		return ErrCodeNotFound
	case errors.Is(err, syscall.ECONNREFUSED):
		return ErrCodeConnRefused
	case errors.Is(err, syscall.ECONNRESET):
		return ErrCodeConnReset
	case errors.As(err, &netErr) && netErr.Timeout():
		return ErrCodeTimeout
	default:
		return ErrCodeNetwork
	}
}

func gzipBytes(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
