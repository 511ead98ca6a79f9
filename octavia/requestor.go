package octavia

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sender sends one call to the server and normalizes the outcome.
// Implementations never panic and never return a nil Result.
type Sender interface {
	Send(ctx context.Context, target Target, method Method, payload Payload) *Result
}

// Envelope is the body POSTed for every call.
type Envelope struct {
	Database string  `json:"database"`
	Password string  `json:"password"`
	Target   Target  `json:"target"`
	Method   Method  `json:"method"`
	Request  Payload `json:"request"`
}

// Requestor is the Sender that builds envelopes from a Config and posts
// them through a Transport. It holds no mutable state and is safe for
// concurrent use.
type Requestor struct {
	config    Config
	transport Transport
	logger    zerolog.Logger
}

// NewRequestor creates a Requestor. A nil transport uses an HTTPTransport
// with default settings.
func NewRequestor(config Config, transport Transport, logger zerolog.Logger) *Requestor {
	if transport == nil {
		transport = NewHTTPTransport(nil)
	}
	return &Requestor{
		config:    config.Clone(),
		transport: transport,
		logger:    logger,
	}
}

// Config returns a copy of the requestor's configuration.
func (r *Requestor) Config() Config {
	return r.config.Clone()
}

// Send builds the envelope for target and method, posts it and returns the
// normalized result.
func (r *Requestor) Send(ctx context.Context, target Target, method Method, payload Payload) *Result {
	headers := r.config.Headers()
	requestID := headers[HeaderRequestID]
	if requestID == "" {
		requestID = uuid.NewString()
		headers[HeaderRequestID] = requestID
	}

	logger := r.logger.With().
		Str("request_id", requestID).
		Str("database", r.config.database).
		Str("target", string(target)).
		Str("method", string(method)).
		Logger()

	request, err := normalizePayload(payload)
	if err != nil {
		logger.Warn().Err(err).Msg("octavia request not sent")
		return failureResult(ErrCodeEncode, err.Error(), nil)
	}

	envelope := &Envelope{
		Database: r.config.database,
		Password: r.config.password,
		Target:   target,
		Method:   method,
		Request:  request,
	}

	result := r.post(ctx, envelope, headers)
	if result.Ack {
		logger.Debug().Msg("octavia request completed")
	} else {
		logger.Warn().
			Str("code", result.Code).
			Str("msg", result.Msg).
			Msg("octavia request failed")
	}
	return result
}

func (r *Requestor) post(ctx context.Context, envelope *Envelope, headers map[string]string) (result *Result) {
	defer func() {
		if p := recover(); p != nil {
			result = failureResult(ErrCodeNetwork, fmt.Sprintf("transport panic: %v", p), nil)
		}
	}()

	resp, err := r.transport.Post(ctx, r.config.endpoint, envelope, headers)
	if err != nil {
		return transportFailure(err)
	}
	if resp == nil {
		return failureResult(ErrCodeBadResponse, "empty response", nil)
	}

	result = &Result{}
	if err := result.UnmarshalJSON(resp.Data); err != nil {
		return failureResult(ErrCodeBadResponse, err.Error(), nil)
	}
	return result
}

// transportFailure converts a transport error into a result, merging the
// server's error body when there is one.
func transportFailure(err error) *Result {
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		return failureResult(ErrCodeNetwork, err.Error(), nil)
	}

	var body []byte
	if tErr.Response != nil {
		body = tErr.Response.Data
	}
	return failureResult(tErr.Code, tErr.Message, body)
}
