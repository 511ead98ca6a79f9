// Package octaviatest provides an in-process Octavia endpoint for tests.
//
// The server does not implement database semantics. It records every
// envelope it receives and answers with whatever the installed Responder
// returns.
package octaviatest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"

	"github.com/octavia-db/octavia-go/octavia"
)

// Request is one call received by the server.
type Request struct {
	Envelope octavia.Envelope
	Header   http.Header
	Body     []byte
}

// Responder produces the status and body for a call. A body of type
// RawBody is written verbatim; anything else is encoded as JSON.
type Responder func(req *Request) (status int, body any)

// RawBody is a reply body written without JSON encoding.
type RawBody []byte

// Server is a recording Octavia endpoint.
type Server struct {
	URL  string
	Path string

	srv       *httptest.Server
	mu        sync.Mutex
	requests  []*Request
	responder Responder
}

// NewServer starts a server listening on octavia.DefaultPath that
// acknowledges every call with null data.
func NewServer() *Server {
	return NewServerWithPath(octavia.DefaultPath)
}

// NewServerWithPath starts a server listening on path.
func NewServerWithPath(path string) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		Path:      path,
		responder: OK(nil),
	}

	router := gin.New()
	router.POST(path, s.handle)

	s.srv = httptest.NewServer(router)
	s.URL = s.srv.URL
	return s
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// Client returns an HTTP client configured for the server.
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

// Options returns connection options pointing at the server.
func (s *Server) Options(database, password string) octavia.Options {
	return octavia.Options{
		URI:      s.URL,
		Path:     s.Path,
		Database: database,
		Password: password,
	}
}

// Respond installs r for subsequent calls.
func (s *Server) Respond(r Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responder = r
}

// Requests returns the calls received so far.
func (s *Server) Requests() []*Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent call, or nil.
func (s *Server) LastRequest() *Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

func (s *Server) handle(c *gin.Context) {
	var reader io.Reader = c.Request.Body
	if c.GetHeader("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ack": false, "code": "BAD_ENCODING", "msg": err.Error()})
			return
		}
		defer zr.Close()
		reader = zr
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ack": false, "code": "BAD_BODY", "msg": err.Error()})
		return
	}

	var envelope octavia.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ack": false, "code": "BAD_ENVELOPE", "msg": err.Error()})
		return
	}

	req := &Request{
		Envelope: envelope,
		Header:   c.Request.Header.Clone(),
		Body:     body,
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	responder := s.responder
	s.mu.Unlock()

	status, reply := responder(req)
	if raw, ok := reply.(RawBody); ok {
		c.Data(status, "text/plain", raw)
		return
	}
	c.JSON(status, reply)
}

// OK acknowledges every call with data.
func OK(data any) Responder {
	return func(*Request) (int, any) {
		return http.StatusOK, gin.H{"ack": true, "data": data}
	}
}

// Fail answers every call with a 200 carrying an application failure.
func Fail(code, msg string) Responder {
	return func(*Request) (int, any) {
		return http.StatusOK, gin.H{"ack": false, "code": code, "msg": msg}
	}
}

// Status answers every call with status and body.
func Status(status int, body any) Responder {
	return func(*Request) (int, any) {
		return status, body
	}
}
