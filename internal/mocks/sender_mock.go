// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/octavia-db/octavia-go/octavia"
)

// MockSender is a mock implementation of octavia.Sender.
type MockSender struct {
	mock.Mock
}

// Send mocks the Send method.
func (m *MockSender) Send(ctx context.Context, target octavia.Target, method octavia.Method, payload octavia.Payload) *octavia.Result {
	args := m.Called(ctx, target, method, payload)
	return args.Get(0).(*octavia.Result)
}

// MockTransport is a mock implementation of octavia.Transport.
type MockTransport struct {
	mock.Mock
}

// Post mocks the Post method.
func (m *MockTransport) Post(ctx context.Context, uri string, body any, headers map[string]string) (*octavia.TransportResponse, error) {
	args := m.Called(ctx, uri, body, headers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*octavia.TransportResponse), args.Error(1)
}

// Ensure the mocks implement their interfaces.
var (
	_ octavia.Sender    = (*MockSender)(nil)
	_ octavia.Transport = (*MockTransport)(nil)
)
