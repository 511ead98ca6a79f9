package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/octavia-db/octavia-go/errors"
	"github.com/octavia-db/octavia-go/octavia"
	"github.com/octavia-db/octavia-go/octaviatest"
)

func newCallServer(t *testing.T) (*octaviatest.Server, *octavia.Database) {
	t.Helper()
	srv := octaviatest.NewServer()
	t.Cleanup(srv.Close)

	db, err := octavia.NewDatabase(srv.Options("ssd", "pw"), octavia.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return srv, db
}

func TestCall_Execute(t *testing.T) {
	tests := []struct {
		name       string
		call       Call
		wantTarget octavia.Target
		wantReq    string
	}{
		{
			name:       "database info",
			call:       Call{Method: octavia.MethodInfo},
			wantTarget: octavia.TargetDatabase,
			wantReq:    `{}`,
		},
		{
			name:       "collection exists",
			call:       Call{Method: octavia.MethodCollectionExists, Args: []string{"users"}},
			wantTarget: octavia.TargetDatabase,
			wantReq:    `{"collectionName":"users"}`,
		},
		{
			name:       "insert with schema",
			call:       Call{Collection: "users", Encrypt: true, Method: octavia.MethodInsert, Args: []string{`{"name":"Ada"}`, `{"name":"String"}`}},
			wantTarget: octavia.TargetCollection,
			wantReq:    `{"collectionName":"users","encrypt":true,"data":{"name":"Ada"},"dataScheme":{"name":"String"}}`,
		},
		{
			name:       "insert many without schema",
			call:       Call{Collection: "users", Method: octavia.MethodInsertMany, Args: []string{`[{"n":1},{"n":2}]`}},
			wantTarget: octavia.TargetCollection,
			wantReq:    `{"collectionName":"users","encrypt":false,"data":[{"n":1},{"n":2}],"dataScheme":{}}`,
		},
		{
			name:       "find many defaults query",
			call:       Call{Collection: "users", Encrypt: true, Method: octavia.MethodFindMany},
			wantTarget: octavia.TargetCollection,
			wantReq:    `{"collectionName":"users","encrypt":true,"data":{}}`,
		},
		{
			name:       "update",
			call:       Call{Collection: "users", Encrypt: true, Method: octavia.MethodUpdate, Args: []string{`{"n":1}`, `{"n":2}`}},
			wantTarget: octavia.TargetCollection,
			wantReq:    `{"collectionName":"users","encrypt":true,"data":{"n":1},"newData":{"n":2},"dataScheme":{}}`,
		},
		{
			name:       "remove many",
			call:       Call{Collection: "users", Encrypt: true, Method: octavia.MethodRemoveMany, Args: []string{`{"n":1}`}},
			wantTarget: octavia.TargetCollection,
			wantReq:    `{"collectionName":"users","encrypt":true,"data":{"n":1}}`,
		},
		{
			name:       "collection delete",
			call:       Call{Collection: "users", Encrypt: true, Method: octavia.MethodDelete},
			wantTarget: octavia.TargetCollection,
			wantReq:    `{"collectionName":"users","encrypt":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, db := newCallServer(t)

			res, err := tt.call.Execute(context.Background(), db)
			require.NoError(t, err)
			assert.True(t, res.Ack)

			req := srv.LastRequest()
			require.NotNil(t, req)
			assert.Equal(t, tt.wantTarget, req.Envelope.Target)
			assert.Equal(t, tt.call.Method, req.Envelope.Method)

			got, err := json.Marshal(req.Envelope.Request)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantReq, string(got))
		})
	}
}

func TestCall_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		call Call
	}{
		{"info takes no arguments", Call{Method: octavia.MethodInfo, Args: []string{"x"}}},
		{"collection exists needs a name", Call{Method: octavia.MethodCollectionExists}},
		{"insert needs a collection", Call{Method: octavia.MethodInsert, Args: []string{`{}`}}},
		{"collection exists is database-level", Call{Collection: "users", Method: octavia.MethodCollectionExists, Args: []string{"x"}}},
		{"insert needs data", Call{Collection: "users", Method: octavia.MethodInsert}},
		{"document must be JSON", Call{Collection: "users", Method: octavia.MethodInsert, Args: []string{`{`}}},
		{"schema must be an object", Call{Collection: "users", Method: octavia.MethodInsert, Args: []string{`{}`, `[1]`}}},
		{"update needs new data", Call{Collection: "users", Method: octavia.MethodUpdate, Args: []string{`{}`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, db := newCallServer(t)

			res, err := tt.call.Execute(context.Background(), db)

			assert.Nil(t, res)
			require.Error(t, err)
			assert.True(t, domainerrors.IsValidationError(err))
			assert.Empty(t, srv.Requests())
		})
	}
}

func TestRun(t *testing.T) {
	srv := octaviatest.NewServer()
	defer srv.Close()
	srv.Respond(octaviatest.OK(map[string]any{"exists": true}))

	chdir(t, t.TempDir())
	t.Setenv("OCTAVIA_URI", srv.URL)
	t.Setenv("OCTAVIA_PATH", srv.Path)
	t.Setenv("OCTAVIA_DATABASE", "ssd")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-collection", "users", "find", `{"name":"Ada"}`}, &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.JSONEq(t, `{"ack":true,"data":{"exists":true}}`, stdout.String())

	req := srv.LastRequest()
	require.NotNil(t, req)
	assert.Equal(t, octavia.MethodFind, req.Envelope.Method)
	assert.Equal(t, true, req.Envelope.Request["encrypt"])
}

func TestRun_Failures(t *testing.T) {
	srv := octaviatest.NewServer()
	defer srv.Close()
	srv.Respond(octaviatest.Fail("E1", "nope"))

	chdir(t, t.TempDir())
	t.Setenv("OCTAVIA_URI", srv.URL)
	t.Setenv("OCTAVIA_PATH", srv.Path)
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"info"}, &stdout, &stderr))
	assert.JSONEq(t, `{"ack":false,"code":"E1","msg":"nope"}`, stdout.String())

	stdout.Reset()
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"drop"}, &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"-bogus"}, &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"-collection", "users", "insert"}, &stdout, &stderr))
	assert.Empty(t, stdout.String())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
