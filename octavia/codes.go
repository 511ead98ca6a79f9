// Package octavia is a client for the Octavia document database service.
//
// Every operation is sent as a single JSON envelope POSTed to one endpoint.
// The envelope names what is addressed (a Target) and what to do with it
// (a Method); the server answers with {ack, data} or {ack: false, code, msg}.
package octavia

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	domainerrors "github.com/octavia-db/octavia-go/errors"
)

// Target identifies the kind of resource an operation addresses.
type Target string

const (
	TargetDatabase   Target = "TAR_DATABASE"
	TargetCollection Target = "TAR_COLLECTION"
)

// Valid reports whether t is a known target code.
func (t Target) Valid() bool {
	return t == TargetDatabase || t == TargetCollection
}

// Method identifies the operation applied to a target.
type Method string

const (
	MethodInfo             Method = "MET_INFO"
	MethodDelete           Method = "MET_DELETE"
	MethodCollectionExists Method = "MET_COLLECTION_EXISTS"

	MethodInsert     Method = "MET_INSERT"
	MethodInsertMany Method = "MET_INSERT_MANY"
	MethodFind       Method = "MET_FIND"
	MethodFindMany   Method = "MET_FIND_MANY"
	MethodUpdate     Method = "MET_UPDATE"
	MethodUpdateMany Method = "MET_UPDATE_MANY"
	MethodRemove     Method = "MET_REMOVE"
	MethodRemoveMany Method = "MET_REMOVE_MANY"
)

const methodPrefix = "MET_"

var methods = []Method{
	MethodInfo,
	MethodDelete,
	MethodCollectionExists,
	MethodInsert,
	MethodInsertMany,
	MethodFind,
	MethodFindMany,
	MethodUpdate,
	MethodUpdateMany,
	MethodRemove,
	MethodRemoveMany,
}

// Methods returns every method code.
func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// Valid reports whether m is a known method code.
func (m Method) Valid() bool {
	for _, known := range methods {
		if m == known {
			return true
		}
	}
	return false
}

// IsWrite reports whether m changes server state.
func (m Method) IsWrite() bool {
	switch m {
	case MethodInfo, MethodFind, MethodFindMany, MethodCollectionExists:
		return false
	}
	return true
}

// ParseMethod resolves a method from its code or from a human spelling such
// as "insertMany", "insert-many" or "INSERT_MANY".
func ParseMethod(name string) (Method, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", domainerrors.NewValidationError("method name is required", "")
	}

	code := strcase.ToScreamingSnake(trimmed)
	if !strings.HasPrefix(code, methodPrefix) {
		code = methodPrefix + code
	}

	m := Method(code)
	if !m.Valid() {
		return "", domainerrors.NewValidationError("unknown method", fmt.Sprintf("%q", name))
	}
	return m, nil
}
