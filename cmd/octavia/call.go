package main

import (
	"context"
	"encoding/json"
	"fmt"

	domainerrors "github.com/octavia-db/octavia-go/errors"
	"github.com/octavia-db/octavia-go/octavia"
)

// Call is one command line invocation mapped onto a facade method.
type Call struct {
	Collection string
	Encrypt    bool
	Method     octavia.Method
	// Args are JSON documents in the order the method takes them: query or
	// data first, then newData for updates, then an optional schema whose
	// values are validator names.
	Args []string
}

// Execute runs the call against db. Errors describe invalid arguments; the
// outcome of the call itself is always in the result.
func (c *Call) Execute(ctx context.Context, db *octavia.Database) (*octavia.Result, error) {
	if c.Collection == "" {
		return c.executeDatabase(ctx, db)
	}
	return c.executeCollection(ctx, db.Collection(c.Collection, octavia.Encrypt(c.Encrypt)))
}

func (c *Call) executeDatabase(ctx context.Context, db *octavia.Database) (*octavia.Result, error) {
	switch c.Method {
	case octavia.MethodInfo:
		if err := c.expectArgs(0, 0); err != nil {
			return nil, err
		}
		return db.Info(ctx), nil
	case octavia.MethodDelete:
		if err := c.expectArgs(0, 0); err != nil {
			return nil, err
		}
		return db.Delete(ctx), nil
	case octavia.MethodCollectionExists:
		if err := c.expectArgs(1, 1); err != nil {
			return nil, err
		}
		return db.CollectionExists(ctx, c.Args[0]), nil
	default:
		return nil, domainerrors.NewValidationError("method requires -collection", string(c.Method))
	}
}

func (c *Call) executeCollection(ctx context.Context, coll *octavia.Collection) (*octavia.Result, error) {
	switch c.Method {
	case octavia.MethodInfo, octavia.MethodDelete:
		if err := c.expectArgs(0, 0); err != nil {
			return nil, err
		}
		if c.Method == octavia.MethodInfo {
			return coll.Info(ctx), nil
		}
		return coll.Delete(ctx), nil

	case octavia.MethodInsert, octavia.MethodInsertMany:
		if err := c.expectArgs(1, 2); err != nil {
			return nil, err
		}
		data, err := c.document(0)
		if err != nil {
			return nil, err
		}
		schema, err := c.schema(1)
		if err != nil {
			return nil, err
		}
		if c.Method == octavia.MethodInsert {
			return coll.Insert(ctx, data, schema), nil
		}
		return coll.InsertMany(ctx, data, schema), nil

	case octavia.MethodFind, octavia.MethodFindMany, octavia.MethodRemove, octavia.MethodRemoveMany:
		if err := c.expectArgs(0, 1); err != nil {
			return nil, err
		}
		query, err := c.query(0)
		if err != nil {
			return nil, err
		}
		switch c.Method {
		case octavia.MethodFind:
			return coll.Find(ctx, query), nil
		case octavia.MethodFindMany:
			return coll.FindMany(ctx, query), nil
		case octavia.MethodRemove:
			return coll.Remove(ctx, query), nil
		default:
			return coll.RemoveMany(ctx, query), nil
		}

	case octavia.MethodUpdate, octavia.MethodUpdateMany:
		if err := c.expectArgs(2, 3); err != nil {
			return nil, err
		}
		query, err := c.query(0)
		if err != nil {
			return nil, err
		}
		newData, err := c.document(1)
		if err != nil {
			return nil, err
		}
		schema, err := c.schema(2)
		if err != nil {
			return nil, err
		}
		if c.Method == octavia.MethodUpdate {
			return coll.Update(ctx, query, newData, schema), nil
		}
		return coll.UpdateMany(ctx, query, newData, schema), nil

	default:
		return nil, domainerrors.NewValidationError("method is database-level; drop -collection", string(c.Method))
	}
}

func (c *Call) expectArgs(lo, hi int) error {
	if n := len(c.Args); n < lo || n > hi {
		return domainerrors.NewValidationError(
			"wrong number of arguments",
			fmt.Sprintf("%s takes %d to %d, got %d", c.Method, lo, hi, n),
		)
	}
	return nil
}

func (c *Call) document(i int) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(c.Args[i]), &v); err != nil {
		return nil, domainerrors.NewValidationError("argument is not valid JSON", fmt.Sprintf("argument %d: %v", i+1, err))
	}
	return v, nil
}

// query parses argument i, defaulting to an empty query.
func (c *Call) query(i int) (any, error) {
	if i >= len(c.Args) {
		return map[string]any{}, nil
	}
	return c.document(i)
}

// schema parses argument i as a schema, or returns nil when absent.
func (c *Call) schema(i int) (octavia.Schema, error) {
	if i >= len(c.Args) {
		return nil, nil
	}
	var s octavia.Schema
	if err := json.Unmarshal([]byte(c.Args[i]), &s); err != nil {
		return nil, domainerrors.NewValidationError("schema is not a JSON object", fmt.Sprintf("argument %d: %v", i+1, err))
	}
	return s, nil
}
