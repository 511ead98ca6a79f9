package octavia

import "context"

// CollectionOption configures a Collection.
type CollectionOption func(*Collection)

// Encrypt sets whether the server encrypts the collection's documents.
func Encrypt(enabled bool) CollectionOption {
	return func(c *Collection) {
		c.encrypt = enabled
	}
}

// Collection issues calls against one collection. It holds no connection
// and is safe for concurrent use.
type Collection struct {
	name    string
	encrypt bool
	config  Config
	sender  Sender
}

func newCollection(name string, config Config, o clientOptions, options ...CollectionOption) *Collection {
	c := &Collection{
		name:    name,
		encrypt: true,
		config:  config,
	}
	for _, apply := range options {
		apply(c)
	}
	c.sender = newSender(config, o)
	return c
}

// NewCollection creates a Collection that sends through sender.
func NewCollection(name string, sender Sender, options ...CollectionOption) *Collection {
	c := &Collection{
		name:    name,
		encrypt: true,
		sender:  sender,
	}
	for _, apply := range options {
		apply(c)
	}
	return c
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Encrypted reports whether calls ask the server to encrypt documents.
func (c *Collection) Encrypted() bool {
	return c.encrypt
}

// Config returns a copy of the collection's connection configuration.
func (c *Collection) Config() Config {
	return c.config.Clone()
}

func (c *Collection) payload() Payload {
	return Payload{
		FieldCollectionName: c.name,
		FieldEncrypt:        c.encrypt,
	}
}

func (c *Collection) send(ctx context.Context, method Method, p Payload) *Result {
	return c.sender.Send(ctx, TargetCollection, method, p)
}

// Insert inserts one document validated against schema.
func (c *Collection) Insert(ctx context.Context, document any, schema Schema) *Result {
	p := c.payload()
	p[FieldData] = document
	p[FieldDataScheme] = EncodeSchema(schema)
	return c.send(ctx, MethodInsert, p)
}

// InsertMany inserts several documents validated against schema.
func (c *Collection) InsertMany(ctx context.Context, documents any, schema Schema) *Result {
	p := c.payload()
	p[FieldData] = documents
	p[FieldDataScheme] = EncodeSchema(schema)
	return c.send(ctx, MethodInsertMany, p)
}

// Find returns the first document matching query.
func (c *Collection) Find(ctx context.Context, query any) *Result {
	p := c.payload()
	p[FieldData] = query
	return c.send(ctx, MethodFind, p)
}

// FindMany returns every document matching query.
func (c *Collection) FindMany(ctx context.Context, query any) *Result {
	p := c.payload()
	p[FieldData] = query
	return c.send(ctx, MethodFindMany, p)
}

// Update applies newData to the first document matching query.
func (c *Collection) Update(ctx context.Context, query, newData any, schema Schema) *Result {
	p := c.payload()
	p[FieldData] = query
	p[FieldNewData] = newData
	p[FieldDataScheme] = EncodeSchema(schema)
	return c.send(ctx, MethodUpdate, p)
}

// UpdateMany applies newData to every document matching query.
func (c *Collection) UpdateMany(ctx context.Context, query, newData any, schema Schema) *Result {
	p := c.payload()
	p[FieldData] = query
	p[FieldNewData] = newData
	p[FieldDataScheme] = EncodeSchema(schema)
	return c.send(ctx, MethodUpdateMany, p)
}

// Remove removes the first document matching query.
func (c *Collection) Remove(ctx context.Context, query any) *Result {
	p := c.payload()
	p[FieldData] = query
	return c.send(ctx, MethodRemove, p)
}

// RemoveMany removes every document matching query.
func (c *Collection) RemoveMany(ctx context.Context, query any) *Result {
	p := c.payload()
	p[FieldData] = query
	return c.send(ctx, MethodRemoveMany, p)
}

// Info returns information about the collection.
func (c *Collection) Info(ctx context.Context) *Result {
	return c.send(ctx, MethodInfo, c.payload())
}

// Delete deletes the collection.
func (c *Collection) Delete(ctx context.Context) *Result {
	return c.send(ctx, MethodDelete, c.payload())
}
