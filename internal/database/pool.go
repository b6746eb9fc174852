// Package database holds the process-wide MongoDB connection handle.
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"golang.org/x/sync/singleflight"
)

// Pool lazily connects a single MongoDB client and hands it to every caller.
// Concurrent first calls share one connection attempt; a failed attempt is
// not remembered, so the next call dials again.
type Pool struct {
	uri     string
	name    string
	timeout time.Duration

	group singleflight.Group

	mu     sync.RWMutex
	client *mongo.Client
}

// NewPool returns an unconnected pool for the database name at uri.
func NewPool(uri, name string, timeout time.Duration) *Pool {
	return &Pool{uri: uri, name: name, timeout: timeout}
}

// Client returns the shared client, connecting on first use. The connection
// attempt runs under the pool's own timeout, so a caller whose ctx ends only
// stops waiting and the other callers sharing the attempt are unaffected.
func (p *Pool) Client(ctx context.Context) (*mongo.Client, error) {
	p.mu.RLock()
	client := p.client
	p.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	ch := p.group.DoChan("connect", func() (any, error) {
		p.mu.RLock()
		existing := p.client
		p.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		connectCtx, cancel := p.connectContext()
		defer cancel()
		c, err := p.connect(connectCtx)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.client = c
		p.mu.Unlock()
		return c, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*mongo.Client), nil
	}
}

func (p *Pool) connectContext() (context.Context, context.CancelFunc) {
	if p.timeout > 0 {
		return context.WithTimeout(context.Background(), p.timeout)
	}
	return context.WithCancel(context.Background())
}

func (p *Pool) connect(ctx context.Context) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(p.uri)
	if p.timeout > 0 {
		opts.SetConnectTimeout(p.timeout).SetServerSelectionTimeout(p.timeout)
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// Database returns the configured database, connecting on first use.
func (p *Pool) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := p.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(p.name), nil
}

// Ping verifies the deployment is reachable, connecting if needed.
func (p *Pool) Ping(ctx context.Context) error {
	client, err := p.Client(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client if one was connected.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	client := p.client
	p.client = nil
	p.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
