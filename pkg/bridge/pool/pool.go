// Copyright 2026 © The VAP Agent Authors
// SPDX-License-Identifier: Apache-2.0

// Package pool shares bridge connections across consumers.
//
// When several agents (or several tool loops of one runtime) use the same
// proxy process, launching a child per consumer wastes processes and API
// quota. The pool keys connections by provider name, hands out shared
// clients with reference counting, and closes connections that fail health
// checks while unused.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vapagentmedia/vap-agent/pkg/bridge"
)

var (
	// ErrPoolClosed is returned when operations are attempted on a closed pool.
	ErrPoolClosed = errors.New("bridge pool is closed")

	// ErrProviderNotFound is returned when requesting an unregistered provider.
	ErrProviderNotFound = errors.New("tool provider not found in pool")

	// ErrMaxConnectionsReached is returned when the pool cannot create more connections.
	ErrMaxConnectionsReached = errors.New("maximum connections reached for provider")

	// ErrInvalidDescriptor is returned when a registered descriptor fails validation.
	ErrInvalidDescriptor = errors.New("invalid connection descriptor")
)

// provider pairs a descriptor with the client options applied on dial.
type provider struct {
	name string
	desc bridge.ConnectionDescriptor
	opts []bridge.ClientOption
}

// pooledClient wraps a bridge client with reference counting.
type pooledClient struct {
	client   *bridge.Client
	refCount int32
	provider string
	created  time.Time
}

// Pool manages shared bridge connections.
type Pool struct {
	mu        sync.RWMutex
	providers map[string]*provider
	clients   map[string][]*pooledClient
	closed    atomic.Bool

	maxPerProvider      int
	healthCheckInterval time.Duration
	idleTimeout         time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	totalConnections   atomic.Int64
	activeConnections  atomic.Int64
	connectionErrors   atomic.Int64
	healthChecksPassed atomic.Int64
	healthChecksFailed atomic.Int64
}

// Option configures the connection pool.
type Option func(*Pool)

// WithMaxConnectionsPerProvider sets the default maximum connections per provider.
func WithMaxConnectionsPerProvider(max int) Option {
	return func(p *Pool) {
		if max > 0 {
			p.maxPerProvider = max
		}
	}
}

// WithHealthCheckInterval sets how often to check connection health.
func WithHealthCheckInterval(interval time.Duration) Option {
	return func(p *Pool) {
		if interval > 0 {
			p.healthCheckInterval = interval
		}
	}
}

// WithIdleTimeout sets how long idle connections are kept before cleanup.
func WithIdleTimeout(timeout time.Duration) Option {
	return func(p *Pool) {
		if timeout > 0 {
			p.idleTimeout = timeout
		}
	}
}

// New creates a new bridge connection pool.
func New(opts ...Option) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		providers:           make(map[string]*provider),
		clients:             make(map[string][]*pooledClient),
		maxPerProvider:      10,
		healthCheckInterval: 30 * time.Second,
		idleTimeout:         5 * time.Minute,
		ctx:                 ctx,
		cancel:              cancel,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(1)
	go p.healthChecker()

	return p
}

// Register adds a tool provider under a logical name. The descriptor is
// validated here so a malformed registration fails fast.
func (p *Pool) Register(name string, desc bridge.ConnectionDescriptor, opts ...bridge.ClientOption) error {
	if name == "" {
		return ErrInvalidDescriptor
	}
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return ErrPoolClosed
	}

	p.providers[name] = &provider{
		name: name,
		desc: desc.Clone(),
		opts: opts,
	}

	return nil
}

// Unregister removes a provider from the pool and closes all its connections.
func (p *Pool) Unregister(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return ErrPoolClosed
	}

	delete(p.providers, name)

	if clients, ok := p.clients[name]; ok {
		for _, pc := range clients {
			_ = pc.client.Close()
			p.activeConnections.Add(-1)
		}
		delete(p.clients, name)
	}

	return nil
}

// Get retrieves a client connection for the named provider, dialing a new
// child process only when no shared connection exists.
func (p *Pool) Get(ctx context.Context, name string) (*bridge.Client, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	p.mu.Lock()
	prov, ok := p.providers[name]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}

	clients := p.clients[name]
	for _, pc := range clients {
		atomic.AddInt32(&pc.refCount, 1)
		p.mu.Unlock()
		return pc.client, nil
	}

	if len(clients) >= p.maxPerProvider {
		p.mu.Unlock()
		return nil, ErrMaxConnectionsReached
	}
	p.mu.Unlock()

	// Dial outside the lock: spawning the child can be slow.
	client, err := bridge.Dial(ctx, prov.desc, prov.opts...)
	if err != nil {
		p.connectionErrors.Add(1)
		return nil, err
	}

	pc := &pooledClient{
		client:   client,
		refCount: 1,
		provider: name,
		created:  time.Now(),
	}

	p.mu.Lock()
	p.clients[name] = append(p.clients[name], pc)
	p.mu.Unlock()

	p.totalConnections.Add(1)
	p.activeConnections.Add(1)

	return client, nil
}

// Release decrements the reference count for a connection.
// The connection is not immediately closed and may be reused.
func (p *Pool) Release(name string, client *bridge.Client) {
	p.mu.RLock()
	clients := p.clients[name]
	p.mu.RUnlock()

	for _, pc := range clients {
		if pc.client == client {
			atomic.AddInt32(&pc.refCount, -1)
			return
		}
	}
}

// Close shuts down the pool and all connections.
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrPoolClosed
	}

	p.cancel()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for name, clients := range p.clients {
		for _, pc := range clients {
			if err := pc.client.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
			}
		}
	}

	p.clients = nil
	p.providers = nil

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Stats contains pool counters.
type Stats struct {
	RegisteredProviders int
	ActiveConnections   int
	TotalConnections    int
	ConnectionErrors    int
	HealthChecksPassed  int
	HealthChecksFailed  int
}

// Stats returns current pool statistics.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	providerCount := len(p.providers)
	p.mu.RUnlock()

	return Stats{
		RegisteredProviders: providerCount,
		ActiveConnections:   int(p.activeConnections.Load()),
		TotalConnections:    int(p.totalConnections.Load()),
		ConnectionErrors:    int(p.connectionErrors.Load()),
		HealthChecksPassed:  int(p.healthChecksPassed.Load()),
		HealthChecksFailed:  int(p.healthChecksFailed.Load()),
	}
}

// ListProviders returns the names of all registered providers.
func (p *Pool) ListProviders() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.providers))
	for name := range p.providers {
		names = append(names, name)
	}
	return names
}

// Descriptor returns the registered descriptor for a provider.
func (p *Pool) Descriptor(name string) (bridge.ConnectionDescriptor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	prov, ok := p.providers[name]
	if !ok {
		return bridge.ConnectionDescriptor{}, false
	}
	return prov.desc.Clone(), true
}

func (p *Pool) healthChecker() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.runHealthChecks()
		}
	}
}

func (p *Pool) runHealthChecks() {
	p.mu.RLock()
	toCheck := make([]*pooledClient, 0)
	for _, clients := range p.clients {
		toCheck = append(toCheck, clients...)
	}
	p.mu.RUnlock()

	for _, pc := range toCheck {
		// Listing tools doubles as the health check.
		ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
		_, err := pc.client.ListTools(ctx)
		cancel()

		if err != nil {
			p.healthChecksFailed.Add(1)
			if atomic.LoadInt32(&pc.refCount) == 0 {
				p.removeClient(pc)
			}
		} else {
			p.healthChecksPassed.Add(1)
		}
	}

	p.cleanupIdle()
}

func (p *Pool) removeClient(pc *pooledClient) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clients := p.clients[pc.provider]
	for i, c := range clients {
		if c == pc {
			_ = c.client.Close()
			p.clients[pc.provider] = append(clients[:i], clients[i+1:]...)
			p.activeConnections.Add(-1)
			return
		}
	}
}

func (p *Pool) cleanupIdle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	for name, clients := range p.clients {
		remaining := clients[:0]
		for _, pc := range clients {
			// Keep if: has refs, or not idle long enough, or is the only connection
			isIdle := atomic.LoadInt32(&pc.refCount) == 0 && now.Sub(pc.created) > p.idleTimeout
			if !isIdle || len(clients) == 1 {
				remaining = append(remaining, pc)
			} else {
				_ = pc.client.Close()
				p.activeConnections.Add(-1)
			}
		}
		p.clients[name] = remaining
	}
}
