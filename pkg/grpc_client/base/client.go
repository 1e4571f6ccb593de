// Package base provides the discovery-backed gRPC connection pool shared by the
// split deployment's clients.
package base

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/stuagano/wolf-goat-pig/pkg/discovery"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
)

const (
	defaultWorkers   = 8
	defaultQueueSize = 1024
	maxPushJitter    = 3 * time.Second
)

// BaseClient handles gRPC connections to discovered services
type BaseClient struct {
	Registry discovery.Registry
	dialOpts []grpc.DialOption

	// Connections cache (Key: "ip:port")
	conns   map[string]*grpc.ClientConn
	connsMu sync.RWMutex

	// Service address cache, kept fresh by registry pushes
	serviceAddrs map[string][]string
	addrsMu      sync.RWMutex
	requestGroup singleflight.Group

	subscribed  map[string]bool
	subscribeMu sync.Mutex

	// Worker pool for fan-out calls
	tasks  chan func()
	jitter func() time.Duration
}

// NewBaseClient creates a connection pool over registry. opts replace the
// default insecure transport credentials.
func NewBaseClient(registry discovery.Registry, opts ...grpc.DialOption) *BaseClient {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	c := &BaseClient{
		Registry:     registry,
		dialOpts:     opts,
		conns:        make(map[string]*grpc.ClientConn),
		serviceAddrs: make(map[string][]string),
		subscribed:   make(map[string]bool),
		tasks:        make(chan func(), defaultQueueSize),
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(maxPushJitter)))
		},
	}

	for i := 0; i < defaultWorkers; i++ {
		go c.startWorker()
	}
	return c
}

// GetServiceAddrs returns the healthy instance addresses of a service
func (c *BaseClient) GetServiceAddrs(serviceName string) ([]string, error) {
	c.addrsMu.RLock()
	addrs, ok := c.serviceAddrs[serviceName]
	c.addrsMu.RUnlock()
	if ok && len(addrs) > 0 {
		return addrs, nil
	}

	// Concurrent misses share one registry lookup
	val, err, _ := c.requestGroup.Do(serviceName, func() (interface{}, error) {
		c.addrsMu.RLock()
		cached, ok := c.serviceAddrs[serviceName]
		c.addrsMu.RUnlock()
		if ok && len(cached) > 0 {
			return cached, nil
		}

		c.ensureSubscribed(serviceName)

		fetched, err := c.Registry.GetServices(serviceName)
		if err != nil {
			return nil, err
		}

		c.addrsMu.Lock()
		c.serviceAddrs[serviceName] = fetched
		c.addrsMu.Unlock()
		return fetched, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover service %s: %w", serviceName, err)
	}
	return val.([]string), nil
}

// ensureSubscribed registers a listener for the service if not already registered
func (c *BaseClient) ensureSubscribed(serviceName string) {
	c.subscribeMu.Lock()
	defer c.subscribeMu.Unlock()

	if c.subscribed[serviceName] {
		return
	}

	err := c.Registry.Subscribe(serviceName, func(services []string) {
		// Spread the cache refresh when the registry pushes to many clients at once
		time.Sleep(c.jitter())

		c.addrsMu.Lock()
		c.serviceAddrs[serviceName] = services
		c.addrsMu.Unlock()

		logger.InfoGlobal().
			Str("service", serviceName).
			Int("instances", len(services)).
			Msg("service instances updated")
	})
	if err != nil {
		// Left unsubscribed so the next cache miss retries
		logger.ErrorGlobal().Str("service", serviceName).Err(err).Msg("failed to subscribe to service updates")
		return
	}
	c.subscribed[serviceName] = true
}

// GetConn picks a random healthy instance of serviceName and returns its connection
func (c *BaseClient) GetConn(serviceName string) (*grpc.ClientConn, error) {
	addrs, err := c.GetServiceAddrs(serviceName)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no instances found for service %s", serviceName)
	}
	return c.GetConnDirect(addrs[rand.Intn(len(addrs))])
}

// GetConnDirect gets or creates a persistent connection to a specific address
func (c *BaseClient) GetConnDirect(addr string) (*grpc.ClientConn, error) {
	c.connsMu.RLock()
	conn, ok := c.conns[addr]
	c.connsMu.RUnlock()
	if ok {
		return conn, nil
	}

	c.connsMu.Lock()
	defer c.connsMu.Unlock()

	if conn, ok := c.conns[addr]; ok {
		return conn, nil
	}

	conn, err := grpc.Dial(addr, c.dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial addr %s: %w", addr, err)
	}
	c.conns[addr] = conn
	logger.InfoGlobal().Str("addr", addr).Msg("established gRPC connection")
	return conn, nil
}

func (c *BaseClient) startWorker() {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorGlobal().Msgf("worker panic: %v", r)
			go c.startWorker()
		}
	}()

	for task := range c.tasks {
		task()
	}
}

// SubmitTask queues a fan-out call, spawning a goroutine when the pool is saturated
func (c *BaseClient) SubmitTask(task func()) {
	select {
	case c.tasks <- task:
	default:
		logger.WarnGlobal().Msg("worker pool full, spawning ephemeral goroutine")
		go task()
	}
}

// Close closes all connections
func (c *BaseClient) Close() error {
	c.connsMu.Lock()
	defer c.connsMu.Unlock()

	for addr, conn := range c.conns {
		conn.Close()
		delete(c.conns, addr)
	}
	return nil
}

// WithRequestID forwards the request id of ctx as outgoing metadata
func WithRequestID(ctx context.Context) context.Context {
	if reqID := logger.GetRequestID(ctx); reqID != "" {
		return metadata.AppendToOutgoingContext(ctx, "request_id", reqID)
	}
	return ctx
}
