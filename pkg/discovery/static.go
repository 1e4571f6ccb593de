package discovery

import (
	"fmt"
	"sync"
)

// StaticRegistry is a fixed address book. It stands in for Nacos when the
// split deployment runs without one, and in tests.
type StaticRegistry struct {
	mu        sync.RWMutex
	services  map[string][]string
	listeners map[string][]func([]string)
}

var _ Registry = (*StaticRegistry)(nil)

// NewStaticRegistry creates a registry seeded with serviceName -> addresses
func NewStaticRegistry(services map[string][]string) *StaticRegistry {
	r := &StaticRegistry{
		services:  make(map[string][]string, len(services)),
		listeners: make(map[string][]func([]string)),
	}
	for name, addrs := range services {
		r.services[name] = append([]string(nil), addrs...)
	}
	return r
}

func (r *StaticRegistry) RegisterService(serviceName, ip string, port uint64, _ map[string]string) error {
	addr := fmt.Sprintf("%s:%d", ip, port)
	r.mu.Lock()
	for _, a := range r.services[serviceName] {
		if a == addr {
			r.mu.Unlock()
			return nil
		}
	}
	r.services[serviceName] = append(r.services[serviceName], addr)
	r.mu.Unlock()
	r.notify(serviceName)
	return nil
}

func (r *StaticRegistry) DeregisterService(serviceName, ip string, port uint64) error {
	addr := fmt.Sprintf("%s:%d", ip, port)
	r.mu.Lock()
	addrs := r.services[serviceName][:0:0]
	for _, a := range r.services[serviceName] {
		if a != addr {
			addrs = append(addrs, a)
		}
	}
	r.services[serviceName] = addrs
	r.mu.Unlock()
	r.notify(serviceName)
	return nil
}

func (r *StaticRegistry) GetServices(serviceName string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	addrs, ok := r.services[serviceName]
	if !ok || len(addrs) == 0 {
		return nil, fmt.Errorf("no instances of %s", serviceName)
	}
	return append([]string(nil), addrs...), nil
}

func (r *StaticRegistry) Subscribe(serviceName string, callback func(services []string)) error {
	r.mu.Lock()
	r.listeners[serviceName] = append(r.listeners[serviceName], callback)
	r.mu.Unlock()
	return nil
}

func (r *StaticRegistry) notify(serviceName string) {
	r.mu.RLock()
	addrs := append([]string(nil), r.services[serviceName]...)
	listeners := append([]func([]string){}, r.listeners[serviceName]...)
	r.mu.RUnlock()
	for _, cb := range listeners {
		cb(addrs)
	}
}

func (r *StaticRegistry) Close() error { return nil }
