// Package discovery finds game and gateway instances for the split deployment.
package discovery

import (
	"time"

	"github.com/stuagano/wolf-goat-pig/pkg/logger"
)

// Service names registered by the split deployment
const (
	GameService    = "wgp-game-service"
	GatewayService = "wgp-gateway-service"
)

// Registry defines the service discovery interface
type Registry interface {
	// RegisterService registers a service instance
	RegisterService(serviceName, ip string, port uint64, metadata map[string]string) error

	// DeregisterService deregisters a service instance
	DeregisterService(serviceName, ip string, port uint64) error

	// GetServices gets all healthy service instance addresses (host:port)
	GetServices(serviceName string) ([]string, error)

	// Subscribe subscribes to service changes
	Subscribe(serviceName string, callback func(services []string)) error

	// Close closes the registry client
	Close() error
}

// RegisterWithRetry registers an instance, retrying while the registry is
// still coming up. It returns the last error once attempts run out.
func RegisterWithRetry(r Registry, serviceName, ip string, port uint64, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = r.RegisterService(serviceName, ip, port, nil); err == nil {
			logger.InfoGlobal().Str("service", serviceName).Str("ip", ip).Uint64("port", port).Msg("✅ Registered service")
			return nil
		}
		logger.WarnGlobal().Err(err).Str("service", serviceName).Int("attempt", i+1).Msg("Failed to register, retrying...")
		time.Sleep(delay)
	}
	return err
}
