package config

import (
	"github.com/stuagano/wolf-goat-pig/pkg/discovery"
)

// NewRegistry connects to Nacos when it is enabled. Otherwise it returns a
// static registry seeded with the given addresses.
func (c NacosConfig) NewRegistry(static map[string][]string) (discovery.Registry, error) {
	if !c.Enabled {
		return discovery.NewStaticRegistry(static), nil
	}
	return discovery.NewNacosClient(c.Host, c.Port, c.NamespaceID)
}
