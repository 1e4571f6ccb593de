package discovery

import (
	"fmt"
	"strconv"

	"github.com/nacos-group/nacos-sdk-go/v2/clients"
	"github.com/nacos-group/nacos-sdk-go/v2/clients/naming_client"
	"github.com/nacos-group/nacos-sdk-go/v2/common/constant"
	"github.com/nacos-group/nacos-sdk-go/v2/model"
	"github.com/nacos-group/nacos-sdk-go/v2/vo"
)

// NacosClient wraps Nacos naming client
type NacosClient struct {
	client naming_client.INamingClient
}

var _ Registry = (*NacosClient)(nil)

// NewNacosClient creates a new Nacos client
func NewNacosClient(host string, port string, namespaceID string) (*NacosClient, error) {
	portInt, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}

	serverConfigs := []constant.ServerConfig{
		{
			IpAddr: host,
			Port:   uint64(portInt),
		},
	}

	clientConfig := constant.ClientConfig{
		NamespaceId:         namespaceID,
		TimeoutMs:           5000,
		NotLoadCacheAtStart: true,
		LogDir:              "/tmp/nacos/log",
		CacheDir:            "/tmp/nacos/cache",
		LogLevel:            "warn",
	}

	namingClient, err := clients.NewNamingClient(
		vo.NacosClientParam{
			ClientConfig:  &clientConfig,
			ServerConfigs: serverConfigs,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create nacos client: %w", err)
	}

	return &NacosClient{client: namingClient}, nil
}

// RegisterService registers an ephemeral instance, so a crashed game service drops out on its own
func (nc *NacosClient) RegisterService(serviceName, ip string, port uint64, metadata map[string]string) error {
	success, err := nc.client.RegisterInstance(vo.RegisterInstanceParam{
		Ip:          ip,
		Port:        port,
		ServiceName: serviceName,
		Weight:      10,
		Enable:      true,
		Healthy:     true,
		Ephemeral:   true,
		Metadata:    metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}
	if !success {
		return fmt.Errorf("register service returned false")
	}
	return nil
}

func (nc *NacosClient) DeregisterService(serviceName, ip string, port uint64) error {
	success, err := nc.client.DeregisterInstance(vo.DeregisterInstanceParam{
		Ip:          ip,
		Port:        port,
		ServiceName: serviceName,
		Ephemeral:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	if !success {
		return fmt.Errorf("deregister service returned false")
	}
	return nil
}

// GetServices gets all healthy service instance addresses from Nacos
func (nc *NacosClient) GetServices(serviceName string) ([]string, error) {
	instances, err := nc.client.SelectInstances(vo.SelectInstancesParam{
		ServiceName: serviceName,
		HealthyOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get service instances: %w", err)
	}
	return healthyAddrs(instances), nil
}

// Subscribe pushes the healthy address list every time Nacos reports a change
func (nc *NacosClient) Subscribe(serviceName string, callback func(services []string)) error {
	err := nc.client.Subscribe(&vo.SubscribeParam{
		ServiceName: serviceName,
		SubscribeCallback: func(instances []model.Instance, err error) {
			if err != nil {
				return
			}
			callback(healthyAddrs(instances))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", serviceName, err)
	}
	return nil
}

func healthyAddrs(instances []model.Instance) []string {
	var addrs []string
	for _, instance := range instances {
		if instance.Enable && instance.Healthy {
			addrs = append(addrs, fmt.Sprintf("%s:%d", instance.Ip, instance.Port))
		}
	}
	return addrs
}

// Close closes the Nacos client
func (nc *NacosClient) Close() error {
	nc.client.CloseClient()
	return nil
}
