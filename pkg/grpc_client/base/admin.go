package base

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/stuagano/wolf-goat-pig/pkg/admin"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
)

// Profile is the assembled result of one performance collection
type Profile struct {
	Instance string
	Host     string
	Data     map[admin.DataType][]byte
}

// CollectPerformance profiles one instance of serviceName. An empty instance picks one at random.
func (c *BaseClient) CollectPerformance(ctx context.Context, serviceName, instance string, duration time.Duration) (*Profile, error) {
	if instance == "" {
		addrs, err := c.GetServiceAddrs(serviceName)
		if err != nil {
			return nil, err
		}
		instance = addrs[rand.Intn(len(addrs))]
	}
	conn, err := c.GetConnDirect(instance)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx).Str("service", serviceName).Str("instance", instance).Dur("duration", duration).Msg("collecting performance data")
	p := &Profile{Instance: instance, Data: make(map[admin.DataType][]byte)}
	err = admin.Collect(WithRequestID(ctx), conn, &admin.CollectReq{Duration: duration}, func(chunk *admin.Chunk) error {
		p.Host = chunk.ServiceName
		p.Data[chunk.DataType] = append(p.Data[chunk.DataType], chunk.Data...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect from %s: %w", instance, err)
	}
	return p, nil
}
