package base

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	gatewaygrpc "github.com/stuagano/wolf-goat-pig/internal/modules/gateway/adapter/grpc"
	gwdomain "github.com/stuagano/wolf-goat-pig/internal/modules/gateway/domain"
	"github.com/stuagano/wolf-goat-pig/pkg/admin"
	"github.com/stuagano/wolf-goat-pig/pkg/discovery"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
)

func init() {
	logger.Init(logger.Config{Level: "error", Format: "console"})
}

type recordingGateway struct {
	mu   sync.Mutex
	msgs map[string][][]byte
}

func (g *recordingGateway) SendToSeat(gwdomain.Seat, []byte) {}

func (g *recordingGateway) BroadcastToGame(gameID string, message []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.msgs[gameID] = append(g.msgs[gameID], message)
}

func (g *recordingGateway) count(gameID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.msgs[gameID])
}

// bufnet routes dials by address to in-memory listeners
type bufnet map[string]*bufconn.Listener

func (b bufnet) dialer() grpc.DialOption {
	return grpc.WithContextDialer(func(ctx context.Context, addr string) (net.Conn, error) {
		return b[addr].DialContext(ctx)
	})
}

func startGateway(t *testing.T, nets bufnet, addr string) *recordingGateway {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	nets[addr] = lis
	gw := &recordingGateway{msgs: make(map[string][][]byte)}
	s := grpc.NewServer()
	gatewaygrpc.Register(s, gatewaygrpc.NewHandler(gw))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)
	return gw
}

func newClient(registry discovery.Registry, nets bufnet) *BaseClient {
	c := NewBaseClient(registry, nets.dialer(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	c.jitter = func() time.Duration { return 0 }
	return c
}

func TestBroadcastGameReachesEveryGateway(t *testing.T) {
	nets := bufnet{}
	gw1 := startGateway(t, nets, "gw-1")
	gw2 := startGateway(t, nets, "gw-2")
	registry := discovery.NewStaticRegistry(map[string][]string{discovery.GatewayService: {"gw-1", "gw-2"}})

	c := newClient(registry, nets)
	defer c.Close()

	c.BroadcastGame("g1", map[string]string{"command": "game_state"})

	require.Eventually(t, func() bool { return gw1.count("g1") == 1 && gw2.count("g1") == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.JSONEq(t, `{"command":"game_state"}`, string(gw1.msgs["g1"][0]))
}

func TestBroadcastGameDeliversInOrderBeforeReturning(t *testing.T) {
	nets := bufnet{}
	gw1 := startGateway(t, nets, "gw-1")
	gw2 := startGateway(t, nets, "gw-2")
	registry := discovery.NewStaticRegistry(map[string][]string{discovery.GatewayService: {"gw-1", "gw-2"}})

	c := newClient(registry, nets)
	defer c.Close()

	const events = 200
	for i := 0; i < events; i++ {
		c.BroadcastGame("g1", map[string]int{"seq": i})
		require.Equal(t, i+1, gw1.count("g1"), "event %d not delivered before return", i)
		require.Equal(t, i+1, gw2.count("g1"))
	}

	for _, gw := range []*recordingGateway{gw1, gw2} {
		gw.mu.Lock()
		for i, raw := range gw.msgs["g1"] {
			var ev struct {
				Seq int `json:"seq"`
			}
			require.NoError(t, json.Unmarshal(raw, &ev))
			assert.Equal(t, i, ev.Seq)
		}
		gw.mu.Unlock()
	}
}

func TestServiceAddrsFollowRegistryPushes(t *testing.T) {
	registry := discovery.NewStaticRegistry(map[string][]string{discovery.GameService: {"10.0.0.1:9000"}})
	c := newClient(registry, bufnet{})
	defer c.Close()

	addrs, err := c.GetServiceAddrs(discovery.GameService)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1:9000"}, addrs)

	require.NoError(t, registry.RegisterService(discovery.GameService, "10.0.0.2", 9000, nil))
	addrs, err = c.GetServiceAddrs(discovery.GameService)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1:9000", "10.0.0.2:9000"}, addrs)

	_, err = c.GetServiceAddrs(discovery.GatewayService)
	assert.Error(t, err)
}

func TestSubmitTaskRunsOnPool(t *testing.T) {
	c := newClient(discovery.NewStaticRegistry(nil), bufnet{})
	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		c.SubmitTask(wg.Done)
	}
	wg.Wait()
}

func TestCollectPerformanceFromDiscoveredInstance(t *testing.T) {
	nets := bufnet{}
	lis := bufconn.Listen(1 << 20)
	nets["game-1"] = lis
	s := grpc.NewServer()
	admin.Register(s, admin.NewServer("game-host"))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	registry := discovery.NewStaticRegistry(map[string][]string{discovery.GameService: {"game-1"}})
	c := newClient(registry, nets)
	defer c.Close()

	p, err := c.CollectPerformance(context.Background(), discovery.GameService, "", 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "game-1", p.Instance)
	assert.Equal(t, "game-host", p.Host)
	assert.NotEmpty(t, p.Data[admin.CPUProfile])
	assert.NotEmpty(t, p.Data[admin.HeapSnapshot])
}
