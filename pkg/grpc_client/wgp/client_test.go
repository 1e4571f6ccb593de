package wgp

import (
	"context"
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	wgpgrpc "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/adapter/grpc"
	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/repository/memory"
	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/usecase"
	"github.com/stuagano/wolf-goat-pig/pkg/discovery"
	baseClient "github.com/stuagano/wolf-goat-pig/pkg/grpc_client/base"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
	"github.com/stuagano/wolf-goat-pig/pkg/service"
)

func init() {
	logger.Init(logger.Config{Level: "error", Format: "console"})
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := wgpgrpc.NewServer(usecase.NewGameUseCase(memory.NewGameRepository(), nil, domain.Course{Name: "Test"}))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	registry := discovery.NewStaticRegistry(map[string][]string{discovery.GameService: {"game-1"}})
	base := baseClient.NewBaseClient(registry,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	t.Cleanup(func() { base.Close() })
	return NewClient(base)
}

func TestClientImplementsGameService(t *testing.T) {
	ctx := logger.WithRequestID(context.Background(), "req-1")
	c := newTestClient(t)

	view, err := c.CreateGame(ctx, &service.CreateGameReq{
		Players: []domain.Player{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}, {ID: "p4"}, {ID: "p5"}},
	})
	require.NoError(t, err)
	assert.Len(t, view.Players, 5)

	view, err = c.Dispatch(ctx, view.GameID, domain.CmdRequestPartner, json.RawMessage(`{"captain_id":"p1","partner_id":"p2"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.FormationPendingRequest, view.Formation.Kind)

	got, err := c.GetGame(ctx, view.GameID)
	require.NoError(t, err)
	assert.Equal(t, view.Formation, got.Formation)

	holes, err := c.History(ctx, view.GameID)
	require.NoError(t, err)
	assert.Empty(t, holes)

	_, err = c.Dispatch(ctx, view.GameID, domain.CmdAcceptPartner, json.RawMessage(`{"partner_id":"p3"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestClientWithoutInstances(t *testing.T) {
	c := NewClient(baseClient.NewBaseClient(discovery.NewStaticRegistry(nil)))
	_, err := c.GetGame(context.Background(), "g1")
	assert.Error(t, err)
	assert.Equal(t, service.CodeInternal, service.CodeOf(err))
}
