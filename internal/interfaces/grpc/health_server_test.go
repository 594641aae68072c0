package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	grpcCodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	apperrors "github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
)

func startBufServer(t *testing.T, s *Server) healthpb.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func TestHealthServer_TracksReadiness(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	s := NewServer(func(context.Context) (map[string]string, bool) {
		if healthy.Load() {
			return map[string]string{"database": "ok"}, true
		}
		return map[string]string{"database": "error: down"}, false
	}, time.Hour, nil)
	client := startBufServer(t, s)
	ctx := context.Background()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ScoringServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	healthy.Store(false)
	s.refresh(ctx)
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown"})
	assert.Equal(t, grpcCodes.NotFound, status.Code(err))
}

func TestConvertDomainErrorToGRPC(t *testing.T) {
	tests := []struct {
		err  error
		code grpcCodes.Code
	}{
		{apperrors.ErrEntityNotFound("E-1"), grpcCodes.NotFound},
		{apperrors.ErrInvalidRequest("bad"), grpcCodes.InvalidArgument},
		{apperrors.ErrScoring("E-1", "no related score"), grpcCodes.FailedPrecondition},
		{apperrors.ErrRateLimitExceeded("client", 5), grpcCodes.ResourceExhausted},
		{apperrors.ErrTemporarilyUnavailable("redis"), grpcCodes.Unavailable},
		{errors.New("boom"), grpcCodes.Internal},
		{status.Error(grpcCodes.Canceled, "gone"), grpcCodes.Canceled},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, status.Code(convertDomainErrorToGRPC(tt.err)), tt.err.Error())
	}
}

func TestUnaryRecoveryInterceptor(t *testing.T) {
	chain := NewInterceptorChain(logger.NewNoopLogger())
	_, err := chain.UnaryRecoveryInterceptor()(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/x.Y/Z"},
		func(context.Context, interface{}) (interface{}, error) { panic("boom") })
	assert.Equal(t, grpcCodes.Internal, status.Code(err))
}
