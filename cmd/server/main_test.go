package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"medical-booking/internal/auth"
	"medical-booking/internal/directory"
	"medical-booking/internal/middleware"
	"medical-booking/internal/model"
)

type doctors []model.Account

func (d doctors) ListDoctors(context.Context) ([]model.Account, error) { return d, nil }

func dialServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	rl := middleware.NewRateLimiter(100, 100)
	t.Cleanup(rl.Close)
	srv, _ := newGRPCServer("secret", rl, doctors(sampleDoctors()), zerolog.Nop())

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHealthCheckNeedsNoToken(t *testing.T) {
	conn := dialServer(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: directory.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestDirectoryNeedsToken(t *testing.T) {
	conn := dialServer(t)

	_, err := directory.NewClient(conn, "").GetAllDoctors(context.Background())
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	tok, err := auth.MakeToken("p1", "Ana", "secret", time.Hour)
	require.NoError(t, err)
	got, err := directory.NewClient(conn, tok).GetAllDoctors(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, len(sampleDoctors()))
}

func TestSampleDoctorIDsAreStable(t *testing.T) {
	a, b := sampleDoctors(), sampleDoctors()
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
	assert.Nil(t, a[len(a)-1].Specialty)
}
