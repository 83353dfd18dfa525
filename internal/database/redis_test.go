package database

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestConnectRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client, err := ConnectRedis(context.Background(), "redis://"+server.Addr(), zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	_, err = ConnectRedis(context.Background(), "://bad", zerolog.Nop())
	require.Error(t, err)
}

func TestConnectRedisUnreachable(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	addr := server.Addr()
	server.Close()

	client, err := ConnectRedis(context.Background(), "redis://"+addr, zerolog.Nop())
	require.Error(t, err)
	require.Contains(t, err.Error(), addr)
	require.Nil(t, client)
}

func TestOptionalConnections(t *testing.T) {
	client, err := ConnectRedis(context.Background(), "", zerolog.Nop())
	require.NoError(t, err)
	require.Nil(t, client)

	conn, err := ConnectNATS("", "test", zerolog.Nop())
	require.NoError(t, err)
	require.Nil(t, conn)
}
