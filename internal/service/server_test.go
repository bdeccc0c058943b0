package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestServer_StartStop(t *testing.T) {
	srv := NewServer("127.0.0.1:0", http.NewServeMux(), getTestLogger())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	// 给listener一点启动时间
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.ErrorIs(t, <-errCh, http.ErrServerClosed)
}

func TestServer_RunReturnsListenError(t *testing.T) {
	// 非法地址：Run不等信号，直接把启动错误带出来
	srv := NewServer("256.256.256.256:0", http.NewServeMux(), getTestLogger())
	require.Error(t, srv.Run())
}
