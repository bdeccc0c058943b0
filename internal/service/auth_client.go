package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chronary-tracker/internal/store"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrUnauthenticated token无效或身份服务拒绝
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator 身份collaborator：bearer token -> user_id
// 核心组件只拿到user_id，从不接触token本身
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// verifyResponse auth service校验端点的响应
type verifyResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id"`
}

// RemoteAuthenticator 调用外部auth service校验token
// 校验通过的结果写入KV缓存（短TTL），减少对auth service的重复请求；
// 缓存只存在于transport collaborator，核心读路径不经过它
type RemoteAuthenticator struct {
	httpClient *resty.Client
	cache      store.KV
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewRemoteAuthenticator 创建远端认证客户端
func NewRemoteAuthenticator(verifyURL string, cache store.KV, cacheTTL time.Duration, logger *zap.Logger) *RemoteAuthenticator {
	client := resty.New().
		SetBaseURL(verifyURL).
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Accept", "application/json")

	return &RemoteAuthenticator{
		httpClient: client,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

var _ Authenticator = (*RemoteAuthenticator)(nil)

func (a *RemoteAuthenticator) Authenticate(ctx context.Context, token string) (string, error) {
	cacheKey := "auth:token:" + token
	if a.cache != nil {
		if userID, err := a.cache.Get(ctx, cacheKey); err == nil && userID != "" {
			return userID, nil
		}
	}

	var body verifyResponse
	resp, err := a.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetResult(&body).
		Get("")
	if err != nil {
		return "", fmt.Errorf("auth service request failed: %w", err)
	}
	if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
		return "", ErrUnauthenticated
	}
	if resp.IsError() {
		return "", fmt.Errorf("auth service returned status %d", resp.StatusCode())
	}
	if !body.Valid || body.UserID == "" {
		return "", ErrUnauthenticated
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, cacheKey, body.UserID, a.cacheTTL); err != nil {
			a.logger.Warn("auth cache write failed", zap.Error(err))
		}
	}
	return body.UserID, nil
}

// StaticAuthenticator 固定token表（本地联测和单元测试用）
type StaticAuthenticator struct {
	tokens map[string]string
}

// NewStaticAuthenticator tokens格式: "token1=user1,token2=user2"
func NewStaticAuthenticator(tokens string) *StaticAuthenticator {
	m := map[string]string{}
	for _, pair := range strings.Split(tokens, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			m[parts[0]] = parts[1]
		}
	}
	return &StaticAuthenticator{tokens: m}
}

var _ Authenticator = (*StaticAuthenticator)(nil)

func (a *StaticAuthenticator) Authenticate(_ context.Context, token string) (string, error) {
	userID, ok := a.tokens[token]
	if !ok {
		return "", ErrUnauthenticated
	}
	return userID, nil
}
