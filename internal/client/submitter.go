package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Evan-Lab/cloud-native/internal/dto"
)

// Submitter 把放置请求交给服务端的校验/发布路径。
// Store 只依赖这个接口，测试里用假实现替换。
type Submitter interface {
	SubmitPlacement(ctx context.Context, req dto.PlacementRequest) error
}

// HTTPSubmitter 通过 HTTP 提交放置请求，凭证以 Bearer token 带外携带
type HTTPSubmitter struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logrus.Entry
}

// NewHTTPSubmitter 创建 HTTPSubmitter。baseURL 形如 "http://host:port"。
func NewHTTPSubmitter(baseURL, token string, logger *logrus.Logger) *HTTPSubmitter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HTTPSubmitter{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: logger.WithField("component", "http_submitter"),
	}
}

// SetToken 更新凭证（重新登录后调用）
func (s *HTTPSubmitter) SetToken(token string) { s.token = token }

// SubmitPlacement 发送 POST /api/draw-pixel 并把响应状态映射为客户端条件
func (s *HTTPSubmitter) SubmitPlacement(ctx context.Context, req dto.PlacementRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal placement request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/draw-pixel", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build placement request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		// 网络层失败等价于发布失败：本地状态的处置由 Store 的模式决定
		s.log.WithError(err).Warn("Placement request failed at transport level")
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		// 服务端冷却是权威的，带上它给出的等待提示
		remaining := parseRetryAfter(resp)
		return &CooldownActiveError{RemainingTicks: remaining}
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, readErrorMessage(resp.Body))
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: server returned %d", ErrPublishFailed, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected placement response status %d", resp.StatusCode)
	}
}

func parseRetryAfter(resp *http.Response) int {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return seconds
		}
	}
	var errDTO dto.ErrorDTO
	if body, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		if json.Unmarshal(body, &errDTO) == nil && errDTO.RetryAfter > 0 {
			return errDTO.RetryAfter
		}
	}
	return 1
}

func readErrorMessage(r io.Reader) string {
	var errDTO dto.ErrorDTO
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err == nil && json.Unmarshal(body, &errDTO) == nil && errDTO.Error != "" {
		return errDTO.Error
	}
	return "rejected by server"
}
