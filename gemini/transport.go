package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/gemini-go/internal/redact"
)

const (
	MaxRetries = 3

	baseBackoff = 5 * time.Second
)

// backoff для попытки retry (с нуля): 5s, 10s, 20s
func backoff(retry int) time.Duration {
	return baseBackoff << retry
}

func (c *Client) endpoint(modelID string) string {
	return c.baseURL + "/" + modelID + ":generateContent?key=" + url.QueryEscape(c.apiKey)
}

// maskedEndpoint - тот же URL, но с замаскированным ключом, только для логов
func (c *Client) maskedEndpoint(modelID string) string {
	return c.baseURL + "/" + modelID + ":generateContent?key=" + redact.MaskCredential(c.apiKey)
}

// send отправляет запрос и ретраит 429 с экспоненциальной задержкой.
// Тело сериализуется один раз и переиспользуется во всех попытках.
func (c *Client) send(ctx context.Context, logger *zap.Logger, modelID string, req generateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", wrapError(ErrInvalidRequest, "marshal request", err)
	}

	logger.Debug("request",
		zap.String("url", c.maskedEndpoint(modelID)),
		zap.ByteString("body", body),
	)

	for retry := 0; ; retry++ {
		respBody, status, err := c.dispatch(ctx, logger, modelID, body)
		if err != nil {
			return "", err
		}

		switch {
		case status == http.StatusOK:
			return parseGenerateResponse(respBody)

		case status == http.StatusTooManyRequests:
			if retry >= MaxRetries {
				logger.Error("rate limit exceeded", zap.Int("retries", MaxRetries))
				return "", &Error{
					Kind:       ErrRateLimit,
					Message:    fmt.Sprintf("rate limit exceeded after %d retries, check your quota and billing details", MaxRetries),
					StatusCode: status,
				}
			}

			wait := backoff(retry)
			logger.Warn("rate limit hit, retrying",
				zap.Duration("wait", wait),
				zap.Int("attempt", retry+1),
				zap.Int("max_retries", MaxRetries),
			)
			c.metrics.RecordRetry(modelID)

			if err := c.clock.Sleep(ctx, wait); err != nil {
				return "", wrapError(ErrNetwork, "API request failed", err)
			}

		default:
			msg := parseErrorMessage(respBody)
			logger.Error("API error", zap.Int("status", status), zap.String("message", msg))
			return "", &Error{
				Kind:       ErrAPI,
				Message:    "API error: " + msg,
				StatusCode: status,
			}
		}
	}
}

// dispatch - одна попытка: пейсинг, POST, чтение тела
func (c *Client) dispatch(ctx context.Context, logger *zap.Logger, modelID string, body []byte) ([]byte, int, error) {
	waited, err := c.pacer.Wait(ctx)
	if err != nil {
		return nil, 0, wrapError(ErrNetwork, "API request failed", err)
	}
	if waited > 0 {
		logger.Debug("rate limiting", zap.Duration("slept", waited))
		c.metrics.RecordPacingWait(waited)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(modelID), bytes.NewReader(body))
	if err != nil {
		return nil, 0, wrapError(ErrInvalidRequest, "create request", scrubURLError(err, c.apiKey))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-client", c.header)

	start := c.clock.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.metrics.RecordRequest(modelID, "error", c.clock.Now().Sub(start))
		err = scrubURLError(err, c.apiKey)
		logger.Error("API request failed", zap.Error(err))
		return nil, 0, wrapError(ErrNetwork, "API request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.metrics.RecordRequest(modelID, strconv.Itoa(resp.StatusCode), c.clock.Now().Sub(start))
	if err != nil {
		logger.Error("read response failed", zap.Error(err))
		return nil, resp.StatusCode, wrapError(ErrNetwork, "read response", err)
	}

	logger.Debug("response",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", respBody),
	)

	return respBody, resp.StatusCode, nil
}

// scrubURLError убирает ключ из URL внутри *url.Error, иначе он утечёт в текст ошибки
func scrubURLError(err error, key string) error {
	var ue *url.Error
	if errors.As(err, &ue) && key != "" {
		ue.URL = redactKey(ue.URL, key)
	}
	return err
}

func redactKey(s, key string) string {
	masked := redact.MaskCredential(key)
	s = strings.ReplaceAll(s, url.QueryEscape(key), masked)
	return strings.ReplaceAll(s, key, masked)
}
