package payglocal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/payglocal/payglocal-go/models"
)

// sdkVersion is sent in the pg-sdk-version header on every request.
const sdkVersion = "go/1.0.0"

// requestTimeout is the hard deadline for every outbound call.
// Exceeding it surfaces ErrRequestTimeout; there is no retry.
const requestTimeout = 90 * time.Second

// Endpoint templates. {gid} placeholders are substituted per call.
const (
	endpointPaymentInitiate = "/gl/v1/payments/initiate/paycollect"
	endpointTxnStatus       = "/gl/v1/payments/{gid}/status"
	endpointTxnRefund       = "/gl/v1/payments/{gid}/refund"
	endpointTxnCapture      = "/gl/v1/payments/{gid}/capture"
	endpointTxnAuthReversal = "/gl/v1/payments/{gid}/auth/reversal"
	endpointSIModify        = "/gl/v1/payments/si/modify"
	endpointSIStatus        = "/gl/v1/payments/si/status"
)

// requestEnvelope is a fully assembled outbound request. Built once per
// call and consumed immediately; never reused.
type requestEnvelope struct {
	method  string
	url     string
	headers [][2]string
	body    []byte
}

// buildEndpoint substitutes {name} placeholders in an endpoint template.
// A missing parameter leaves its placeholder in the path verbatim. That
// quirk is shared with the gateway's other SDKs; do not change it without
// a product decision.
func buildEndpoint(template string, params map[string]string) string {
	path := template
	for name, value := range params {
		path = strings.ReplaceAll(path, "{"+name+"}", value)
	}
	return path
}

func (c *Client) apiKeyHeaders() [][2]string {
	return [][2]string{
		{"Content-Type", "application/json"},
		{"pg-sdk-version", sdkVersion},
		{"x-gl-auth", c.cfg.APIKey},
	}
}

func (c *Client) tokenHeaders(jws string) [][2]string {
	return [][2]string{
		{"Content-Type", "text/plain"},
		{"pg-sdk-version", sdkVersion},
		{"x-gl-token-external", jws},
	}
}

// sendJSON dispatches an API-key authenticated request carrying the
// payload as a plain JSON body.
func (c *Client) sendJSON(ctx context.Context, operation, method, path string, payload map[string]any) (models.APIResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("marshal payload failed", slog.String("operation", operation), slog.Any("error", err))
		return models.APIResponse{}, fmt.Errorf("payglocal: marshal payload: %w", err)
	}
	return c.send(ctx, operation, requestEnvelope{
		method:  method,
		url:     c.baseURL + path,
		headers: c.apiKeyHeaders(),
		body:    body,
	})
}

// sendTokenized encrypts the payload into a JWE, signs it (or the given
// digest input) into a JWS, and dispatches with the raw JWE as the body.
func (c *Client) sendTokenized(ctx context.Context, operation, method, path string, payload map[string]any, digestInput string) (models.APIResponse, error) {
	pair, err := buildTokenPair(payload, c.cfg, digestInput)
	if err != nil {
		c.logger.Error("token generation failed", slog.String("operation", operation), slog.Any("error", err))
		return models.APIResponse{}, err
	}
	return c.send(ctx, operation, requestEnvelope{
		method:  method,
		url:     c.baseURL + path,
		headers: c.tokenHeaders(pair.JWS),
		body:    []byte(pair.JWE),
	})
}

// sendSignedGet signs the literal endpoint path and issues a body-less GET.
func (c *Client) sendSignedGet(ctx context.Context, operation, path string) (models.APIResponse, error) {
	jws, err := buildJWS(path, c.cfg)
	if err != nil {
		c.logger.Error("token generation failed", slog.String("operation", operation), slog.Any("error", err))
		return models.APIResponse{}, err
	}
	return c.send(ctx, operation, requestEnvelope{
		method:  http.MethodGet,
		url:     c.baseURL + path,
		headers: c.tokenHeaders(jws),
	})
}

func (c *Client) send(ctx context.Context, operation string, env requestEnvelope) (models.APIResponse, error) {
	logger := c.logger.With(
		slog.String("operation", operation),
		slog.String("requestId", uuid.NewString()),
	)
	logger.Debug("sending request", slog.String("method", env.method), slog.String("url", env.url))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	if env.body != nil {
		bodyReader = bytes.NewReader(env.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, env.method, env.url, bodyReader)
	if err != nil {
		logger.Error("create request failed", slog.Any("error", err))
		return models.APIResponse{}, fmt.Errorf("payglocal: create HTTP request: %w", err)
	}
	for _, h := range env.headers {
		httpReq.Header.Set(h[0], h[1])
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			logger.Error("request deadline exceeded")
			return models.APIResponse{}, fmt.Errorf("payglocal: %s: %w", operation, ErrRequestTimeout)
		}
		logger.Error("transport failure", slog.Any("error", err))
		return models.APIResponse{}, fmt.Errorf("payglocal: send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("read response failed", slog.Any("error", err))
		return models.APIResponse{}, fmt.Errorf("payglocal: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error("gateway error status", slog.Int("status", resp.StatusCode))
		return models.APIResponse{HTTPStatus: resp.StatusCode, Body: respBody}, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       respBody,
			Headers:    resp.Header,
		}
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		logger.Error("empty response body", slog.Int("status", resp.StatusCode))
		return models.APIResponse{HTTPStatus: resp.StatusCode}, fmt.Errorf("payglocal: %s: %w", operation, ErrEmptyResponse)
	}

	result := models.APIResponse{HTTPStatus: resp.StatusCode, Body: respBody}
	// Best-effort parse; the raw body is always available in Body.
	_ = json.Unmarshal(respBody, &result.Data)

	logger.Info("request completed", slog.Int("status", resp.StatusCode))
	return result, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
