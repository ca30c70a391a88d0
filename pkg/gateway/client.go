/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package gateway implements the HTTP contract of the register gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/greenliquidlight/modservice/pkg/models"
	"github.com/greenliquidlight/modservice/pkg/version"
)

const (
	// DefaultBaseURL is where modbus-sim listens by default.
	DefaultBaseURL = "http://127.0.0.1:8000"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
)

// HTTPClient talks to the gateway REST API.
type HTTPClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     logger.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		h.httpClient = c
	}
}

// WithTimeout bounds every request. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) {
		h.httpClient.Timeout = d
	}
}

// WithLogger sets the request logger.
func WithLogger(log logger.Logger) Option {
	return func(h *HTTPClient) {
		h.logger = log
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(h *HTTPClient) {
		h.userAgent = ua
	}
}

// NewHTTPClient builds a client for the gateway at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	h := &HTTPClient{
		baseURL:    NormaliseBaseURL(baseURL),
		userAgent:  version.UserAgent("modservice"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.NewTestLogger(),
	}

	for _, o := range opts {
		o(h)
	}

	return h
}

// NormaliseBaseURL trims trailing slashes and defaults the scheme to http.
func NormaliseBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return DefaultBaseURL
	}

	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	return strings.TrimRight(base, "/")
}

// BaseURL returns the normalised gateway URL.
func (h *HTTPClient) BaseURL() string {
	return h.baseURL
}

func (h *HTTPClient) ListServers(ctx context.Context) ([]models.ServerRecord, error) {
	var servers []models.ServerRecord

	if err := h.do(ctx, "list servers", http.MethodGet, "/api/servers", nil, &servers); err != nil {
		return nil, err
	}

	if servers == nil {
		servers = []models.ServerRecord{}
	}

	return servers, nil
}

func (h *HTTPClient) CreateServer(ctx context.Context, spec models.ServerSpec) (*models.ServerRecord, error) {
	var rec models.ServerRecord

	if err := h.do(ctx, "create server", http.MethodPost, "/api/servers", spec, &rec); err != nil {
		return nil, err
	}

	if rec.ID == "" {
		return nil, &GatewayError{
			Op:         "create server",
			StatusCode: http.StatusOK,
			Detail:     "gateway returned a server without an id",
			Err:        errMalformedResponse,
		}
	}

	return &rec, nil
}

func (h *HTTPClient) ReadRegisters(
	ctx context.Context, serverID string, kind models.RegisterKind, addr, count int) ([]models.RegisterValue, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", errUnknownKind, kind)
	}

	op := "read " + string(kind)

	query := url.Values{}
	query.Set("addr", strconv.Itoa(addr))
	query.Set("count", strconv.Itoa(count))

	path := registerPath(serverID, kind) + "?" + query.Encode()

	var resp models.RawRegisterValuesResponse
	if err := h.do(ctx, op, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	values, err := models.DecodeValues(kind, resp.Values)
	if err != nil {
		return nil, &GatewayError{Op: op, StatusCode: http.StatusOK, Detail: err.Error(), Err: errMalformedResponse}
	}

	return values, nil
}

func (h *HTTPClient) WriteRegister(
	ctx context.Context, serverID string, kind models.RegisterKind, addr int, value models.RegisterValue) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", errUnknownKind, kind)
	}

	path := registerPath(serverID, kind) + "/" + strconv.Itoa(addr)

	return h.do(ctx, "write "+string(kind), http.MethodPut, path, models.SingleWriteRequest{Value: value}, nil)
}

func (h *HTTPClient) WriteRegisters(
	ctx context.Context, serverID string, kind models.RegisterKind, changes []models.RegisterChange) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", errUnknownKind, kind)
	}

	body := models.BatchWriteRequest{Values: changes}
	if body.Values == nil {
		body.Values = []models.RegisterChange{}
	}

	return h.do(ctx, "write "+string(kind), http.MethodPut, registerPath(serverID, kind), body, nil)
}

func registerPath(serverID string, kind models.RegisterKind) string {
	return "/api/servers/" + url.PathEscape(serverID) + "/" + string(kind)
}

// do sends one JSON request. Any failure comes back as a *GatewayError.
func (h *HTTPClient) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader = http.NoBody

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}

		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.logger.Warn().Err(err).Str("op", op).Str("method", method).Str("path", path).Msg("Gateway request failed")

		return &GatewayError{Op: op, Err: err}
	}
	defer h.closeResponse(resp)

	h.logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Gateway request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readErrorBody(resp.Body)

		h.logger.Warn().Str("op", op).Int("status", resp.StatusCode).Str("detail", detail).Msg("Gateway rejected request")

		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Detail: detail}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &GatewayError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("%s: %v", errMalformedResponse, err),
			Err:        errMalformedResponse,
		}
	}

	return nil
}

func (h *HTTPClient) closeResponse(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to close response body")
	}
}

// readErrorBody returns the trimmed body, or FallbackDetail when it is empty.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return FallbackDetail
	}

	detail := strings.TrimSpace(string(data))
	if detail == "" {
		return FallbackDetail
	}

	return detail
}
