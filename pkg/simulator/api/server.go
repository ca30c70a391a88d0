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

// Package api serves the register gateway REST contract on top of the
// simulator.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	srHttp "github.com/greenliquidlight/modservice/pkg/http"
	"github.com/greenliquidlight/modservice/pkg/logger"
	"github.com/greenliquidlight/modservice/pkg/models"
	"github.com/greenliquidlight/modservice/pkg/simulator"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 60 * time.Second

	maxBodyBytes = 1 << 20

	msgServerNotFound = "Server not found"
)

// APIServer is the HTTP front of a ServerManager.
type APIServer struct {
	router     *mux.Router
	manager    ServerManager
	corsConfig models.CORSConfig
	logger     logger.Logger
	srv        *http.Server
}

// NewAPIServer creates a new API server instance with the given configuration
func NewAPIServer(manager ServerManager, config models.CORSConfig, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:     mux.NewRouter(),
		manager:    manager,
		corsConfig: config,
		logger:     logger.NewTestLogger(),
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	s.srv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	return s
}

// WithLogger sets the request and error logger.
func WithLogger(log logger.Logger) func(server *APIServer) {
	return func(server *APIServer) {
		server.logger = log
	}
}

func (s *APIServer) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return srHttp.CommonMiddleware(next, s.corsConfig, s.logger)
	})

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/servers", s.listServers).Methods(http.MethodGet)
	api.HandleFunc("/servers", s.createServer).Methods(http.MethodPost)
	api.HandleFunc("/servers/{id}/{kind:coils|holding}", s.readRegisters).Methods(http.MethodGet)
	api.HandleFunc("/servers/{id}/{kind:coils|holding}", s.writeRegisters).Methods(http.MethodPut)
	api.HandleFunc("/servers/{id}/{kind:coils|holding}/{addr}", s.writeRegister).Methods(http.MethodPut)

	// Preflight requests are answered by the middleware, but mux only runs
	// middleware on a matched route.
	s.router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})
}

// Handler returns the routed handler, for tests and embedding.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown. It returns nil after a clean shutdown.
func (s *APIServer) Start(addr string) error {
	s.srv.Addr = addr

	s.logger.Info().Str("addr", addr).Msg("Gateway API listening")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *APIServer) listServers(w http.ResponseWriter, _ *http.Request) {
	s.encodeJSONResponse(w, s.manager.List())
}

func (s *APIServer) createServer(w http.ResponseWriter, r *http.Request) {
	spec := models.DefaultServerSpec()

	if err := decodeBody(w, r, &spec); err != nil {
		s.writeError(w, r, "create", err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := s.manager.CreateAndStart(spec)
	if err != nil {
		s.writeManagerError(w, r, "create", err)
		return
	}

	s.encodeJSONResponse(w, rec)
}

func (s *APIServer) readRegisters(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := models.RegisterKind(vars["kind"])

	addr, err := queryInt(r, "addr", 0)
	if err != nil {
		s.writeError(w, r, "read", err.Error(), http.StatusBadRequest)
		return
	}

	count, err := queryInt(r, "count", 1)
	if err != nil {
		s.writeError(w, r, "read", err.Error(), http.StatusBadRequest)
		return
	}

	values, err := s.manager.ReadRegisters(vars["id"], kind, addr, count)
	if err != nil {
		s.writeManagerError(w, r, "read", err)
		return
	}

	recordReads(r.Context(), kind, len(values))

	s.encodeJSONResponse(w, models.RegisterValuesResponse{Values: values})
}

func (s *APIServer) writeRegister(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := models.RegisterKind(vars["kind"])

	addr, err := strconv.Atoi(vars["addr"])
	if err != nil || addr < 0 {
		s.writeError(w, r, "write", fmt.Sprintf("invalid addr %q", vars["addr"]), http.StatusBadRequest)
		return
	}

	var body models.RawSingleWriteRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, "write", err.Error(), http.StatusBadRequest)
		return
	}

	value, err := models.DecodeValue(kind, body.Value)
	if err != nil {
		s.writeError(w, r, "write", err.Error(), http.StatusBadRequest)
		return
	}

	changes := []models.RegisterChange{{Addr: addr, Value: value}}
	if err := s.manager.WriteRegisters(vars["id"], kind, changes); err != nil {
		s.writeManagerError(w, r, "write", err)
		return
	}

	recordWrites(r.Context(), kind, 1)

	s.encodeJSONResponse(w, models.WriteResponse{Status: "ok"})
}

func (s *APIServer) writeRegisters(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := models.RegisterKind(vars["kind"])

	var body models.RawBatchWriteRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, "write", err.Error(), http.StatusBadRequest)
		return
	}

	changes := make([]models.RegisterChange, 0, len(body.Values))

	for i, item := range body.Values {
		if item.Addr < 0 {
			s.writeError(w, r, "write", fmt.Sprintf("values[%d]: invalid addr %d", i, item.Addr), http.StatusBadRequest)
			return
		}

		value, err := models.DecodeValue(kind, item.Value)
		if err != nil {
			s.writeError(w, r, "write", fmt.Sprintf("values[%d]: %v", i, err), http.StatusBadRequest)
			return
		}

		changes = append(changes, models.RegisterChange{Addr: item.Addr, Value: value})
	}

	if err := s.manager.WriteRegisters(vars["id"], kind, changes); err != nil {
		s.writeManagerError(w, r, "write", err)
		return
	}

	recordWrites(r.Context(), kind, len(changes))

	s.encodeJSONResponse(w, models.WriteResponse{Status: "ok", Written: len(changes)})
}

// encodeJSONResponse encodes a response as JSON
func (s *APIServer) encodeJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode response")
	}
}

// writeManagerError maps simulator errors onto status codes. The body is
// plain text so clients can show it verbatim.
func (s *APIServer) writeManagerError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	switch {
	case errors.Is(err, simulator.ErrServerNotFound):
		s.writeError(w, r, endpoint, msgServerNotFound, http.StatusNotFound)
	case errors.Is(err, models.ErrValidation), errors.Is(err, simulator.ErrOutOfRange):
		s.writeError(w, r, endpoint, err.Error(), http.StatusBadRequest)
	case errors.Is(err, simulator.ErrStartFailed):
		s.writeError(w, r, endpoint, err.Error(), http.StatusConflict)
	default:
		s.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Gateway request failed")
		s.writeError(w, r, endpoint, err.Error(), http.StatusInternalServerError)
	}
}

func (*APIServer) writeError(w http.ResponseWriter, r *http.Request, endpoint, message string, statusCode int) {
	recordError(r.Context(), endpoint, statusCode)

	http.Error(w, message, statusCode)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	return nil
}

// queryInt reads a required integer query parameter that must be >= minValue.
func queryInt(r *http.Request, name string, minValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing query parameter %q", name)
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be an integer", name)
	}

	if n < minValue {
		return 0, fmt.Errorf("query parameter %q must be >= %d", name, minValue)
	}

	return n, nil
}
