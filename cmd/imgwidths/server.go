package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/rwd/idgen"
	"github.com/hazyhaar/rwd/imgwidths"
	"github.com/hazyhaar/rwd/kit"
	"github.com/hazyhaar/rwd/shield"
)

const version = "0.1.0"

// newRouter wires the JSON API and the MCP streamable HTTP endpoint.
func newRouter(st *imgwidths.Store, logger *slog.Logger) http.Handler {
	mcpSrv := mcp.NewServer(&mcp.Implementation{Name: "imgwidths", Version: version}, nil)
	imgwidths.RegisterMCP(mcpSrv, st, logger)

	selectEP := imgwidths.Instrument(logger, "select")(imgwidths.SelectEndpoint())
	aggregateEP := imgwidths.Instrument(logger, "aggregate")(imgwidths.AggregateEndpoint())
	runsEP := imgwidths.Instrument(logger, "runs")(imgwidths.RunsEndpoint(st))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	for _, mw := range shield.APIStack(logger) {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok", "version": version})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/runs", func(w http.ResponseWriter, r *http.Request) {
			limit, err := queryInt(r, "limit", 50)
			if err != nil {
				writeError(w, 400, err)
				return
			}
			call(w, r, runsEP, &imgwidths.RunsRequest{Limit: limit})
		})
		r.Get("/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if _, err := idgen.ParseRun(id); err != nil {
				writeError(w, 400, err)
				return
			}
			call(w, r, runsEP, &imgwidths.RunsRequest{ID: id})
		})
		r.Post("/select", func(w http.ResponseWriter, r *http.Request) {
			var req imgwidths.SelectRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			call(w, r, selectEP, &req)
		})
		r.Post("/aggregate", func(w http.ResponseWriter, r *http.Request) {
			var req imgwidths.AggregateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, 400, err)
				return
			}
			call(w, r, aggregateEP, &req)
		})
	})

	r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpSrv }, nil))

	return r
}

// call runs an endpoint and maps its error to a status code.
func call(w http.ResponseWriter, r *http.Request, ep kit.Endpoint, req any) {
	resp, err := ep(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, 200, resp)
	case errors.Is(err, imgwidths.ErrInvalidRequest):
		writeError(w, 400, err)
	case errors.Is(err, imgwidths.ErrRunNotFound):
		writeError(w, 404, err)
	default:
		writeError(w, 500, err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// queryInt reads an integer query parameter; absent means def.
func queryInt(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: not an integer: %q", key, s)
	}
	return v, nil
}
