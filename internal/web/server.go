package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/squid-dao/census/internal/census"
	"github.com/squid-dao/census/internal/logger"
	"github.com/squid-dao/census/internal/types"
	"github.com/squid-dao/census/internal/utils"
)

var webLogger = logger.GetForComponent("web_server")

// maxReportHolders bounds one census report request.
const maxReportHolders = 500

// PingFunc checks connectivity to the chain node.
type PingFunc func(ctx context.Context) error

// WebServer handles HTTP requests for the census query surface
type WebServer struct {
	router *mux.Router
	port   string
	census *census.Census
	ping   PingFunc
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, c *census.Census, ping PingFunc) (*WebServer, error) {
	if c == nil {
		return nil, errors.New("census cannot be nil")
	}
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
		census: c,
		ping:   ping,
	}

	server.setupRoutes()
	return server, nil
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/voting-power/{address}", ws.handleVotingPower).Methods("GET")
	api.HandleFunc("/balances/{address}", ws.handleBalances).Methods("GET")
	api.HandleFunc("/prices", ws.handlePrices).Methods("GET")
	api.HandleFunc("/rate/{family}", ws.handleRate).Methods("GET")
	api.HandleFunc("/census", ws.handleReport).Methods("POST")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status including node connectivity
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	nodeHealthy := true
	if ws.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := ws.ping(ctx); err != nil {
			webLogger.Error().Err(err).Msg("Node connectivity check failed")
			nodeHealthy = false
		}
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !nodeHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "census-voting-power-service",
			"version": "1.0.0",
		},
		"node_healthy": nodeHealthy,
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleVotingPower returns a holder's voting power breakdown
func (ws *WebServer) handleVotingPower(w http.ResponseWriter, r *http.Request) {
	holder, ok := ws.parseAddress(w, r)
	if !ok {
		return
	}

	breakdown, err := ws.census.Breakdown(r.Context(), holder)
	if err != nil {
		ws.writeQueryError(w, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, breakdown)
}

// handleBalances returns a holder's raw balances per component
func (ws *WebServer) handleBalances(w http.ResponseWriter, r *http.Request) {
	holder, ok := ws.parseAddress(w, r)
	if !ok {
		return
	}

	direct, err := ws.census.DirectBalance(r.Context(), holder)
	if err != nil {
		ws.writeQueryError(w, err)
		return
	}
	familyA, err := ws.census.FamilyBalance(r.Context(), types.FamilyA, holder)
	if err != nil {
		ws.writeQueryError(w, err)
		return
	}
	familyB, err := ws.census.FamilyBalance(r.Context(), types.FamilyB, holder)
	if err != nil {
		ws.writeQueryError(w, err)
		return
	}

	response := map[string]interface{}{
		"holder":   holder.Hex(),
		"direct":   direct,
		"family_a": familyA,
		"family_b": familyB,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handlePrices returns the current derived USD prices
func (ws *WebServer) handlePrices(w http.ResponseWriter, r *http.Request) {
	quote, err := ws.census.BaseQuotePrice(r.Context())
	if err != nil {
		ws.writeQueryError(w, err)
		return
	}
	familyA, err := ws.census.FamilyAUSDPrice(r.Context())
	if err != nil {
		ws.writeQueryError(w, err)
		return
	}
	familyB, err := ws.census.FamilyBUSDPrice(r.Context())
	if err != nil {
		ws.writeQueryError(w, err)
		return
	}

	response := map[string]interface{}{
		"quote_usd":    quote,
		"family_a_usd": familyA,
		"family_b_usd": familyB,
		"timestamp":    time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleRate returns a family's per-unit LP rate. The quantity query parameter
// defaults to one full unit when omitted.
func (ws *WebServer) handleRate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	familyID := types.FamilyID(vars["family"])
	if familyID != types.FamilyA && familyID != types.FamilyB {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Unknown LP family")
		return
	}

	quantity := sdkmath.Int{}
	if quantityStr := r.URL.Query().Get("quantity"); quantityStr != "" {
		parsed, ok := sdkmath.NewIntFromString(quantityStr)
		if !ok || parsed.IsNegative() {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid quantity")
			return
		}
		quantity = parsed
	}

	rate, err := ws.census.LPRate(r.Context(), familyID, quantity)
	if err != nil {
		ws.writeQueryError(w, err)
		return
	}

	response := map[string]interface{}{
		"family": familyID,
		"rate":   rate,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// reportRequest is the body of a census report request.
type reportRequest struct {
	Holders []string `json:"holders"`
}

// handleReport computes voting power for a list of holders, ordered by
// descending power
func (ws *WebServer) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Holders) == 0 {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Holder list cannot be empty")
		return
	}
	if len(req.Holders) > maxReportHolders {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Too many holders in one request")
		return
	}

	holders := make([]common.Address, 0, len(req.Holders))
	for _, raw := range req.Holders {
		if !common.IsHexAddress(raw) {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid holder address: "+raw)
			return
		}
		holders = append(holders, common.HexToAddress(raw))
	}

	report, err := ws.census.Report(r.Context(), holders)
	if err != nil {
		ws.writeQueryError(w, err)
		return
	}

	response := map[string]interface{}{
		"report": report,
		"count":  len(report),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// parseAddress extracts and validates the address path variable.
func (ws *WebServer) parseAddress(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	vars := mux.Vars(r)
	raw := vars["address"]
	if !common.IsHexAddress(raw) {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid address")
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

// writeQueryError maps the census error taxonomy to HTTP status codes.
func (ws *WebServer) writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidHolder), errors.Is(err, types.ErrQuantityTooLarge):
		ws.writeErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrProviderUnavailable):
		webLogger.Error().Err(err).Msg("Provider call failed")
		ws.writeErrorResponse(w, http.StatusBadGateway, "External provider unavailable")
	case errors.Is(err, types.ErrConfigurationMismatch), errors.Is(err, utils.ErrArithmeticOverflow):
		webLogger.Error().Err(err).Msg("Fatal query error")
		ws.writeErrorResponse(w, http.StatusInternalServerError, err.Error())
	default:
		webLogger.Error().Err(err).Msg("Query failed")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Query failed")
	}
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
