package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/hub"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/kelly"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/pool"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/recommend"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/risk"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/store"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Restrict in production
		return true
	},
}

// Publisher pushes assembled recommendations to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, rec recommend.Recommendation) error
}

// Handler contains dependencies for HTTP handlers. Store, publisher, and
// hub are optional: endpoints that need a missing dependency respond 503.
type Handler struct {
	engine recommend.EngineConfig
	wagers store.WagerStore
	cache  *pool.Cache
	pub    Publisher
	hub    *hub.Hub
	log    zerolog.Logger
	ctx    context.Context
}

// NewHandler creates a new handler. ctx outlives individual requests and
// bounds the websocket pumps.
func NewHandler(ctx context.Context, engine recommend.EngineConfig, wagers store.WagerStore, cache *pool.Cache, pub Publisher, h *hub.Hub, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		wagers: wagers,
		cache:  cache,
		pub:    pub,
		hub:    h,
		log:    log.With().Str("component", "handlers").Logger(),
		ctx:    ctx,
	}
}

// Routes registers every endpoint on a router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/metrics", h.HandleMetrics)
	r.Post("/api/v1/performance", h.HandlePerformance)
	r.Get("/api/v1/users/{userID}/performance", h.HandleUserPerformance)
	r.Post("/api/v1/parlay/score", h.HandleScoreParlay)
	r.Post("/api/v1/parlay/optimize", h.HandleOptimize)
	r.Post("/api/v1/stake", h.HandleStake)
	r.Get("/ws", h.HandleWebSocket)
}

// HandleHealth returns service health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"service":   "risk-engine",
		"timestamp": time.Now().UTC(),
	}
	if h.cache != nil {
		health["pool_size"] = h.cache.Size()
	}
	if h.hub != nil {
		health["connected_clients"] = h.hub.GetClientCount()
	}
	respondJSON(w, http.StatusOK, health)
}

// HandleMetrics returns hub metrics
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "websocket hub not configured")
		return
	}
	respondJSON(w, http.StatusOK, h.hub.Metrics())
}

// PerformanceRequest is the body of POST /api/v1/performance.
type PerformanceRequest struct {
	Wagers    []models.Wager    `json:"wagers"`
	SegmentBy models.SegmentKey `json:"segment_by,omitempty"`
	Bankroll  *float64          `json:"bankroll,omitempty"`
}

// HandlePerformance computes performance metrics over wagers supplied
// inline in the request body.
func (h *Handler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	var req PerformanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if req.SegmentBy != "" && !req.SegmentBy.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown segment key %q", req.SegmentBy))
		return
	}

	cfg := h.engine
	if req.Bankroll != nil {
		cfg.Analytics.Bankroll = req.Bankroll
	}

	report, err := recommend.PerformanceReport(req.Wagers, req.SegmentBy, "", cfg)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// HandleUserPerformance computes performance metrics over wagers loaded
// from the ledger store.
func (h *Handler) HandleUserPerformance(w http.ResponseWriter, r *http.Request) {
	if h.wagers == nil {
		respondError(w, http.StatusServiceUnavailable, "wager store not configured")
		return
	}

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user id required")
		return
	}

	segmentBy := models.SegmentKey(r.URL.Query().Get("segment_by"))
	if segmentBy != "" && !segmentBy.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown segment key %q", segmentBy))
		return
	}

	filters := store.WagerFilters{
		UserID: userID,
		Sport:  r.URL.Query().Get("sport"),
		Market: r.URL.Query().Get("market"),
		Book:   r.URL.Query().Get("book"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		filters.Limit = limit
	}
	if v := r.URL.Query().Get("settled_only"); v == "true" || v == "1" {
		filters.SettledOnly = true
	}

	wagers, err := h.wagers.ListWagers(r.Context(), filters)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("list wagers")
		respondError(w, http.StatusInternalServerError, "failed to load wagers")
		return
	}

	report, err := recommend.PerformanceReport(wagers, segmentBy, userID, h.engine)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// ScoreParlayRequest is the body of POST /api/v1/parlay/score.
type ScoreParlayRequest struct {
	Legs []models.Leg `json:"legs"`
}

// HandleScoreParlay scores a parlay without staking or optimizing it.
func (h *Handler) HandleScoreParlay(w http.ResponseWriter, r *http.Request) {
	var req ScoreParlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	eval, err := risk.ScoreParlay(req.Legs, h.engine.Correlation, h.engine.Risk)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, eval)
}

// StakeRequest is the body of POST /api/v1/stake.
type StakeRequest struct {
	WinProbability float64  `json:"win_probability"`
	OddsDecimal    float64  `json:"odds_decimal"`
	Conservatism   *float64 `json:"conservatism,omitempty"`
	BankrollCap    *float64 `json:"bankroll_cap,omitempty"`
	Bankroll       *float64 `json:"bankroll,omitempty"`
}

// StakeResponse carries the recommended fraction and, when a bankroll
// was supplied, the currency amount.
type StakeResponse struct {
	StakeFraction float64  `json:"stake_fraction"`
	StakeAmount   *float64 `json:"stake_amount,omitempty"`
}

// HandleStake sizes a single wager with fractional Kelly.
func (h *Handler) HandleStake(w http.ResponseWriter, r *http.Request) {
	var req StakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	cfg := h.engine.Kelly
	if req.Conservatism != nil {
		cfg.Conservatism = *req.Conservatism
	}
	if req.BankrollCap != nil {
		cfg.BankrollCap = *req.BankrollCap
	}

	fraction, err := kelly.RecommendStake(req.WinProbability, req.OddsDecimal, cfg)
	if err != nil {
		// Every input to the calculator came from the request body.
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := StakeResponse{StakeFraction: fraction}
	if req.Bankroll != nil && *req.Bankroll > 0 {
		amount := math.Round(fraction**req.Bankroll*100) / 100
		resp.StakeAmount = &amount
	}

	respondJSON(w, http.StatusOK, resp)
}

// OptimizeRequest is the body of POST /api/v1/parlay/optimize. An inline
// pool wins over the cached candidate pool; pool_sport and pool_game_ids
// narrow the cached pool when no inline pool is given.
type OptimizeRequest struct {
	Legs         []models.Leg    `json:"legs"`
	Strategy     models.Strategy `json:"strategy"`
	Pool         []models.Leg    `json:"pool,omitempty"`
	PoolSport    models.Sport    `json:"pool_sport,omitempty"`
	PoolGameIDs  []string        `json:"pool_game_ids,omitempty"`
	Bankroll     *float64        `json:"bankroll,omitempty"`
	BankrollCap  *float64        `json:"bankroll_cap,omitempty"`
	Conservatism *float64        `json:"conservatism,omitempty"`
}

// HandleOptimize scores, optimizes, and sizes a parlay, then publishes
// the recommendation and broadcasts it to websocket subscribers. Publish
// and broadcast failures are logged, never surfaced: the caller still
// gets the recommendation.
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if req.Strategy == "" {
		respondError(w, http.StatusBadRequest, "strategy required")
		return
	}
	if !req.Strategy.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown strategy %q", req.Strategy))
		return
	}

	candidates := h.resolvePool(req)

	prefs := recommend.Preferences{
		Bankroll:     req.Bankroll,
		BankrollCap:  req.BankrollCap,
		Conservatism: req.Conservatism,
		Strategy:     req.Strategy,
	}

	rec, err := recommend.ParlayRecommendation(req.Legs, candidates, prefs, h.engine)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	if h.pub != nil {
		if err := h.pub.Publish(r.Context(), rec); err != nil {
			h.log.Error().Err(err).Str("recommendation_id", rec.RecommendationID).Msg("publish recommendation")
		}
	}
	if h.hub != nil {
		h.hub.Broadcast(hub.NewUpdate(rec))
	}

	respondJSON(w, http.StatusOK, rec)
}

// resolvePool picks the candidate pool for an optimize request.
func (h *Handler) resolvePool(req OptimizeRequest) []models.Leg {
	if len(req.Pool) > 0 {
		return req.Pool
	}
	if h.cache == nil {
		return nil
	}

	var candidates []models.Leg
	if req.PoolSport != "" {
		candidates = h.cache.FreshBySport(req.PoolSport)
	} else {
		candidates = h.cache.Fresh()
	}

	if len(req.PoolGameIDs) == 0 {
		return candidates
	}

	wanted := make(map[string]struct{}, len(req.PoolGameIDs))
	for _, id := range req.PoolGameIDs {
		wanted[id] = struct{}{}
	}
	filtered := candidates[:0]
	for _, leg := range candidates {
		if _, ok := wanted[leg.GameID]; ok {
			filtered = append(filtered, leg)
		}
	}
	return filtered
}

// HandleWebSocket upgrades HTTP connections to WebSocket
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "websocket hub not configured")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	clientID := uuid.NewString()
	c := hub.NewClient(clientID, conn, h.hub, h.log)
	h.hub.Register(c)

	// Use the handler context, not the request context: the pumps must
	// outlive the upgrade request.
	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)

	h.log.Info().Str("client", clientID).Msg("websocket connection established")
}

// statusForError maps engine errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInvalidWager),
		errors.Is(err, models.ErrInvalidLeg),
		errors.Is(err, models.ErrDuplicateLeg):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
