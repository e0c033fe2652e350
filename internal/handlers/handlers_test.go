package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/handlers"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/pool"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/recommend"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/store"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

// --- fakes ---

type fakeStore struct {
	wagers  []models.Wager
	filters store.WagerFilters
	err     error
}

func (f *fakeStore) ListWagers(_ context.Context, filters store.WagerFilters) ([]models.Wager, error) {
	f.filters = filters
	return f.wagers, f.err
}

func (f *fakeStore) Ping(context.Context) error { return nil }
func (f *fakeStore) Close() error               { return nil }

type fakePublisher struct {
	published []recommend.Recommendation
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, rec recommend.Recommendation) error {
	f.published = append(f.published, rec)
	return f.err
}

// --- fixtures ---

func settledWager(id string, outcome models.Outcome, stake, odds float64, book string, day int) models.Wager {
	placed := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, day)
	settled := placed.Add(6 * time.Hour)
	w := models.Wager{
		ID:          id,
		Book:        book,
		Sport:       models.SportNBA,
		Market:      models.MarketH2H,
		Stake:       stake,
		OddsDecimal: odds,
		Outcome:     outcome,
		PlacedAt:    placed,
		SettledAt:   &settled,
	}
	payout, err := w.SettledPayout()
	if err != nil {
		panic(err)
	}
	w.Payout = &payout
	return w
}

func scoringLeg(gameID string, sport models.Sport, p, odds float64) models.Leg {
	return models.Leg{
		GameID:         gameID,
		Sport:          sport,
		Market:         models.MarketH2H,
		Side:           models.SideHome,
		OddsDecimal:    odds,
		WinProbability: p,
		VarianceHint:   0.5,
	}
}

func newTestRouter(t *testing.T, wagers store.WagerStore, cache *pool.Cache, pub handlers.Publisher) http.Handler {
	t.Helper()
	h := handlers.NewHandler(context.Background(), recommend.DefaultEngineConfig(), wagers, cache, pub, nil, zerolog.Nop())
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(t, nil, pool.NewCache(time.Minute), nil)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "risk-engine", body["service"])
	assert.Equal(t, float64(0), body["pool_size"])
}

func TestHandlePerformance(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	req := handlers.PerformanceRequest{
		Wagers: []models.Wager{
			settledWager("w-1", models.OutcomeWon, 100, 2.0, "draftkings", 0),
			settledWager("w-2", models.OutcomeLost, 100, 1.9, "draftkings", 1),
		},
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/performance", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report recommend.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.NotNil(t, report.Snapshot)
	assert.NotEmpty(t, report.ReportID)

	// +100 then -100 on 200 staked.
	require.NotNil(t, report.Snapshot.ROI)
	assert.InDelta(t, 0.0, *report.Snapshot.ROI, 1e-9)
	require.NotNil(t, report.Snapshot.WinRate)
	assert.InDelta(t, 0.5, *report.Snapshot.WinRate, 1e-9)
}

func TestHandlePerformanceSegmented(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	req := handlers.PerformanceRequest{
		Wagers: []models.Wager{
			settledWager("w-1", models.OutcomeWon, 100, 2.0, "draftkings", 0),
			settledWager("w-2", models.OutcomeLost, 50, 1.9, "fanduel", 1),
		},
		SegmentBy: models.SegmentByBook,
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/performance", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report recommend.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.NotNil(t, report.Segmented)
	assert.Len(t, report.Segmented.Segments, 2)
	assert.Contains(t, report.Segmented.Segments, "draftkings")
	assert.Contains(t, report.Segmented.Segments, "fanduel")
}

func TestHandlePerformanceInsufficientData(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	pending := models.Wager{
		ID:          "w-1",
		Book:        "draftkings",
		Sport:       models.SportNBA,
		Market:      models.MarketH2H,
		Stake:       100,
		OddsDecimal: 2.0,
		Outcome:     models.OutcomePending,
		PlacedAt:    time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC),
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/performance", handlers.PerformanceRequest{
		Wagers: []models.Wager{pending},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlePerformanceBadInput(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/performance", bytes.NewBufferString("{nope"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown segment key", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/performance", handlers.PerformanceRequest{
			Wagers:    []models.Wager{settledWager("w-1", models.OutcomeWon, 100, 2.0, "draftkings", 0)},
			SegmentBy: models.SegmentKey("bookie"),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid wager", func(t *testing.T) {
		bad := settledWager("w-1", models.OutcomeWon, 100, 2.0, "draftkings", 0)
		bad.Stake = 0
		rec := doJSON(t, router, http.MethodPost, "/api/v1/performance", handlers.PerformanceRequest{
			Wagers: []models.Wager{bad},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleUserPerformance(t *testing.T) {
	fs := &fakeStore{
		wagers: []models.Wager{
			settledWager("w-1", models.OutcomeWon, 100, 2.0, "draftkings", 0),
			settledWager("w-2", models.OutcomeLost, 100, 1.9, "draftkings", 1),
		},
	}
	router := newTestRouter(t, fs, nil, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/u-42/performance?segment_by=sport&limit=50&settled_only=true", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "u-42", fs.filters.UserID)
	assert.Equal(t, 50, fs.filters.Limit)
	assert.True(t, fs.filters.SettledOnly)

	var report recommend.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "u-42", report.UserID)
	require.NotNil(t, report.Segmented)
	assert.Contains(t, report.Segmented.Segments, "basketball_nba")
}

func TestHandleUserPerformanceNoStore(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/u-42/performance", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleUserPerformanceStoreError(t *testing.T) {
	fs := &fakeStore{err: errors.New("connection refused")}
	router := newTestRouter(t, fs, nil, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/u-42/performance", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleScoreParlay(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	req := handlers.ScoreParlayRequest{
		Legs: []models.Leg{
			scoringLeg("nba-g1", models.SportNBA, 0.60, 1.80),
			scoringLeg("nba-g2", models.SportNBA, 0.52, 1.95),
		},
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/parlay/score", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var eval struct {
		CorrelationMatrix   [][]float64 `json:"correlation_matrix"`
		AdjustedProbability float64     `json:"correlation_adjusted_probability"`
		RiskScore           float64     `json:"risk_score"`
		Tier                string      `json:"tier"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))

	// Different games, no shared entities: independent legs.
	require.Len(t, eval.CorrelationMatrix, 2)
	assert.Equal(t, 1.0, eval.CorrelationMatrix[0][0])
	assert.Equal(t, 0.0, eval.CorrelationMatrix[0][1])
	assert.InDelta(t, 0.60*0.52, eval.AdjustedProbability, 1e-9)
	assert.Greater(t, eval.RiskScore, 0.0)
	assert.NotEmpty(t, eval.Tier)
}

func TestHandleScoreParlayRejectsDuplicates(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	leg := scoringLeg("nba-g1", models.SportNBA, 0.60, 1.80)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/parlay/score", handlers.ScoreParlayRequest{
		Legs: []models.Leg{leg, leg},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleStake(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/stake", handlers.StakeRequest{
		WinProbability: 0.55,
		OddsDecimal:    2.0,
		Bankroll:       models.Float64Ptr(1000),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.StakeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Full Kelly 0.10, half-Kelly 0.05, at the default cap.
	assert.InDelta(t, 0.05, resp.StakeFraction, 1e-9)
	require.NotNil(t, resp.StakeAmount)
	assert.InDelta(t, 50.0, *resp.StakeAmount, 1e-9)
}

func TestHandleStakeOverrides(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/stake", handlers.StakeRequest{
		WinProbability: 0.55,
		OddsDecimal:    2.0,
		Conservatism:   models.Float64Ptr(1.0),
		BankrollCap:    models.Float64Ptr(0.5),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.StakeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 0.10, resp.StakeFraction, 1e-9)
	assert.Nil(t, resp.StakeAmount)
}

func TestHandleStakeInvalid(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	t.Run("probability out of range", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/stake", handlers.StakeRequest{
			WinProbability: 1.5,
			OddsDecimal:    2.0,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("zero conservatism rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/stake", handlers.StakeRequest{
			WinProbability: 0.55,
			OddsDecimal:    2.0,
			Conservatism:   models.Float64Ptr(0),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleOptimize(t *testing.T) {
	pub := &fakePublisher{}
	router := newTestRouter(t, nil, nil, pub)

	req := handlers.OptimizeRequest{
		Legs: []models.Leg{
			scoringLeg("nba-g1", models.SportNBA, 0.50, 2.2),
			scoringLeg("nba-g2", models.SportNBA, 0.40, 2.2),
		},
		Strategy: models.StrategyValue,
		Pool: []models.Leg{
			scoringLeg("nba-g3", models.SportNBA, 0.55, 2.2),
		},
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/parlay/optimize", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp recommend.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.NotNil(t, resp.Optimization)
	assert.Equal(t, models.OptimizationImproved, resp.Optimization.Status)

	// The weak 0.40 leg was swapped for the 0.55 candidate.
	assert.True(t, resp.Card.HasLeg(req.Pool[0]), "optimized card should contain the pool candidate")
	assert.Greater(t, resp.StakeFraction, 0.0)

	// The recommendation also went to the stream.
	require.Len(t, pub.published, 1)
	assert.Equal(t, resp.RecommendationID, pub.published[0].RecommendationID)
}

func TestHandleOptimizeFromCache(t *testing.T) {
	cache := pool.NewCache(5 * time.Minute)
	cache.Put(scoringLeg("nba-g3", models.SportNBA, 0.55, 2.2))
	cache.Put(scoringLeg("nfl-g9", models.SportNFL, 0.90, 2.2))

	router := newTestRouter(t, nil, cache, nil)

	req := handlers.OptimizeRequest{
		Legs: []models.Leg{
			scoringLeg("nba-g1", models.SportNBA, 0.50, 2.2),
			scoringLeg("nba-g2", models.SportNBA, 0.40, 2.2),
		},
		Strategy:  models.StrategyValue,
		PoolSport: models.SportNBA,
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/parlay/optimize", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp recommend.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.NotNil(t, resp.Optimization)
	assert.Equal(t, models.OptimizationImproved, resp.Optimization.Status)

	// Only the NBA candidate was eligible; the stronger NFL line was
	// filtered out by pool_sport.
	found := false
	for _, leg := range resp.Card.Legs {
		require.NotEqual(t, "nfl-g9", leg.GameID)
		if leg.GameID == "nba-g3" {
			found = true
		}
	}
	assert.True(t, found, "optimized card should contain the cached NBA candidate")
}

func TestHandleOptimizeBadRequest(t *testing.T) {
	router := newTestRouter(t, nil, nil, nil)

	legs := []models.Leg{scoringLeg("nba-g1", models.SportNBA, 0.50, 2.2)}

	t.Run("missing strategy", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/parlay/optimize", handlers.OptimizeRequest{
			Legs: legs,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/parlay/optimize", handlers.OptimizeRequest{
			Legs:     legs,
			Strategy: models.Strategy("martingale"),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty legs", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/parlay/optimize", handlers.OptimizeRequest{
			Strategy: models.StrategyValue,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleOptimizePublishFailureStillResponds(t *testing.T) {
	pub := &fakePublisher{err: errors.New("stream down")}
	router := newTestRouter(t, nil, nil, pub)

	req := handlers.OptimizeRequest{
		Legs:     []models.Leg{scoringLeg("nba-g1", models.SportNBA, 0.60, 2.2)},
		Strategy: models.StrategyValue,
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/parlay/optimize", req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
