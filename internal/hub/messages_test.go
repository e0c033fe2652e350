package hub_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/hub"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/recommend"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

func routedLeg(gameID string, sport models.Sport) models.Leg {
	return models.Leg{
		GameID:         gameID,
		Sport:          sport,
		Market:         models.MarketH2H,
		Side:           models.SideHome,
		OddsDecimal:    1.80,
		WinProbability: 0.55,
	}
}

func TestNewUpdateDerivesSports(t *testing.T) {
	card, err := models.NewParlayCard([]models.Leg{
		routedLeg("nba-g1", models.SportNBA),
		routedLeg("nba-g2", models.SportNBA),
		routedLeg("nfl-g1", models.SportNFL),
	})
	require.NoError(t, err)

	rec := recommend.Recommendation{
		RecommendationID: "rec-1",
		Card:             card,
		Tier:             models.TierGoodPlay,
	}

	update := hub.NewUpdate(rec)

	// Unique sports in leg order.
	assert.Equal(t, []string{"basketball_nba", "americanfootball_nfl"}, update.Sports)
	assert.Equal(t, models.TierGoodPlay, update.Tier)
	assert.Equal(t, "rec-1", update.Recommendation.RecommendationID)
}

func TestSubscriptionFilterMatches(t *testing.T) {
	update := hub.Update{
		Sports: []string{"basketball_nba", "americanfootball_nfl"},
		Tier:   models.TierGoodPlay,
	}

	tests := []struct {
		name   string
		filter hub.SubscriptionFilter
		want   bool
	}{
		{
			name:   "empty filter matches everything",
			filter: hub.SubscriptionFilter{},
			want:   true,
		},
		{
			name:   "sport overlap",
			filter: hub.SubscriptionFilter{Sports: []string{"basketball_nba"}},
			want:   true,
		},
		{
			name:   "no sport overlap",
			filter: hub.SubscriptionFilter{Sports: []string{"baseball_mlb"}},
			want:   false,
		},
		{
			name:   "tier match",
			filter: hub.SubscriptionFilter{Tiers: []string{"good_play"}},
			want:   true,
		},
		{
			name:   "tier mismatch",
			filter: hub.SubscriptionFilter{Tiers: []string{"strong_play"}},
			want:   false,
		},
		{
			name: "sport and tier must both match",
			filter: hub.SubscriptionFilter{
				Sports: []string{"americanfootball_nfl"},
				Tiers:  []string{"strong_play"},
			},
			want: false,
		},
		{
			name: "sport and tier both matching",
			filter: hub.SubscriptionFilter{
				Sports: []string{"americanfootball_nfl"},
				Tiers:  []string{"good_play", "strong_play"},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(update); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
