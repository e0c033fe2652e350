package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/recommend"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/report"
	"github.com/Rosewood1985/ai-sports-edge-sub010/internal/store"
	"github.com/Rosewood1985/ai-sports-edge-sub010/pkg/models"
)

func main() {
	ledgerPath := flag.String("ledger", "", "path to a JSON wager ledger")
	dsn := flag.String("db", "", "Postgres DSN (alternative to -ledger)")
	userID := flag.String("user", "", "user id for -db queries")
	segment := flag.String("segment", "", "segment key: sport, market, or book")
	bankroll := flag.Float64("bankroll", 0, "bankroll for drawdown percentage basis")
	limit := flag.Int("limit", 0, "max wagers to load from the store (0 = all)")
	flag.Parse()

	wagers, err := loadWagers(*ledgerPath, *dsn, *userID, *limit)
	if err != nil {
		fatal(err.Error())
	}

	segmentBy := models.SegmentKey(*segment)
	if segmentBy != "" && !segmentBy.Valid() {
		fatal(fmt.Sprintf("unknown segment key %q (want sport, market, or book)", *segment))
	}

	cfg := recommend.DefaultEngineConfig()
	if *bankroll > 0 {
		cfg.Analytics.Bankroll = bankroll
	}

	rep, err := recommend.PerformanceReport(wagers, segmentBy, *userID, cfg)
	if err != nil {
		if !errors.Is(err, models.ErrInsufficientData) {
			fatal(err.Error())
		}
		// Counts still render; the ratio fields stay "--".
		fmt.Fprintln(os.Stderr, "warning: no settled wagers, ratios are undefined")
	}

	report.NewConsole(os.Stdout).PrintReport(rep)
}

// loadWagers reads the ledger from a JSON file or from Postgres.
func loadWagers(ledgerPath, dsn, userID string, limit int) ([]models.Wager, error) {
	switch {
	case ledgerPath != "" && dsn != "":
		return nil, errors.New("use -ledger or -db, not both")

	case ledgerPath != "":
		data, err := os.ReadFile(ledgerPath)
		if err != nil {
			return nil, fmt.Errorf("read ledger: %w", err)
		}
		var wagers []models.Wager
		if err := json.Unmarshal(data, &wagers); err != nil {
			return nil, fmt.Errorf("parse ledger %q: %w", ledgerPath, err)
		}
		return wagers, nil

	case dsn != "":
		if userID == "" {
			return nil, errors.New("-db requires -user")
		}
		client, err := store.NewClient(dsn)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return client.ListWagers(ctx, store.WagerFilters{UserID: userID, Limit: limit})

	default:
		return nil, errors.New("either -ledger or -db is required")
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
	os.Exit(1)
}
