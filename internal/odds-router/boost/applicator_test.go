package boost

import (
	"errors"
	"reflect"
	"testing"

	"github.com/radieske/odds-feed-router/pkg/contracts/feed"
)

func boostableMessage() *feed.OddsChange {
	return &feed.OddsChange{
		EventID:   "sr:match:12345",
		Product:   feed.ProductPrematch,
		Timestamp: 1724680000000,
		Odds: &feed.Odds{Markets: []feed.Market{
			{
				ID:         10,
				Specifiers: "total=2.5",
				Status:     feed.MarketStatusActive,
				Outcomes: []feed.Outcome{
					{ID: "12", Odds: 2.0, Active: true},
					{ID: "13", Odds: 1.8, Active: true},
				},
			},
			{
				ID:     1,
				Status: feed.MarketStatusActive,
				Outcomes: []feed.Outcome{
					{ID: "1", Odds: 2.4, Active: true},
				},
			},
		}},
	}
}

func TestApplyBoostsOnlyMatchedMarkets(t *testing.T) {
	applicator := NewApplicator(NewRegistry())
	msg := boostableMessage()
	pristine := boostableMessage()

	boosts := map[string]Config{
		"10|total=2.5": {ProfileID: 7, MarketID: 10, MarketSpecifier: "total=2.5", Strategy: StrategyAdditivePercent, Percent: 10},
	}

	out, err := applicator.Apply(msg, boosts)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if out.Odds.Markets[0].Outcomes[0].Odds != 2.1 {
		t.Fatalf("boosted outcome = %v, want 2.1", out.Odds.Markets[0].Outcomes[0].Odds)
	}
	if out.Odds.Markets[0].Outcomes[1].Odds != 1.88 {
		t.Fatalf("boosted outcome = %v, want 1.88", out.Odds.Markets[0].Outcomes[1].Odds)
	}
	if out.Odds.Markets[1].Outcomes[0].Odds != 2.4 {
		t.Fatalf("unboosted market changed: %v", out.Odds.Markets[1].Outcomes[0].Odds)
	}
	if out.Odds.Markets[0].Status != feed.MarketStatusActive {
		t.Fatal("market status should survive the boost")
	}

	// a mensagem de entrada não pode mudar
	if !reflect.DeepEqual(msg, pristine) {
		t.Fatalf("Apply mutated the input message: %+v", msg)
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	applicator := NewApplicator(NewRegistry())
	msg := boostableMessage()
	boosts := map[string]Config{
		"10|total=2.5": {MarketID: 10, MarketSpecifier: "total=2.5", Strategy: StrategyMultiplicativePercent, Percent: 15},
	}

	first, err := applicator.Apply(msg, boosts)
	if err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	second, err := applicator.Apply(msg, boosts)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same input produced different outputs")
	}
}

func TestApplyMatchesNormalizedSpecifiers(t *testing.T) {
	applicator := NewApplicator(NewRegistry())
	msg := &feed.OddsChange{
		EventID: "sr:match:1",
		Product: feed.ProductPrematch,
		Odds: &feed.Odds{Markets: []feed.Market{{
			ID:         14,
			Specifiers: "total=2.5|hcp=-0.5",
			Outcomes:   []feed.Outcome{{ID: "1", Odds: 2.0, Active: true}},
		}}},
	}

	cfg := Config{MarketID: 14, MarketSpecifier: "hcp=-0.5|total=2.5", Strategy: StrategyAdditivePercent, Percent: 10}
	out, err := applicator.Apply(msg, MapByKey([]Config{cfg}))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Odds.Markets[0].Outcomes[0].Odds != 2.1 {
		t.Fatalf("specifier order should not matter, got %v", out.Odds.Markets[0].Outcomes[0].Odds)
	}
}

func TestApplyUnknownStrategyFails(t *testing.T) {
	applicator := NewApplicator(NewRegistry())
	msg := boostableMessage()
	boosts := map[string]Config{
		"10|total=2.5": {MarketID: 10, MarketSpecifier: "total=2.5", Strategy: "LADDER", Percent: 10},
	}

	out, err := applicator.Apply(msg, boosts)
	if err == nil {
		t.Fatalf("expected error, got %+v", out)
	}
	var unknown *UnknownStrategyError
	if !errors.As(err, &unknown) || unknown.Name != "LADDER" {
		t.Fatalf("error = %v, want UnknownStrategyError for LADDER", err)
	}
}

func TestApplyWithoutBoostsReturnsClone(t *testing.T) {
	applicator := NewApplicator(NewRegistry())
	msg := boostableMessage()

	out, err := applicator.Apply(msg, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out == msg {
		t.Fatal("Apply should never return the input pointer")
	}
	if !reflect.DeepEqual(out.Odds, msg.Odds) {
		t.Fatal("clone should carry the same odds")
	}

	out.Odds.Markets[0].Outcomes[0].Odds = 99
	if msg.Odds.Markets[0].Outcomes[0].Odds == 99 {
		t.Fatal("clone shares backing arrays with the input")
	}
}

func TestMapByKeyFirstSeenWins(t *testing.T) {
	cfgs := []Config{
		{ProfileID: 1, MarketID: 10, MarketSpecifier: "total=2.5", Strategy: StrategyAdditivePercent, Percent: 10},
		{ProfileID: 1, MarketID: 10, MarketSpecifier: "total=2.5", Strategy: StrategyMultiplicativePercent, Percent: 50},
		{ProfileID: 1, MarketID: 1, Strategy: StrategyAdditivePercent, Percent: 5},
	}

	byKey := MapByKey(cfgs)
	if len(byKey) != 2 {
		t.Fatalf("len = %d, want 2", len(byKey))
	}
	if got := byKey["10|total=2.5"]; got.Percent != 10 || got.Strategy != StrategyAdditivePercent {
		t.Fatalf("first config should win, got %+v", got)
	}
}

func TestGroupByProfile(t *testing.T) {
	cfgs := []Config{
		{ProfileID: 1, MarketID: 10, MarketSpecifier: "total=2.5", Percent: 10},
		{ProfileID: 1, MarketID: 10, MarketSpecifier: "total=2.5", Percent: 99},
		{ProfileID: 2, MarketID: 10, MarketSpecifier: "total=2.5", Percent: 25},
		{ProfileID: 2, MarketID: 1, Percent: 5},
	}

	grouped := GroupByProfile(cfgs)
	if len(grouped) != 2 {
		t.Fatalf("profiles = %d, want 2", len(grouped))
	}
	if got := grouped[1]["10|total=2.5"]; got.Percent != 10 {
		t.Fatalf("profile 1 first-seen should win, got %+v", got)
	}
	if got := grouped[2]["10|total=2.5"]; got.Percent != 25 {
		t.Fatalf("profile 2 = %+v", got)
	}
	if _, ok := grouped[2]["1|"]; !ok {
		t.Fatal("profile 2 missing market 1")
	}
}
