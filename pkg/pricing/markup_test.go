package pricing

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadeworks/fabricsync/pkg/catalog"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func record(id string, active bool) catalog.TargetRecord {
	return catalog.TargetRecord{
		GroupID:    "ROLL",
		Identifier: id,
		Active:     active,
	}
}

func price(id, sell, cost string) catalog.PricingRecord {
	return catalog.PricingRecord{
		Identifier:    id,
		DateEffective: utc.New(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		SellAmount:    dec(sell),
		CostAmount:    dec(cost),
	}
}

func TestResolveMarkupOverride(t *testing.T) {
	cfg := catalog.GroupConfig{ID: "ROLL", MarkupOverride: decPtr("2.5")}
	records := []catalog.TargetRecord{record("ROLL10000", true)}
	prices := catalog.PricingIndex{"ROLL10000": price("ROLL10000", "60.00", "20.00")}

	decision := ResolveMarkup(cfg, records, prices, DefaultMarkup)

	assert.Equal(t, MarkupOverride, decision.Source)
	assert.True(t, decision.Markup.Equal(dec("2.5")))
	// Historical context is still reported alongside the override.
	require.NotNil(t, decision.HistoricalAvg)
	assert.True(t, decision.HistoricalAvg.Equal(dec("3")))
}

func TestResolveMarkupCalculated(t *testing.T) {
	cfg := catalog.GroupConfig{ID: "ROLL"}
	records := []catalog.TargetRecord{
		record("ROLL10000", true), // markup 2
		record("ROLL10001", true), // markup 4
		record("ROLL10002", false), // inactive, ignored (markup 10)
		record("ROLL10003", true), // zero cost, ignored
		record("ROLL10004", true), // no pricing at all, ignored
	}
	prices := catalog.PricingIndex{
		"ROLL10000": price("ROLL10000", "40.00", "20.00"),
		"ROLL10001": price("ROLL10001", "80.00", "20.00"),
		"ROLL10002": price("ROLL10002", "200.00", "20.00"),
		"ROLL10003": price("ROLL10003", "40.00", "0.00"),
	}

	decision := ResolveMarkup(cfg, records, prices, DefaultMarkup)

	assert.Equal(t, MarkupCalculated, decision.Source)
	assert.True(t, decision.Markup.Equal(dec("3")), "got %s", decision.Markup)
}

func TestResolveMarkupDefault(t *testing.T) {
	cfg := catalog.GroupConfig{ID: "ROLL"}

	decision := ResolveMarkup(cfg, nil, catalog.PricingIndex{}, DefaultMarkup)

	assert.Equal(t, MarkupDefault, decision.Source)
	assert.True(t, decision.Markup.Equal(dec("2")))
	assert.Nil(t, decision.HistoricalAvg)
}
