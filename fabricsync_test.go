package fabricsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadeworks/fabricsync/pkg/catalog"
	"github.com/shadeworks/fabricsync/pkg/reconciler"
	"github.com/shadeworks/fabricsync/pkg/sources"
)

func testProvider() *sources.Memory {
	return &sources.Memory{
		Supply: []catalog.SupplyVariant{
			{Category: "Roller Fabrics", Field1: "Sanctuary", Field2: "Blockout", Field3: "Pearl", ExternalRef: "SAN-BO-PRL", RawPrice: "14.50"},
			{Category: "Roller Fabrics", Field1: "Vibe", Field2: "Blockout", Field3: "Dune", ExternalRef: "VIB-BO-DUN", RawPrice: "12.00"},
		},
		Targets: []catalog.TargetRecord{
			{GroupID: "ROLL", Identifier: "ROLL10000", Field1: "Vanished", Field2: "Blockout", Field3: "Slate", ExternalRef: "V-1", Active: true},
		},
	}
}

func testRuleGroups(t *testing.T) *catalog.Groups {
	t.Helper()
	markup := decimal.RequireFromString("2.0")
	groups, err := catalog.NewGroups([]catalog.GroupConfig{
		{
			ID:                "ROLL",
			DescriptionPrefix: "Roller",
			Category:          "Roller Fabrics",
			PricingMode:       catalog.PricingDerived,
			PriceUnit:         catalog.PriceUnitArea,
			DiscountRef:       "RB",
			MarkupOverride:    &markup,
		},
	}, nil, nil)
	require.NoError(t, err)
	return groups
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
}

func TestNew_RequiresProviderAndGroups(t *testing.T) {
	_, err := New()
	require.Error(t, err)

	_, err = New(WithProvider(testProvider()))
	require.Error(t, err)

	_, err = New(WithGroups(testRuleGroups(t)))
	require.Error(t, err)

	c, err := New(WithProvider(testProvider()), WithGroups(testRuleGroups(t)))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Groups().Len())
}

func TestSync(t *testing.T) {
	c, err := New(
		WithProvider(testProvider()),
		WithGroups(testRuleGroups(t)),
		WithEngineOptions(reconciler.WithClock(fixedClock)),
	)
	require.NoError(t, err)

	result, err := c.Sync(context.Background())
	require.NoError(t, err)

	counts := result.GroupCounts("ROLL")
	assert.Equal(t, 2, counts.Adds)
	assert.Equal(t, 1, counts.Deprecations)
	assert.Equal(t, 2, counts.Pricing)
}

func TestSync_FiresHooks(t *testing.T) {
	c, err := New(
		WithProvider(testProvider()),
		WithGroups(testRuleGroups(t)),
		WithEngineOptions(reconciler.WithClock(fixedClock)),
	)
	require.NoError(t, err)

	var added, deprecated []string
	pricing := 0
	c.OnAdd(func(row reconciler.ChangeRow) { added = append(added, row.Identifier) })
	c.OnDeprecate(func(row reconciler.ChangeRow) { deprecated = append(deprecated, row.Identifier) })
	c.OnPricing(func(reconciler.PricingChangeRow) { pricing++ })

	_, err = c.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"ROLL10001", "ROLL10002"}, added)
	assert.Equal(t, []string{"ROLL10000"}, deprecated)
	assert.Equal(t, 2, pricing)
}

func TestNew_WithRuleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
groups:
  - id: ROLL
    description_prefix: Roller
    category: Roller Fabrics
    discount_ref: RB
    markup: "2.0"
`), 0o644))

	c, err := New(WithProvider(testProvider()), WithRuleFile(path))
	require.NoError(t, err)

	result, err := c.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.GroupCounts("ROLL").Adds)
}
