// Package reconciler compares a supplier's catalog of fabric variants against
// the internal target catalog and emits the explainable change set needed to
// bring the target up to date: additions, edits, deprecations, and derived
// pricing. The engine is pure: it reads its inputs, writes nothing, and
// returns the same result for the same inputs.
package reconciler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/fabricsync/pkg/catalog"
	"github.com/shadeworks/fabricsync/pkg/codes"
	"github.com/shadeworks/fabricsync/pkg/errors"
	"github.com/shadeworks/fabricsync/pkg/logging"
	"github.com/shadeworks/fabricsync/pkg/pricing"
)

// priceTolerance is the largest sell/cost movement still treated as unchanged.
// Rounding noise below a cent must not generate pricing rows.
var priceTolerance = decimal.New(1, -2) // 0.01

// baselineDate is the effective date for pricing of newly added variants.
// Backdating keeps new variants priced for any historical order date the
// target store may be asked about.
var baselineDate = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Reconciler runs the compare between supply and target catalogs.
type Reconciler interface {
	// Run reconciles the supply rows against the target rows and returns the
	// change set. Configuration problems abort with a ConfigError; row-local
	// problems become warnings in the result.
	Run(ctx context.Context, supply []catalog.SupplyVariant, targets []catalog.TargetRecord, prices []catalog.PricingRecord) (*Result, error)
}

type reconciler struct {
	groups        *catalog.Groups
	allocator     codes.Allocator
	now           func() time.Time
	defaultMarkup decimal.Decimal
	keep          map[catalog.GroupID]KeepPredicate
}

// New builds a reconciler over the given rule set.
func New(groups *catalog.Groups, opts ...Option) (Reconciler, error) {
	if groups == nil {
		return nil, &errors.ConfigError{Message: "groups rule set is required"}
	}

	r := &reconciler{
		groups:        groups,
		allocator:     codes.NewSequential(),
		now:           time.Now,
		defaultMarkup: pricing.DefaultMarkup,
		keep:          make(map[catalog.GroupID]KeepPredicate),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	for id := range r.keep {
		if _, ok := groups.Config(id); !ok {
			return nil, errors.NewConfigError(id.String(), "keep predicate references unknown group", nil)
		}
	}
	return r, nil
}

// groupState is the per-group working set assembled before the compare.
type groupState struct {
	cfg         catalog.GroupConfig
	supply      map[catalog.Key]catalog.SupplyVariant
	targets     []catalog.TargetRecord
	byKey       map[catalog.Key]catalog.TargetRecord
	identifiers map[string]struct{}
	excluded    exclusions
}

func (r *reconciler) Run(ctx context.Context, supply []catalog.SupplyVariant, targets []catalog.TargetRecord, prices []catalog.PricingRecord) (*Result, error) {
	log := logging.FromContext(ctx)
	result := NewResult()

	states, err := r.bin(ctx, supply, targets, result)
	if err != nil {
		return nil, err
	}

	priceIdx := catalog.IndexPricing(prices)

	for _, id := range r.groups.IDs() {
		st, ok := states[id]
		if !ok {
			continue
		}
		gctx := logging.WithGroup(ctx, id.String())

		var markup pricing.MarkupDecision
		if st.cfg.Priced() {
			markup = pricing.ResolveMarkup(st.cfg, st.targets, priceIdx, r.defaultMarkup)
			result.Markups[id] = markup
			logging.Ctx(gctx).Debug().
				Str("markup", markup.Markup.String()).
				Str("source", string(markup.Source)).
				Msg("resolved group markup")
		}

		r.reconcileGroup(gctx, st, priceIdx, markup, result)
	}

	counts := result.TotalCounts()
	log.Info().
		Int("adds", counts.Adds).
		Int("edits", counts.Edits).
		Int("deprecations", counts.Deprecations).
		Int("pricing", counts.Pricing).
		Int("warnings", len(result.Warnings)).
		Msg("reconciliation complete")

	return result, nil
}

// bin distributes supply rows and target records into per-group working sets.
// A target record naming an unknown group is fatal; deprecating or editing
// against unconfigured rules would corrupt the target catalog.
func (r *reconciler) bin(ctx context.Context, supply []catalog.SupplyVariant, targets []catalog.TargetRecord, result *Result) (map[catalog.GroupID]*groupState, error) {
	log := logging.FromContext(ctx)
	states := make(map[catalog.GroupID]*groupState)

	state := func(id catalog.GroupID) *groupState {
		st, ok := states[id]
		if !ok {
			cfg, _ := r.groups.Config(id)
			st = &groupState{
				cfg:         cfg,
				supply:      make(map[catalog.Key]catalog.SupplyVariant),
				byKey:       make(map[catalog.Key]catalog.TargetRecord),
				identifiers: make(map[string]struct{}),
				excluded:    exclusions{},
			}
			states[id] = st
		}
		return st
	}

	for _, rec := range targets {
		if _, ok := r.groups.Config(rec.GroupID); !ok {
			return nil, errors.NewConfigError(rec.GroupID.String(), "target record references unknown group", nil)
		}
		st := state(rec.GroupID)
		st.targets = append(st.targets, rec)
		st.identifiers[strings.TrimSpace(rec.Identifier)] = struct{}{}

		key := rec.Key()
		if key.IsZero() {
			continue
		}
		// First record wins on duplicate identity, matching the stable load
		// order of the target store.
		if _, dup := st.byKey[key]; !dup {
			st.byKey[key] = rec
		}
	}

	for _, variant := range supply {
		if variant.IsBlank() {
			continue
		}
		ids := r.groups.GroupsForCategory(variant.Category)
		if len(ids) == 0 {
			// An unmapped category means the rule file and the supply feed
			// disagree about what is being synced. Proceeding would silently
			// drop every row of the category.
			log.Error().Str("category", variant.Category).Msg("supply category matches no configured group")
			return nil, &errors.ConfigError{Value: variant.Category, Message: "supply category matches no configured group"}
		}

		key := variant.Key()
		for _, id := range ids {
			st := state(id)
			if !IsEligible(variant.Field2, r.groups.Restrictions()[id]) {
				st.excluded.record(key, strings.TrimSpace(variant.Field2))
				continue
			}
			if _, dup := st.supply[key]; dup {
				result.Warnings = append(result.Warnings, Warning{
					GroupID: id,
					Key:     key,
					Message: "duplicate supply row for identity key, keeping first occurrence",
				})
				continue
			}
			bound := variant
			bound.GroupID = id
			st.supply[key] = bound
		}
	}

	return states, nil
}

func (r *reconciler) reconcileGroup(ctx context.Context, st *groupState, priceIdx catalog.PricingIndex, markup pricing.MarkupDecision, result *Result) {
	id := st.cfg.ID

	supplyKeys := make([]catalog.Key, 0, len(st.supply))
	for key := range st.supply {
		supplyKeys = append(supplyKeys, key)
	}
	sort.Slice(supplyKeys, func(i, j int) bool { return supplyKeys[i] < supplyKeys[j] })

	// Additions first so allocated identifiers land before any edits are
	// reported, matching the order downstream uploads expect.
	for _, key := range supplyKeys {
		variant := st.supply[key]
		if _, exists := st.byKey[key]; exists {
			continue
		}
		r.addVariant(ctx, st, variant, markup, result)
	}

	for _, key := range supplyKeys {
		variant := st.supply[key]
		existing, exists := st.byKey[key]
		if !exists {
			continue
		}
		r.editVariant(ctx, st, variant, existing, priceIdx, markup, result)
	}

	// Deprecations in target order, stable-sorted by identity key.
	ordered := make([]catalog.TargetRecord, len(st.targets))
	copy(ordered, st.targets)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Key() < ordered[j].Key() })

	for _, rec := range ordered {
		key := rec.Key()
		if _, inSupply := st.supply[key]; inSupply {
			continue
		}
		if !rec.Active || rec.IsDeprecated() {
			continue
		}
		if keep, ok := r.keep[id]; ok && keep(rec) {
			logging.Ctx(ctx).Debug().Str("identifier", rec.Identifier).Msg("kept by predicate, skipping deprecation")
			continue
		}

		reason := "Not in supply catalog"
		if excluded, ok := st.excluded.reason(key); ok {
			reason = excluded
		}
		r.deprecateRecord(st, rec, reason, result)
	}
}

// addVariant allocates an identifier and emits the add row, plus derived
// pricing for priced groups. Pricing failures are row-local: the variant is
// still added, it just stays unpriced until the next run.
func (r *reconciler) addVariant(ctx context.Context, st *groupState, variant catalog.SupplyVariant, markup pricing.MarkupDecision, result *Result) {
	id := st.cfg.ID

	priceGrid, costGrid := r.resolveGrids(st, variant)

	identifier := r.allocator.Next(st.identifiers, id.String())
	st.identifiers[identifier] = struct{}{}

	description := catalog.BuildDescription(st.cfg.DescriptionPrefix, variant.Field1, variant.Field2, variant.Field3, st.cfg.TitleCaseDesc)

	row := ChangeRow{
		GroupID:      id,
		Operation:    OperationAdd,
		Identifier:   identifier,
		Description:  description,
		Field1:       variant.Field1,
		Field2:       variant.Field2,
		Field3:       variant.Field3,
		ExternalRef:  strings.TrimSpace(variant.ExternalRef),
		PriceGridRef: priceGrid,
		CostGridRef:  costGrid,
		DiscountRef:  st.cfg.DiscountRef,
		Active:       true,
	}
	result.Changes[id] = append(result.Changes[id], row)
	result.Log = append(result.Log, ChangeLogEntry{
		GroupID:     id,
		Operation:   OperationAdd,
		Identifier:  identifier,
		Description: description,
		Reason:      "New fabric",
	})
	logging.Ctx(ctx).Debug().Str("identifier", identifier).Str("description", description).Msg("new variant")

	if !st.cfg.Priced() {
		return
	}
	derived, err := r.derive(variant, markup)
	if err != nil {
		result.Warnings = append(result.Warnings, Warning{
			GroupID:    id,
			Identifier: identifier,
			Key:        variant.Key(),
			Message:    fmt.Sprintf("pricing skipped for new variant: %v", err),
		})
		return
	}
	result.PricingChanges[id] = append(result.PricingChanges[id], PricingChangeRow{
		GroupID:       id,
		Identifier:    identifier,
		Description:   description,
		DateEffective: utc.New(baselineDate),
		CostAmount:    derived.Cost,
		SellAmount:    derived.Sell,
	})
	result.Log = append(result.Log, ChangeLogEntry{
		GroupID:     id,
		Operation:   OperationPricing,
		Identifier:  identifier,
		Description: description,
		Reason:      fmt.Sprintf("Initial price: Cost %s, Sell %s", derived.Cost.StringFixed(2), derived.Sell.StringFixed(2)),
	})
}

// resolveGrids returns the price and cost grid references for an emitted row.
// Grid-priced groups carry a price category in the raw price field and
// re-resolve it on every add or edit, so stale references on the target record
// are replaced. A category with no grid mapping blanks both refs; some groups
// run without grids.
func (r *reconciler) resolveGrids(st *groupState, variant catalog.SupplyVariant) (priceGrid, costGrid string) {
	priceGrid = st.cfg.PriceGridRef
	costGrid = st.cfg.CostGridRef
	if st.cfg.PricingMode == catalog.PricingGrid {
		if grid, ok := r.groups.Grid(st.cfg.ID, strings.TrimSpace(variant.RawPrice)); ok {
			priceGrid = grid
			costGrid = grid + "C"
		} else {
			priceGrid = ""
			costGrid = ""
		}
	}
	return priceGrid, costGrid
}

// editVariant compares the supply row against its existing target record and
// emits an edit when the supplier code changed or the record is being
// reactivated. Pricing is compared independently of the item edit.
func (r *reconciler) editVariant(ctx context.Context, st *groupState, variant catalog.SupplyVariant, existing catalog.TargetRecord, priceIdx catalog.PricingIndex, markup pricing.MarkupDecision, result *Result) {
	id := st.cfg.ID

	var reasons []string

	oldRef := strings.TrimSpace(existing.ExternalRef)
	newRef := strings.TrimSpace(variant.ExternalRef)
	refChanged := !strings.EqualFold(oldRef, newRef)
	if refChanged {
		reasons = append(reasons, fmt.Sprintf("Supplier code changed: %s → %s", oldRef, newRef))
	}

	// A record that already carries the deprecation sentinel stays active, so
	// only an inactive record without the sentinel counts as a reactivation.
	reactivated := !existing.Active && !existing.IsDeprecated()
	if reactivated {
		reasons = append(reasons, "Reactivated")
	}

	description := catalog.BuildDescription(st.cfg.DescriptionPrefix, variant.Field1, variant.Field2, variant.Field3, st.cfg.TitleCaseDesc)

	if len(reasons) > 0 {
		priceGrid, costGrid := r.resolveGrids(st, variant)
		if st.cfg.PricingMode != catalog.PricingGrid {
			if priceGrid == "" {
				priceGrid = existing.PriceGridRef
			}
			if costGrid == "" {
				costGrid = existing.CostGridRef
			}
		}
		discount := st.cfg.DiscountRef
		if discount == "" {
			discount = existing.DiscountRef
		}
		row := ChangeRow{
			GroupID:      id,
			Operation:    OperationEdit,
			Identifier:   existing.Identifier,
			Description:  description,
			Field1:       variant.Field1,
			Field2:       variant.Field2,
			Field3:       variant.Field3,
			ExternalRef:  newRef,
			PriceGridRef: priceGrid,
			CostGridRef:  costGrid,
			DiscountRef:  discount,
			Active:       true,
			StatusNote:   "",
			RowRef:       existing.RowRef,
		}
		result.Changes[id] = append(result.Changes[id], row)
		result.Log = append(result.Log, ChangeLogEntry{
			GroupID:     id,
			Operation:   OperationEdit,
			Identifier:  existing.Identifier,
			Description: description,
			Reason:      strings.Join(reasons, "; "),
		})
		logging.Ctx(ctx).Debug().Str("identifier", existing.Identifier).Strs("reasons", reasons).Msg("variant edited")
	}

	if !st.cfg.Priced() {
		return
	}

	derived, err := r.derive(variant, markup)
	if err != nil {
		result.Warnings = append(result.Warnings, Warning{
			GroupID:    id,
			Identifier: existing.Identifier,
			Key:        variant.Key(),
			Message:    fmt.Sprintf("pricing skipped: %v", err),
		})
		return
	}

	current, hasCurrent := priceIdx[existing.Identifier]
	oldCost := decimal.Zero
	oldSell := decimal.Zero
	if hasCurrent {
		oldCost = current.CostAmount
		oldSell = current.SellAmount
	}

	costMoved := derived.Cost.Sub(oldCost).Abs().GreaterThan(priceTolerance)
	sellMoved := derived.Sell.Sub(oldSell).Abs().GreaterThan(priceTolerance)
	if hasCurrent && !costMoved && !sellMoved {
		return
	}

	// New prices take effect tomorrow so today's in-flight orders keep the
	// price they were quoted at.
	effective := r.tomorrow()
	result.PricingChanges[id] = append(result.PricingChanges[id], PricingChangeRow{
		GroupID:       id,
		Identifier:    existing.Identifier,
		Description:   description,
		DateEffective: utc.New(effective),
		CostAmount:    derived.Cost,
		SellAmount:    derived.Sell,
	})
	result.Log = append(result.Log, ChangeLogEntry{
		GroupID:     id,
		Operation:   OperationPricing,
		Identifier:  existing.Identifier,
		Description: description,
		Reason: fmt.Sprintf("Price changed: Cost %s → %s, Sell %s → %s",
			oldCost.StringFixed(2), derived.Cost.StringFixed(2),
			oldSell.StringFixed(2), derived.Sell.StringFixed(2)),
	})
}

func (r *reconciler) deprecateRecord(st *groupState, rec catalog.TargetRecord, reason string, result *Result) {
	id := st.cfg.ID

	row := ChangeRow{
		GroupID:      id,
		Operation:    OperationDeprecate,
		Identifier:   rec.Identifier,
		Description:  catalog.BuildDescription(st.cfg.DescriptionPrefix, rec.Field1, rec.Field2, rec.Field3, st.cfg.TitleCaseDesc),
		Field1:       rec.Field1,
		Field2:       rec.Field2,
		Field3:       rec.Field3,
		ExternalRef:  strings.TrimSpace(rec.ExternalRef),
		PriceGridRef: rec.PriceGridRef,
		CostGridRef:  rec.CostGridRef,
		DiscountRef:  rec.DiscountRef,
		// Deprecated records stay active so historical order lines resolve;
		// the sentinel note is what downstream consumers act on.
		Active:     true,
		StatusNote: catalog.DeprecatedNote,
		RowRef:     rec.RowRef,
	}
	result.Changes[id] = append(result.Changes[id], row)
	result.Log = append(result.Log, ChangeLogEntry{
		GroupID:     id,
		Operation:   OperationDeprecate,
		Identifier:  rec.Identifier,
		Description: row.Description,
		Reason:      reason,
	})
}

func (r *reconciler) derive(variant catalog.SupplyVariant, markup pricing.MarkupDecision) (pricing.Derived, error) {
	cfg, _ := r.groups.Config(variant.GroupID)
	raw, err := pricing.ParseRawPrice(variant.RawPrice)
	if err != nil {
		return pricing.Derived{}, err
	}
	return pricing.Derive(raw, cfg.PriceUnit, variant.Width, cfg.WastagePct, markup.Markup)
}

// tomorrow returns the start of the next calendar day in UTC.
func (r *reconciler) tomorrow() time.Time {
	now := r.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, 1)
}
