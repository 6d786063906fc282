// internal/calc/calculator.go
package calc

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/esc4n0rx/abastececd/internal/domain"
)

// Slot codes start with a depot prefix (H3S, H3P, H3B or H3C) followed by
// the 2-digit aisle, e.g. H3S06010 belongs to aisle 06. Slots that do not
// match the grammar fall into the N/A aisle.
var aisleRe = regexp.MustCompile(`(?i)H3[SPBC](\d{2})`)

const (
	// DefaultDepot is assigned to every slot without a recognized prefix.
	DefaultDepot = "DP01"
	// H3CDepot is assigned to slots under the H3C prefix.
	H3CDepot = "DP40"

	// The medium/normal boundary is fixed; only the critical threshold is
	// configurable.
	mediumBoundary = 50

	// AisleUnknown groups positions whose slot code has no aisle digits.
	AisleUnknown = "Aisle N/A"
)

// DemandSummary is the per-material aggregation of demand lines.
type DemandSummary struct {
	Total       float64
	Unit        string
	Description string
}

// AggregateDemand sums requested quantities by material code. The first
// non-empty unit and description seen for a material win; later rows only
// contribute quantity.
func AggregateDemand(records []domain.DemandRecord) map[string]*DemandSummary {
	byMaterial := make(map[string]*DemandSummary)
	for _, rec := range records {
		summary, ok := byMaterial[rec.Material]
		if !ok {
			summary = &DemandSummary{Unit: rec.Unit, Description: rec.Description}
			byMaterial[rec.Material] = summary
		}
		if summary.Unit == "" {
			summary.Unit = rec.Unit
		}
		if summary.Description == "" {
			summary.Description = rec.Description
		}
		summary.Total += rec.RequestedQty
	}
	return byMaterial
}

// AisleLabel derives the aisle grouping label from a slot code.
func AisleLabel(slot string) string {
	if m := aisleRe.FindStringSubmatch(slot); m != nil {
		return fmt.Sprintf("Aisle %s", m[1])
	}
	return AisleUnknown
}

// DepotCode derives the depot from the slot-code prefix. Only H3C slots map
// to the secondary depot; everything else, including unmatched or empty
// slots, belongs to the default one.
func DepotCode(slot string) string {
	if strings.HasPrefix(slot, "H3C") {
		return H3CDepot
	}
	return DefaultDepot
}

// FulfillmentPct is min(100, round(balance/demand*100)). Callers must skip
// non-positive demand before calling.
func FulfillmentPct(balance, demand float64) int {
	pct := int(math.Round(balance / demand * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// RequiredQty is max(0, demand-balance).
func RequiredQty(balance, demand float64) float64 {
	if required := demand - balance; required > 0 {
		return required
	}
	return 0
}

// UrgencyTier classifies a fulfillment percentage. The critical boundary is
// the configured threshold (strict less-than); the medium boundary is a
// fixed 50 regardless of configuration.
func UrgencyTier(pct, criticalThreshold int) string {
	if pct < criticalThreshold {
		return domain.UrgencyCritical
	}
	if pct < mediumBoundary {
		return domain.UrgencyMedium
	}
	return domain.UrgencyNormal
}

// BuildPositions joins picking stock against aggregated demand and emits
// one replenishment position per stock slot whose material has positive
// demand. Stock must already be filtered to the picking storage area.
func BuildPositions(stock []domain.StockRecord, demand map[string]*DemandSummary, settings *domain.Settings) []domain.Position {
	positions := make([]domain.Position, 0, len(stock))

	for _, item := range stock {
		summary, ok := demand[item.Material]
		if !ok || summary.Total <= 0 {
			continue
		}

		balance := item.AvailableQty
		total := summary.Total

		var pct int
		var required float64
		switch settings.CalculationMode {
		case domain.ModeStandard, domain.ModePercentage:
			pct = FulfillmentPct(balance, total)
			required = RequiredQty(balance, total)
		default:
			// Weighted mode: same arithmetic as standard until a
			// historical-weighting policy is specified.
			pct = FulfillmentPct(balance, total)
			required = RequiredQty(balance, total)
		}

		description := summary.Description
		if description == "" {
			description = item.Description
		}

		positions = append(positions, domain.Position{
			Aisle:          AisleLabel(item.Slot),
			Slot:           item.Slot,
			Material:       item.Material,
			Description:    description,
			CurrentBalance: balance,
			Demand:         total,
			FulfillmentPct: pct,
			RequiredQty:    required,
			Urgency:        UrgencyTier(pct, settings.CriticalThreshold),
			Unit:           item.BaseUnit,
			Depot:          DepotCode(item.Slot),
		})
	}

	return positions
}
