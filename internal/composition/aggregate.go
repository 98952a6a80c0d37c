package composition

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/habitatline/habitat-backend/pkg/enums"
)

// LengthMismatch reports diverging bottom/top run lengths. It is a warning
// for the author, never a blocking error: offset runs are a legitimate
// physical layout.
type LengthMismatch struct {
	BottomTotalMm int `json:"bottom_total_mm"`
	TopTotalMm    int `json:"top_total_mm"`
}

// Aggregates is the derived physical/commercial summary of a composition.
// It is a suggestion the author may hand-edit before saving, not an enforced
// derivation. Countertop fields mirror the bottom run and are only persisted
// for worktop categories; the caller decides that.
type Aggregates struct {
	TotalLengthMm      int
	TotalDepthMm       int
	TotalHeightMm      int
	CountertopLengthMm int
	CountertopDepthMm  int
	BasePrice          decimal.Decimal
	Mismatch           *LengthMismatch
}

type classTotals struct {
	lengthSum int
	depthMax  int
	heightMax int
	present   bool
}

// ComputeAggregates derives totals from the quantity-expanded composition.
// Missing refs and nil dimensions coerce to zero rather than failing: the
// result is advisory and must stay callable on half-built drafts. Price
// accumulates in exact decimal; rounding happens at display time only.
func ComputeAggregates(slots []Slot, refs map[uuid.UUID]SubItemRef) Aggregates {
	totals := map[enums.PositionClass]*classTotals{
		enums.PositionClassBottom:    {},
		enums.PositionClassTop:       {},
		enums.PositionClassComponent: {},
	}

	price := decimal.Zero
	for _, entry := range Flatten(slots) {
		ref := refs[entry.SubItemID]
		tot := totals[entry.PositionClass]
		tot.present = true
		tot.lengthSum += dim(ref.LengthMm)
		if d := dim(ref.DepthMm); d > tot.depthMax {
			tot.depthMax = d
		}
		if h := dim(ref.HeightMm); h > tot.heightMax {
			tot.heightMax = h
		}
		if ref.UnitPrice != nil {
			price = price.Add(*ref.UnitPrice)
		}
	}

	bottom := totals[enums.PositionClassBottom]
	top := totals[enums.PositionClassTop]
	component := totals[enums.PositionClassComponent]

	agg := Aggregates{BasePrice: price}

	twoTier := bottom.present || top.present
	if twoTier {
		agg.TotalLengthMm = bottom.lengthSum
		agg.TotalHeightMm = bottom.heightMax + top.heightMax
	} else {
		agg.TotalLengthMm = component.lengthSum
		agg.TotalHeightMm = component.heightMax
	}

	agg.TotalDepthMm = maxInt(bottom.depthMax, top.depthMax, component.depthMax)
	agg.CountertopLengthMm = bottom.lengthSum
	agg.CountertopDepthMm = bottom.depthMax

	if bottom.present && top.present && bottom.lengthSum != top.lengthSum {
		agg.Mismatch = &LengthMismatch{
			BottomTotalMm: bottom.lengthSum,
			TopTotalMm:    top.lengthSum,
		}
	}

	return agg
}

// dim coerces a nullable dimension to a usable non-negative value.
func dim(value *int) int {
	if value == nil || *value < 0 {
		return 0
	}
	return *value
}

func maxInt(values ...int) int {
	max := 0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}
