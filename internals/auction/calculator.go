package auction

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	historicalWeight = decimal.RequireFromString("0.6")
	projectedWeight  = decimal.RequireFromString("0.4")
	rangeLowFactor   = decimal.RequireFromString("0.85")
	rangeHighFactor  = decimal.RequireFromString("1.15")
)

// Calculate derives a bid recommendation from historical winning salaries and
// an optional projected dollar value.
//
// The historical median is the baseline. One or two auctions give medium
// confidence, three or more give high. A projection is blended in
// at 40% when history exists, otherwise it becomes the recommendation itself
// with medium confidence. Any non-zero projection counts, negative ones
// included. Displayed dollar figures round half to even.
func Calculate(playerName string, salaries []int, projected *decimal.Decimal) Recommendation {
	rec := Recommendation{
		PlayerName: playerName,
		Confidence: ConfidenceLow,
		SampleSize: len(salaries),
		Reasoning:  make([]string, 0, 4),
	}

	recommended := decimal.Zero

	if len(salaries) > 0 {
		br := summarize(salaries)
		rec.BidRange = &br
		recommended = decimal.NewFromFloat(br.Median).Truncate(0)

		if len(salaries) >= 3 {
			rec.Confidence = ConfidenceHigh
		} else {
			rec.Confidence = ConfidenceMedium
		}

		rec.Reasoning = append(rec.Reasoning,
			fmt.Sprintf("Based on %d historical %s", len(salaries), plural(len(salaries), "auction", "auctions")),
			fmt.Sprintf("Historical range: $%d-$%d (avg: $%s)", br.Min, br.Max, decimal.NewFromFloat(br.Avg).StringFixedBank(0)),
		)
	} else {
		rec.Reasoning = append(rec.Reasoning, "No historical auction data available")
	}

	if projected != nil && !projected.IsZero() {
		if len(salaries) > 0 {
			recommended = historicalWeight.Mul(recommended).Add(projectedWeight.Mul(*projected)).Truncate(0)
		} else {
			recommended = projected.Truncate(0)
			rec.Confidence = ConfidenceMedium
		}

		pv := int(projected.RoundBank(0).IntPart())
		rec.ProjectedValue = &pv
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("Projected value: $%d", pv))
	}

	rec.RecommendedBid = int(recommended.IntPart())
	rec.SuggestedRange = SuggestedRange{
		Low:  int(recommended.Mul(rangeLowFactor).IntPart()),
		High: int(recommended.Mul(rangeHighFactor).IntPart()),
	}
	rec.Reasoning = append(rec.Reasoning,
		fmt.Sprintf("Suggested range: $%d-$%d", rec.SuggestedRange.Low, rec.SuggestedRange.High))
	rec.ConfidenceLabel = rec.Confidence.Label()

	return rec
}

func summarize(salaries []int) BidRange {
	sorted := make([]int, len(salaries))
	copy(sorted, salaries)
	sort.Ints(sorted)

	sum := decimal.Zero
	for _, s := range sorted {
		sum = sum.Add(decimal.NewFromInt(int64(s)))
	}
	n := len(sorted)
	avg := sum.Div(decimal.NewFromInt(int64(n))).Round(2)

	var median decimal.Decimal
	if n%2 == 1 {
		median = decimal.NewFromInt(int64(sorted[n/2]))
	} else {
		median = decimal.NewFromInt(int64(sorted[n/2-1] + sorted[n/2])).Div(decimal.NewFromInt(2))
	}

	return BidRange{
		Min:    sorted[0],
		Max:    sorted[n-1],
		Avg:    avg.InexactFloat64(),
		Median: median.InexactFloat64(),
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// HitterValue converts projected batting stats to an auction dollar value.
func HitterValue(homeRuns, rbis, stolenBases int, battingAvg float64) decimal.Decimal {
	points := decimal.NewFromFloat(battingAvg).Mul(decimal.NewFromInt(300)).
		Add(decimal.NewFromInt(int64(homeRuns * 6))).
		Add(decimal.NewFromInt(int64(rbis * 2))).
		Add(decimal.NewFromInt(int64(stolenBases * 4)))

	// $1 per 10 points
	return points.Div(decimal.NewFromInt(10))
}

// PitcherValue converts projected pitching stats to an auction dollar value.
// An ERA under 3.50 adds value, above it subtracts.
func PitcherValue(wins int, era float64, strikeouts, saves int) decimal.Decimal {
	eraPoints := decimal.RequireFromString("3.50").Sub(decimal.NewFromFloat(era)).Mul(decimal.NewFromInt(20))
	points := decimal.NewFromInt(int64(wins * 4)).
		Add(eraPoints).
		Add(decimal.NewFromInt(int64(strikeouts)).Mul(decimal.RequireFromString("0.5"))).
		Add(decimal.NewFromInt(int64(saves * 6)))

	return points.Div(decimal.NewFromInt(10))
}
