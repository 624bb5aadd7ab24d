// Package linkage implements the pairwise dossier comparator: a data-driven
// field rule table, per-category score accumulation, and the weighted
// aggregation that turns raw field matches into a connection strength and
// suspicion score.
package linkage

import (
	"fmt"
	"math"
	"strings"

	"github.com/argus-intel/argus/backend/pkg/common"
)

// Category is one of the six weighted groupings of comparable fields.
type Category string

const (
	CategoryAssociate Category = "associate"
	CategoryContact   Category = "contact"
	CategoryLocation  Category = "location"
	CategoryFamily    Category = "family"
	CategoryIdentity  Category = "identity"
	CategoryActivity  Category = "activity"
)

// categoryOrder fixes the evaluation order. It also breaks ties when two
// categories end up with the same raw score.
var categoryOrder = []Category{
	CategoryAssociate,
	CategoryContact,
	CategoryLocation,
	CategoryFamily,
	CategoryIdentity,
	CategoryActivity,
}

// categoryWeights are the contribution of each category's average score to
// the final suspicion score.
var categoryWeights = map[Category]float64{
	CategoryAssociate: 0.35,
	CategoryContact:   0.25,
	CategoryLocation:  0.20,
	CategoryFamily:    0.10,
	CategoryIdentity:  0.05,
	CategoryActivity:  0.05,
}

// noiseFloors are the minimum category averages (strict greater-than) for a
// category to count as a connection at all.
var noiseFloors = map[Category]float64{
	CategoryAssociate: 30,
	CategoryContact:   40,
	CategoryLocation:  40,
	CategoryFamily:    40,
	CategoryIdentity:  30,
	CategoryActivity:  30,
}

// maxMatchedFields caps the matched-field list stored on a linkage.
const maxMatchedFields = 15

// Result is the outcome of comparing two profiles. A nil Result means no
// connection was detected.
type Result struct {
	ConnectionType string
	Strength       int
	SuspicionScore int
	MatchedFields  []common.MatchedField
	Details        string
}

// accumulator collects field matches per category while a comparison walks
// the rule set. Each accepted match contributes similarity*100 to its
// category's running sum.
type accumulator struct {
	sums    map[Category]float64
	counts  map[Category]int
	matches []common.MatchedField
}

func newAccumulator() *accumulator {
	return &accumulator{
		sums:   make(map[Category]float64),
		counts: make(map[Category]int),
	}
}

func (a *accumulator) add(cat Category, label, value1, value2 string, sim float64) {
	a.sums[cat] += sim * 100
	a.counts[cat]++
	a.matches = append(a.matches, common.MatchedField{
		Field:      label,
		Value1:     value1,
		Value2:     value2,
		Similarity: sim,
	})
}

type categoryScore struct {
	category Category
	score    float64
}

// finalize applies the noise floors and weighted aggregation. It returns nil
// when no category clears its floor.
func (a *accumulator) finalize() *Result {
	var accepted []categoryScore
	var suspicion float64

	for _, cat := range categoryOrder {
		count := a.counts[cat]
		if count == 0 {
			continue
		}
		avg := a.sums[cat] / float64(count)
		if avg <= noiseFloors[cat] {
			continue
		}
		capped := math.Min(100, avg)
		suspicion += capped * categoryWeights[cat]
		accepted = append(accepted, categoryScore{category: cat, score: avg})
	}

	if len(accepted) == 0 {
		return nil
	}

	best := accepted[0]
	for _, cs := range accepted[1:] {
		if cs.score > best.score {
			best = cs
		}
	}

	matched := a.matches
	if len(matched) > maxMatchedFields {
		matched = matched[:maxMatchedFields]
	}

	return &Result{
		ConnectionType: string(best.category),
		Strength:       int(math.Round(math.Min(100, best.score))),
		SuspicionScore: int(math.Round(math.Min(100, suspicion))),
		MatchedFields:  matched,
		Details:        buildDetails(accepted, matched),
	}
}

// buildDetails produces the human-readable summary stored on a linkage: each
// accepted category with its raw score, then the labels of the first three
// matched fields.
func buildDetails(accepted []categoryScore, matched []common.MatchedField) string {
	var b strings.Builder
	b.WriteString("Connection detected via ")
	for i, cs := range accepted {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s (%.1f)", cs.category, cs.score)
	}

	if len(matched) > 0 {
		b.WriteString(". Key fields: ")
		n := min(3, len(matched))
		for i := 0; i < n; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(matched[i].Field)
		}
	}
	b.WriteString(".")
	return b.String()
}
