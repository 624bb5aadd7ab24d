package linkage

import (
	"regexp"
	"strings"

	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/similarity"
)

var reCrimeToken = regexp.MustCompile(`\d+/\d+`)

// Compare inspects every comparable field of two dossiers and returns the
// aggregated connection, or nil when nothing clears the category noise
// floors. Comparing a profile against itself never yields a connection.
//
// The comparison is symmetric: Compare(a, b) and Compare(b, a) produce the
// same category set, strength, and suspicion score, differing only in the
// orientation of recorded values.
func Compare(p1, p2 *common.Profile) *Result {
	if p1 == nil || p2 == nil || p1.ID == p2.ID {
		return nil
	}

	acc := newAccumulator()
	compareFieldTable(acc, p1, p2)
	comparePhones(acc, p1, p2)
	compareAssociates(acc, p1, p2)
	compareCases(acc, p1, p2)
	return acc.finalize()
}

// compareFieldTable walks the fixed rule catalog. A rule only fires when
// both sides carry a non-placeholder value.
func compareFieldTable(acc *accumulator, p1, p2 *common.Profile) {
	for _, rule := range fieldRules {
		v1, ok1 := present(rule.value(p1))
		v2, ok2 := present(rule.value(p2))
		if !ok1 || !ok2 {
			continue
		}

		switch rule.kind {
		case kindText:
			sim := similarity.Score(v1, v2)
			if sim > rule.threshold {
				acc.add(rule.category, rule.label, v1, v2, sim)
			}
		case kindExact:
			if strings.EqualFold(v1, v2) {
				acc.add(rule.category, rule.label, v1, v2, 1.0)
			}
		case kindPhoneSet:
			for _, number := range sharedPhones(similarity.ExtractPhones(v1), similarity.ExtractPhones(v2)) {
				acc.add(rule.category, rule.label, number, number, 1.0)
			}
		case kindGPS:
			dist, ok := similarity.GPSDistanceKm(v1, v2)
			if ok && dist < gpsMatchRadiusKm {
				acc.add(rule.category, rule.label, v1, v2, 1.0-dist/gpsMatchRadiusKm)
			}
		}
	}
}

// comparePhones intersects the extracted phone digit sets of both profiles:
// own numbers against own numbers, and own numbers against the other side's
// associate phones.
func comparePhones(acc *accumulator, p1, p2 *common.Profile) {
	own1 := ownPhones(p1)
	own2 := ownPhones(p2)

	for _, number := range sharedPhones(own1, own2) {
		acc.add(CategoryContact, "Phone Number", number, number, 1.0)
	}
	for _, number := range sharedPhones(own1, associatePhones(p2)) {
		acc.add(CategoryContact, "Associate Phone", number, number, 1.0)
	}
	for _, number := range sharedPhones(own2, associatePhones(p1)) {
		acc.add(CategoryContact, "Associate Phone", number, number, 1.0)
	}
}

// compareAssociates covers the associate-category name matching: co-accused
// text against the other's full name, full name against the other's close
// associates, and cross-matched associate lists (names and phones).
func compareAssociates(acc *accumulator, p1, p2 *common.Profile) {
	compareCoAccused(acc, p1, p2)
	compareCoAccused(acc, p2, p1)
	compareNameToAssociates(acc, p1, p2)
	compareNameToAssociates(acc, p2, p1)

	for _, a1 := range p1.CloseAssociates {
		name1, ok1 := present(a1.Name)
		for _, a2 := range p2.CloseAssociates {
			if ok1 {
				if name2, ok2 := present(a2.Name); ok2 {
					sim := nameSimilarity(name1, name2)
					if sim > 0.7 {
						acc.add(CategoryAssociate, "Shared Associate", name1, name2, sim)
					}
				}
			}
			for _, number := range sharedPhones(similarity.ExtractPhones(a1.Phone), similarity.ExtractPhones(a2.Phone)) {
				acc.add(CategoryAssociate, "Associate Phone", number, number, 1.0)
			}
		}
	}
}

// compareCoAccused checks whether any name mined from p1's arrest co-accused
// text matches p2's full name.
func compareCoAccused(acc *accumulator, p1, p2 *common.Profile) {
	coAccused, ok := present(p1.ArrestDetails.CoAccused)
	if !ok {
		return
	}
	fullName, ok := present(p2.FullName)
	if !ok {
		return
	}

	for _, name := range similarity.ExtractNames(coAccused) {
		sim := nameSimilarity(name, fullName)
		if sim > 0.7 {
			acc.add(CategoryAssociate, "Co-accused", name, fullName, sim)
		}
	}
}

// compareNameToAssociates checks whether p1's full name appears in p2's
// close-associate list.
func compareNameToAssociates(acc *accumulator, p1, p2 *common.Profile) {
	fullName, ok := present(p1.FullName)
	if !ok {
		return
	}

	for _, assoc := range p2.CloseAssociates {
		name, ok := present(assoc.Name)
		if !ok {
			continue
		}
		sim := nameSimilarity(fullName, name)
		if sim > 0.65 {
			acc.add(CategoryAssociate, "Close Associate", fullName, name, sim)
		}
	}
}

// compareCases cross-matches the case-particulars lists on crime number,
// court case number, police station, and statute section, and intersects
// arrest crime number tokens of the form "digits/digits".
func compareCases(acc *accumulator, p1, p2 *common.Profile) {
	for _, c1 := range p1.CaseParticulars {
		for _, c2 := range p2.CaseParticulars {
			compareCaseField(acc, "Case Crime Number", c1.CrimeNumber, c2.CrimeNumber)
			compareCaseField(acc, "Court Case Number", c1.CourtCaseNumber, c2.CourtCaseNumber)
			compareCaseField(acc, "Case Police Station", c1.PoliceStation, c2.PoliceStation)
			compareCaseField(acc, "Statute Section", c1.Section, c2.Section)
		}
	}

	tokens1 := reCrimeToken.FindAllString(p1.ArrestDetails.CrimeNumber, -1)
	tokens2 := reCrimeToken.FindAllString(p2.ArrestDetails.CrimeNumber, -1)
	for _, token := range sharedPhones(tokens1, tokens2) {
		acc.add(CategoryAssociate, "Arrest Crime Number", token, token, 1.0)
	}
}

// compareCaseField accepts identical values outright and near-identical
// values above 0.8 similarity.
func compareCaseField(acc *accumulator, label, v1, v2 string) {
	value1, ok1 := present(v1)
	value2, ok2 := present(v2)
	if !ok1 || !ok2 {
		return
	}

	if strings.EqualFold(value1, value2) {
		acc.add(CategoryAssociate, label, value1, value2, 1.0)
		return
	}
	if sim := similarity.Score(value1, value2); sim > 0.8 {
		acc.add(CategoryAssociate, label, value1, value2, sim)
	}
}

// nameSimilarity treats substring containment in either direction as a full
// match, falling back to edit-distance similarity.
func nameSimilarity(a, b string) float64 {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return 0
	}
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return 1.0
	}
	return similarity.Score(la, lb)
}

// ownPhones gathers the digit runs from a profile's own phone fields.
func ownPhones(p *common.Profile) []string {
	var numbers []string
	for _, field := range []string{p.PhoneNumber, p.AlternatePhone, p.WhatsAppNumber} {
		numbers = append(numbers, similarity.ExtractPhones(field)...)
	}
	return numbers
}

// associatePhones gathers the digit runs from a profile's close-associate
// phone fields.
func associatePhones(p *common.Profile) []string {
	var numbers []string
	for _, assoc := range p.CloseAssociates {
		numbers = append(numbers, similarity.ExtractPhones(assoc.Phone)...)
	}
	return numbers
}

// sharedPhones returns the intersection of two token lists, preserving the
// order of the first list and dropping duplicates.
func sharedPhones(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	inB := make(map[string]bool, len(b))
	for _, token := range b {
		inB[token] = true
	}

	var shared []string
	seen := make(map[string]bool, len(a))
	for _, token := range a {
		if inB[token] && !seen[token] {
			seen[token] = true
			shared = append(shared, token)
		}
	}
	return shared
}
