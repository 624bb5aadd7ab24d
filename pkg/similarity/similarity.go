// Package similarity provides the low-level matching primitives used by the
// linkage comparator: normalized edit-distance scoring, free-text phone and
// name extraction, and GPS-string parsing with great-circle distance.
package similarity

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

const earthRadiusKm = 6371.0

var (
	rePhone       = regexp.MustCompile(`\d{10,}`)
	reParenthetic = regexp.MustCompile(`\([^)]*\)`)
	reLatitude    = regexp.MustCompile(`(?i)lat[a-z]*[\s:=]*(-?\d+(?:\.\d+)?)`)
	reLongitude   = regexp.MustCompile(`(?i)lo(?:ng|n)[a-z]*[\s:=]*(-?\d+(?:\.\d+)?)`)
)

// Score returns the normalized Levenshtein similarity of two strings in
// [0, 1]. Inputs are lowercased and trimmed first; equal strings score
// exactly 1.0 and an empty input on either side scores 0.
func Score(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(a, b)
	longest := max(len([]rune(a)), len([]rune(b)))
	return 1.0 - float64(dist)/float64(longest)
}

// ExtractPhones returns every run of 10 or more consecutive digits found in
// text. Comparing extracted digit sets instead of raw field text lets
// annotated entries like "9876543210 (old SIM)" still match.
func ExtractPhones(text string) []string {
	if text == "" {
		return nil
	}
	return rePhone.FindAllString(text, -1)
}

// ExtractNames splits free text on commas and semicolons into name tokens.
// Parenthetical annotations are stripped, tokens are lowercased and trimmed,
// and tokens shorter than 3 characters are discarded.
func ExtractNames(text string) []string {
	if text == "" {
		return nil
	}

	text = reParenthetic.ReplaceAllString(text, "")

	var names []string
	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		name := strings.ToLower(strings.TrimSpace(token))
		if len(name) < 3 {
			continue
		}
		names = append(names, name)
	}
	return names
}

// ParseGPS extracts a latitude and longitude from a free-text GPS string,
// e.g. "Lat: 12.9716, Long: 77.5946". The second return value is false when
// either coordinate cannot be found.
func ParseGPS(text string) (float64, float64, bool) {
	latMatch := reLatitude.FindStringSubmatch(text)
	lonMatch := reLongitude.FindStringSubmatch(text)
	if latMatch == nil || lonMatch == nil {
		return 0, 0, false
	}

	lat, err1 := strconv.ParseFloat(latMatch[1], 64)
	lon, err2 := strconv.ParseFloat(lonMatch[1], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// GPSDistanceKm parses two GPS strings and returns the great-circle distance
// between them in kilometers. The second return value is false when either
// string fails to parse, in which case no proximity match is possible.
func GPSDistanceKm(a, b string) (float64, bool) {
	lat1, lon1, ok := ParseGPS(a)
	if !ok {
		return 0, false
	}
	lat2, lon2, ok := ParseGPS(b)
	if !ok {
		return 0, false
	}
	return HaversineKm(lat1, lon1, lat2, lon2), true
}

// HaversineKm returns the great-circle distance in kilometers between two
// coordinate pairs using the haversine formula.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
