package linkage

import (
	"testing"

	"github.com/argus-intel/argus/backend/pkg/common"
)

func TestCompareSharedPhoneNumber(t *testing.T) {
	p1 := &common.Profile{ID: "p1", PhoneNumber: "9876543210"}
	p2 := &common.Profile{ID: "p2", WhatsAppNumber: "9876543210"}

	res := Compare(p1, p2)
	if res == nil {
		t.Fatal("expected a linkage")
	}
	if res.ConnectionType != string(CategoryContact) {
		t.Fatalf("unexpected connection type: got %q, want %q", res.ConnectionType, CategoryContact)
	}
	if res.SuspicionScore != 25 {
		t.Fatalf("unexpected suspicion: got %d, want 25", res.SuspicionScore)
	}
	if res.Strength != 100 {
		t.Fatalf("unexpected strength: got %d, want 100", res.Strength)
	}
	if len(res.MatchedFields) != 1 || res.MatchedFields[0].Field != "Phone Number" {
		t.Fatalf("unexpected matched fields: %+v", res.MatchedFields)
	}
}

func TestCompareCoAccusedName(t *testing.T) {
	p1 := &common.Profile{
		ID: "p1",
		ArrestDetails: common.ArrestDetails{
			CoAccused: "Salim Shaikh, Rahim Khan (absconding)",
		},
	}
	p2 := &common.Profile{ID: "p2", FullName: "Rahim Khan"}

	res := Compare(p1, p2)
	if res == nil {
		t.Fatal("expected a linkage")
	}
	if res.ConnectionType != string(CategoryAssociate) {
		t.Fatalf("unexpected connection type: got %q, want %q", res.ConnectionType, CategoryAssociate)
	}
	if res.SuspicionScore != 35 {
		t.Fatalf("unexpected suspicion: got %d, want 35", res.SuspicionScore)
	}
}

func TestCompareSelfAndNil(t *testing.T) {
	p := &common.Profile{ID: "p1", PhoneNumber: "9876543210"}
	if res := Compare(p, p); res != nil {
		t.Fatalf("self comparison must not yield a linkage, got %+v", res)
	}
	if res := Compare(nil, p); res != nil {
		t.Fatal("nil left side must not yield a linkage")
	}
	if res := Compare(p, nil); res != nil {
		t.Fatal("nil right side must not yield a linkage")
	}
	clone := *p
	if res := Compare(p, &clone); res != nil {
		t.Fatal("identical IDs must not yield a linkage")
	}
}

func TestComparePlaceholdersNeverMatch(t *testing.T) {
	p1 := &common.Profile{
		ID:           "p1",
		Email:        "N/A",
		District:     "-",
		FatherName:   "nil",
		GovernmentID: "not available",
	}
	p2 := &common.Profile{
		ID:           "p2",
		Email:        "N/A",
		District:     "-",
		FatherName:   "nil",
		GovernmentID: "not available",
	}

	if res := Compare(p1, p2); res != nil {
		t.Fatalf("shared placeholders must not yield a linkage, got %+v", res)
	}
}

func TestCompareSymmetric(t *testing.T) {
	p1 := &common.Profile{
		ID:          "p1",
		FullName:    "Rahim Khan",
		PhoneNumber: "9876543210",
		District:    "Hyderabad",
		ArrestDetails: common.ArrestDetails{
			CoAccused: "Salim Shaikh",
		},
		CloseAssociates: []common.Associate{
			{Name: "Akbar Ali", Phone: "9123456789"},
		},
	}
	p2 := &common.Profile{
		ID:             "p2",
		FullName:       "Salim Shaikh",
		AlternatePhone: "9876543210",
		District:       "Hyderabad",
		CloseAssociates: []common.Associate{
			{Name: "Rahim Khan"},
			{Name: "Akbar Ali", Phone: "9123456789"},
		},
	}

	fwd := Compare(p1, p2)
	rev := Compare(p2, p1)
	if fwd == nil || rev == nil {
		t.Fatal("expected linkages in both directions")
	}
	if fwd.ConnectionType != rev.ConnectionType {
		t.Fatalf("connection type not symmetric: %q vs %q", fwd.ConnectionType, rev.ConnectionType)
	}
	if fwd.SuspicionScore != rev.SuspicionScore {
		t.Fatalf("suspicion not symmetric: %d vs %d", fwd.SuspicionScore, rev.SuspicionScore)
	}
	if fwd.Strength != rev.Strength {
		t.Fatalf("strength not symmetric: %d vs %d", fwd.Strength, rev.Strength)
	}
	if len(fwd.MatchedFields) != len(rev.MatchedFields) {
		t.Fatalf("matched field counts not symmetric: %d vs %d", len(fwd.MatchedFields), len(rev.MatchedFields))
	}
}

func TestCompareGPSProximity(t *testing.T) {
	near1 := &common.Profile{ID: "p1", HouseGPS: "Lat: 12.9716, Long: 77.5946"}
	near2 := &common.Profile{ID: "p2", HouseGPS: "Lat: 12.9800, Long: 77.6000"}

	res := Compare(near1, near2)
	if res == nil {
		t.Fatal("expected a linkage for nearby coordinates")
	}
	if res.ConnectionType != string(CategoryLocation) {
		t.Fatalf("unexpected connection type: got %q, want %q", res.ConnectionType, CategoryLocation)
	}

	far := &common.Profile{ID: "p3", HouseGPS: "Lat: 28.6139, Long: 77.2090"}
	if res := Compare(near1, far); res != nil {
		t.Fatalf("distant coordinates must not yield a linkage, got %+v", res)
	}
}

func TestCompareSharedCaseNumbers(t *testing.T) {
	p1 := &common.Profile{
		ID: "p1",
		CaseParticulars: []common.CaseParticular{
			{CrimeNumber: "123/2020", PoliceStation: "Banjara Hills PS"},
		},
	}
	p2 := &common.Profile{
		ID: "p2",
		CaseParticulars: []common.CaseParticular{
			{CrimeNumber: "123/2020", PoliceStation: "Banjara Hills PS"},
		},
	}

	res := Compare(p1, p2)
	if res == nil {
		t.Fatal("expected a linkage for a shared case")
	}
	if res.ConnectionType != string(CategoryAssociate) {
		t.Fatalf("unexpected connection type: got %q, want %q", res.ConnectionType, CategoryAssociate)
	}

	var labels []string
	for _, m := range res.MatchedFields {
		labels = append(labels, m.Field)
	}
	want := map[string]bool{"Case Crime Number": true, "Case Police Station": true}
	for _, l := range labels {
		if !want[l] {
			t.Fatalf("unexpected matched field %q in %v", l, labels)
		}
		delete(want, l)
	}
	if len(want) != 0 {
		t.Fatalf("missing matched fields %v, got %v", want, labels)
	}
}

func TestCompareArrestCrimeTokens(t *testing.T) {
	p1 := &common.Profile{
		ID:            "p1",
		ArrestDetails: common.ArrestDetails{CrimeNumber: "Cr. 45/2019, 77/2021"},
	}
	p2 := &common.Profile{
		ID:            "p2",
		ArrestDetails: common.ArrestDetails{CrimeNumber: "77/2021"},
	}

	res := Compare(p1, p2)
	if res == nil {
		t.Fatal("expected a linkage for a shared arrest crime number")
	}
	if len(res.MatchedFields) != 1 || res.MatchedFields[0].Field != "Arrest Crime Number" {
		t.Fatalf("unexpected matched fields: %+v", res.MatchedFields)
	}
	if res.MatchedFields[0].Value1 != "77/2021" {
		t.Fatalf("unexpected matched token: %q", res.MatchedFields[0].Value1)
	}
}

func TestCompareAssociatePhoneIntersection(t *testing.T) {
	p1 := &common.Profile{
		ID: "p1",
		CloseAssociates: []common.Associate{
			{Name: "Akbar Ali", Phone: "9123456789"},
		},
	}
	p2 := &common.Profile{
		ID: "p2",
		CloseAssociates: []common.Associate{
			{Name: "A. Ali", Phone: "9123456789 (second number)"},
		},
	}

	res := Compare(p1, p2)
	if res == nil {
		t.Fatal("expected a linkage for a shared associate phone")
	}
	if res.ConnectionType != string(CategoryAssociate) {
		t.Fatalf("unexpected connection type: got %q, want %q", res.ConnectionType, CategoryAssociate)
	}
}

func TestNameSimilarityContainment(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "exact", a: "rahim khan", b: "rahim khan", want: 1.0},
		{name: "containment", a: "rahim khan", b: "rahim", want: 1.0},
		{name: "reverse containment", a: "khan", b: "rahim khan", want: 1.0},
		{name: "empty", a: "", b: "rahim", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nameSimilarity(tt.a, tt.b); got != tt.want {
				t.Fatalf("unexpected similarity: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSharedPhones(t *testing.T) {
	got := sharedPhones(
		[]string{"9876543210", "9123456789", "9876543210"},
		[]string{"9123456789", "9876543210"},
	)
	want := []string{"9876543210", "9123456789"}
	if len(got) != len(want) {
		t.Fatalf("unexpected intersection: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected intersection order: got %v, want %v", got, want)
		}
	}

	if res := sharedPhones(nil, []string{"9876543210"}); res != nil {
		t.Fatalf("empty side must intersect to nil, got %v", res)
	}
}
