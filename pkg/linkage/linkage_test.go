package linkage

import (
	"strings"
	"testing"
)

func TestFinalizeNoiseFloorIsStrict(t *testing.T) {
	// An average sitting exactly on the floor must be rejected.
	atFloor := newAccumulator()
	atFloor.add(CategoryLocation, "Hideouts", "a", "b", 0.40)
	if res := atFloor.finalize(); res != nil {
		t.Fatalf("average equal to the noise floor must be rejected, got %+v", res)
	}

	aboveFloor := newAccumulator()
	aboveFloor.add(CategoryLocation, "Hideouts", "a", "b", 0.41)
	res := aboveFloor.finalize()
	if res == nil {
		t.Fatal("average above the noise floor must be accepted")
	}
	if res.ConnectionType != string(CategoryLocation) {
		t.Fatalf("unexpected connection type: got %q, want %q", res.ConnectionType, CategoryLocation)
	}
}

func TestFinalizeWeightedSuspicion(t *testing.T) {
	tests := []struct {
		name          string
		category      Category
		sim           float64
		wantSuspicion int
		wantStrength  int
	}{
		{
			name:          "full contact match",
			category:      CategoryContact,
			sim:           1.0,
			wantSuspicion: 25,
			wantStrength:  100,
		},
		{
			name:          "full associate match",
			category:      CategoryAssociate,
			sim:           1.0,
			wantSuspicion: 35,
			wantStrength:  100,
		},
		{
			name:          "partial family match",
			category:      CategoryFamily,
			sim:           0.8,
			wantSuspicion: 8,
			wantStrength:  80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newAccumulator()
			acc.add(tt.category, "Field", "a", "b", tt.sim)
			res := acc.finalize()
			if res == nil {
				t.Fatal("expected a result")
			}
			if res.SuspicionScore != tt.wantSuspicion {
				t.Fatalf("unexpected suspicion: got %d, want %d", res.SuspicionScore, tt.wantSuspicion)
			}
			if res.Strength != tt.wantStrength {
				t.Fatalf("unexpected strength: got %d, want %d", res.Strength, tt.wantStrength)
			}
		})
	}
}

func TestFinalizeSuspicionSumsCategories(t *testing.T) {
	acc := newAccumulator()
	acc.add(CategoryContact, "Phone Number", "9876543210", "9876543210", 1.0)
	acc.add(CategoryAssociate, "Co-accused", "rahim", "rahim khan", 1.0)
	res := acc.finalize()
	if res == nil {
		t.Fatal("expected a result")
	}

	// 100*0.25 + 100*0.35
	if res.SuspicionScore != 60 {
		t.Fatalf("unexpected suspicion: got %d, want 60", res.SuspicionScore)
	}
	// Equal averages resolve to the earlier category in evaluation order.
	if res.ConnectionType != string(CategoryAssociate) {
		t.Fatalf("unexpected connection type: got %q, want %q", res.ConnectionType, CategoryAssociate)
	}
}

func TestFinalizeCapsMatchedFields(t *testing.T) {
	acc := newAccumulator()
	for i := 0; i < maxMatchedFields+5; i++ {
		acc.add(CategoryContact, "Phone Number", "9876543210", "9876543210", 1.0)
	}
	res := acc.finalize()
	if res == nil {
		t.Fatal("expected a result")
	}
	if len(res.MatchedFields) != maxMatchedFields {
		t.Fatalf("unexpected matched field count: got %d, want %d", len(res.MatchedFields), maxMatchedFields)
	}
}

func TestFinalizeMonotonicity(t *testing.T) {
	low := newAccumulator()
	low.add(CategoryFamily, "Father Name", "a", "b", 0.6)
	high := newAccumulator()
	high.add(CategoryFamily, "Father Name", "a", "b", 0.9)

	lowRes, highRes := low.finalize(), high.finalize()
	if lowRes == nil || highRes == nil {
		t.Fatal("expected results on both sides")
	}
	if highRes.SuspicionScore < lowRes.SuspicionScore {
		t.Fatalf("raising a similarity lowered suspicion: %d -> %d", lowRes.SuspicionScore, highRes.SuspicionScore)
	}
	if highRes.Strength < lowRes.Strength {
		t.Fatalf("raising a similarity lowered strength: %d -> %d", lowRes.Strength, highRes.Strength)
	}
}

func TestFinalizeEmpty(t *testing.T) {
	if res := newAccumulator().finalize(); res != nil {
		t.Fatalf("empty accumulator must finalize to nil, got %+v", res)
	}
}

func TestBuildDetails(t *testing.T) {
	acc := newAccumulator()
	acc.add(CategoryContact, "Phone Number", "9876543210", "9876543210", 1.0)
	acc.add(CategoryContact, "Email", "a@x.in", "a@x.in", 1.0)
	res := acc.finalize()
	if res == nil {
		t.Fatal("expected a result")
	}

	if !strings.HasPrefix(res.Details, "Connection detected via contact (100.0)") {
		t.Fatalf("unexpected details prefix: %q", res.Details)
	}
	if !strings.Contains(res.Details, "Key fields: Phone Number, Email") {
		t.Fatalf("details must list matched field labels: %q", res.Details)
	}
}
