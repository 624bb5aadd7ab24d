package linkage

import (
	"fmt"
	"strings"

	"github.com/argus-intel/argus/backend/pkg/common"
)

// compareKind selects how a field rule matches two values.
type compareKind int

const (
	// kindText accepts when the normalized edit-distance similarity is
	// strictly above the rule threshold.
	kindText compareKind = iota
	// kindExact accepts only normalized equality.
	kindExact
	// kindPhoneSet accepts when the two values share an extracted run of 10
	// or more digits.
	kindPhoneSet
	// kindGPS accepts when both values parse as coordinates within the
	// proximity radius; similarity scales linearly with distance.
	kindGPS
)

// gpsMatchRadiusKm is the proximity cutoff for GPS rules.
const gpsMatchRadiusKm = 5.0

// fieldRule is one entry of the comparator's field catalog. The comparator
// iterates the table instead of hand-coding per-field branches, so every
// rule is independently testable.
type fieldRule struct {
	category  Category
	label     string
	kind      compareKind
	threshold float64
	value     func(p *common.Profile) string
}

// fieldRules is the fixed catalog of directly comparable fields. Associate
// and case matching need cross-product logic over lists and live in
// compare.go instead.
var fieldRules = []fieldRule{
	// Contact
	{CategoryContact, "IMEI", kindExact, 0, func(p *common.Profile) string { return p.IMEI }},
	{CategoryContact, "Email", kindText, 0.8, func(p *common.Profile) string { return p.Email }},
	{CategoryContact, "Social Handles", kindText, 0.8, func(p *common.Profile) string { return p.SocialHandles }},
	{CategoryContact, "UPI ID", kindText, 0.8, func(p *common.Profile) string { return p.UPIID }},

	// Location
	{CategoryLocation, "Present Address", kindText, 0.6, func(p *common.Profile) string { return flattenAddress(p.PresentAddress) }},
	{CategoryLocation, "Permanent Address", kindText, 0.6, func(p *common.Profile) string { return flattenAddress(p.PermanentAddress) }},
	{CategoryLocation, "District", kindText, 0.7, func(p *common.Profile) string { return p.District }},
	{CategoryLocation, "Police Station", kindText, 0.8, func(p *common.Profile) string { return p.PoliceStation }},
	{CategoryLocation, "House GPS", kindGPS, 0, func(p *common.Profile) string { return p.HouseGPS }},
	{CategoryLocation, "Workplace GPS", kindGPS, 0, func(p *common.Profile) string { return p.WorkplaceGPS }},
	{CategoryLocation, "Hideouts", kindText, 0.5, func(p *common.Profile) string { return p.Hideouts }},
	{CategoryLocation, "Place of Birth", kindText, 0.6, func(p *common.Profile) string { return p.PlaceOfBirth }},
	{CategoryLocation, "Last Known Whereabouts", kindText, 0.4, func(p *common.Profile) string { return p.LastKnownWhereabouts }},

	// Family
	{CategoryFamily, "Father Name", kindText, 0.5, func(p *common.Profile) string { return p.FatherName }},
	{CategoryFamily, "Mother Name", kindText, 0.5, func(p *common.Profile) string { return p.MotherName }},
	{CategoryFamily, "Guardian Name", kindText, 0.5, func(p *common.Profile) string { return p.GuardianName }},
	{CategoryFamily, "Siblings", kindText, 0.4, func(p *common.Profile) string { return p.Siblings }},
	{CategoryFamily, "Spouse Name", kindText, 0.5, func(p *common.Profile) string { return p.SpouseName }},
	{CategoryFamily, "Close Friends", kindText, 0.4, func(p *common.Profile) string { return p.CloseFriends }},
	{CategoryFamily, "Extended Family", kindText, 0.5, func(p *common.Profile) string { return p.ExtendedFamily }},
	{CategoryFamily, "In-Laws", kindText, 0.5, func(p *common.Profile) string { return p.InLaws }},

	// Identity
	{CategoryIdentity, "Government ID", kindText, 0.7, func(p *common.Profile) string { return p.GovernmentID }},
	{CategoryIdentity, "PAN Number", kindText, 0.7, func(p *common.Profile) string { return p.PANNumber }},
	{CategoryIdentity, "Passport Number", kindText, 0.7, func(p *common.Profile) string { return p.PassportNumber }},
	{CategoryIdentity, "Bank Account Number", kindExact, 0, func(p *common.Profile) string { return p.BankDetails.AccountNumber }},
	{CategoryIdentity, "Bank Name", kindText, 0.8, func(p *common.Profile) string { return p.BankDetails.BankName }},
	{CategoryIdentity, "Advocate Name", kindText, 0.7, func(p *common.Profile) string { return p.AdvocateName }},
	{CategoryIdentity, "Advocate Phone", kindPhoneSet, 0, func(p *common.Profile) string { return p.AdvocatePhone }},
	{CategoryIdentity, "Property Details", kindText, 0.7, func(p *common.Profile) string { return p.PropertyDetails }},
	{CategoryIdentity, "Identification Marks", kindText, 0.7, func(p *common.Profile) string { return p.IdentificationMarks }},

	// Activity
	{CategoryActivity, "Past Organization", kindText, 0.6, func(p *common.Profile) string { return p.PastOrganization }},
	{CategoryActivity, "Present Organization", kindText, 0.6, func(p *common.Profile) string { return p.PresentOrganization }},
	{CategoryActivity, "Activity Description", kindText, 0.4, func(p *common.Profile) string { return p.ActivityDescription }},
	{CategoryActivity, "Religious Activity", kindText, 0.5, func(p *common.Profile) string { return p.ReligiousActivity }},
	{CategoryActivity, "Financier", kindText, 0.6, func(p *common.Profile) string { return p.Financier }},
	{CategoryActivity, "Countries Visited", kindText, 0.5, func(p *common.Profile) string { return p.CountriesVisited }},
	{CategoryActivity, "Jail Activity", kindText, 0.5, func(p *common.Profile) string { return p.JailActivity }},
	{CategoryActivity, "Jail Associates", kindText, 0.5, func(p *common.Profile) string { return p.JailAssociates }},
	{CategoryActivity, "Verifying Agency", kindText, 0.7, func(p *common.Profile) string { return p.VerifyingAgency }},
	{CategoryActivity, "Interrogating Agency", kindText, 0.7, func(p *common.Profile) string { return p.InterrogatingAgency }},
}

// placeholders are free-text values that mean "no data". Matching them
// against each other would manufacture connections out of data-entry habits.
var placeholders = map[string]bool{
	"":              true,
	"-":             true,
	"--":            true,
	"nil":           true,
	"n/a":           true,
	"na":            true,
	"none":          true,
	"null":          true,
	"undefined":     true,
	"not available": true,
	"not known":     true,
	"nk":            true,
}

// isAbsent reports whether a field value should be treated as missing.
func isAbsent(value string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(value))]
}

// present returns the trimmed value and whether it carries real data.
func present(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if isAbsent(trimmed) {
		return "", false
	}
	return trimmed, true
}

// flattenAddress renders a structured address as "key: value, ..." text for
// both similarity comparison and matched-field display. An address with no
// present leaves flattens to the empty string and is treated as absent.
func flattenAddress(a common.Address) string {
	parts := make([]string, 0, 5)
	appendPart := func(key, value string) {
		if v, ok := present(value); ok {
			parts = append(parts, fmt.Sprintf("%s: %s", key, v))
		}
	}
	appendPart("street", a.Street)
	appendPart("village", a.Village)
	appendPart("district", a.District)
	appendPart("state", a.State)
	appendPart("pin", a.PINCode)
	return strings.Join(parts, ", ")
}
