package common

import "time"

// Profile is a dossier on a person of interest. Content fields are grouped
// into identity, contact, address, legal, affiliation, family, travel,
// finance, and risk sections. Content is owned by the profile-management
// service; the linkage engine only reads it.
//
// The derived fields (SuspicionScore, IsSuspicious, LinkageCount,
// SuspicionReasons, LastAnalyzed) are owned by the engine and written during
// the per-profile rollup after each full analysis pass.
type Profile struct {
	ID       string `json:"id"`
	IsActive bool   `json:"is_active"`

	// Identity
	FullName            string   `json:"full_name"`
	Aliases             string   `json:"aliases"`
	DateOfBirth         string   `json:"date_of_birth"`
	Gender              string   `json:"gender"`
	Nationality         string   `json:"nationality"`
	Religion            string   `json:"religion"`
	GovernmentID        string   `json:"government_id"`
	PANNumber           string   `json:"pan_number"`
	PassportNumber      string   `json:"passport_number"`
	IdentificationMarks string   `json:"identification_marks"`
	Languages           []string `json:"languages"`

	// Contact and digital footprint
	PhoneNumber    string `json:"phone_number"`
	AlternatePhone string `json:"alternate_phone"`
	WhatsAppNumber string `json:"whatsapp_number"`
	Email          string `json:"email"`
	SocialHandles  string `json:"social_handles"`
	IMEI           string `json:"imei"`
	UPIID          string `json:"upi_id"`

	// Address history
	PresentAddress       Address `json:"present_address"`
	PermanentAddress     Address `json:"permanent_address"`
	District             string  `json:"district"`
	PoliceStation        string  `json:"police_station"`
	HouseGPS             string  `json:"house_gps"`
	WorkplaceGPS         string  `json:"workplace_gps"`
	Hideouts             string  `json:"hideouts"`
	PlaceOfBirth         string  `json:"place_of_birth"`
	LastKnownWhereabouts string  `json:"last_known_whereabouts"`

	// Legal and arrest history
	CaseParticulars []CaseParticular `json:"case_particulars"`
	ArrestDetails   ArrestDetails    `json:"arrest_details"`
	AdvocateName    string           `json:"advocate_name"`
	AdvocatePhone   string           `json:"advocate_phone"`

	// Affiliations
	CloseAssociates     []Associate `json:"close_associates"`
	PastOrganization    string      `json:"past_organization"`
	PresentOrganization string      `json:"present_organization"`
	ReligiousActivity   string      `json:"religious_activity"`
	Financier           string      `json:"financier"`

	// Family
	FatherName     string `json:"father_name"`
	MotherName     string `json:"mother_name"`
	GuardianName   string `json:"guardian_name"`
	Siblings       string `json:"siblings"`
	SpouseName     string `json:"spouse_name"`
	CloseFriends   string `json:"close_friends"`
	ExtendedFamily string `json:"extended_family"`
	InLaws         string `json:"in_laws"`

	// Travel
	CountriesVisited string `json:"countries_visited"`

	// Finance
	BankDetails     BankDetails `json:"bank_details"`
	PropertyDetails string      `json:"property_details"`

	// Risk assessment
	ActivityDescription string `json:"activity_description"`
	JailActivity        string `json:"jail_activity"`
	JailAssociates      string `json:"jail_associates"`
	VerifyingAgency     string `json:"verifying_agency"`
	InterrogatingAgency string `json:"interrogating_agency"`

	// Derived fields, owned by the linkage engine.
	SuspicionScore   int       `json:"suspicion_score"`
	IsSuspicious     bool      `json:"is_suspicious"`
	LinkageCount     int       `json:"linkage_count"`
	SuspicionReasons []string  `json:"suspicion_reasons"`
	LastAnalyzed     time.Time `json:"last_analyzed"`
}

// Address is a structured postal address. It is treated as absent when every
// field is absent.
type Address struct {
	Street   string `json:"street"`
	Village  string `json:"village"`
	District string `json:"district"`
	State    string `json:"state"`
	PINCode  string `json:"pin_code"`
}

// CaseParticular describes one registered case against a profile.
type CaseParticular struct {
	CrimeNumber     string `json:"crime_number"`
	CourtCaseNumber string `json:"court_case_number"`
	PoliceStation   string `json:"police_station"`
	Section         string `json:"section"`
	Status          string `json:"status"`
}

// ArrestDetails describes the most recent arrest, including the free-text
// co-accused field that the associate matcher mines for names.
type ArrestDetails struct {
	CrimeNumber   string `json:"crime_number"`
	Date          string `json:"date"`
	PoliceStation string `json:"police_station"`
	CoAccused     string `json:"co_accused"`
}

// Associate is a known close associate of a profile.
type Associate struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// BankDetails holds the financial identifiers of a profile.
type BankDetails struct {
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	IFSC          string `json:"ifsc"`
}

// Linkage is a detected connection between exactly two profiles. Profile1
// and Profile2 are stored in canonical order (Profile1 < Profile2) so at
// most one active linkage exists per unordered pair.
type Linkage struct {
	ID             string         `json:"id"`
	Profile1       string         `json:"profile1"`
	Profile2       string         `json:"profile2"`
	ConnectionType string         `json:"connection_type"`
	MatchedFields  []MatchedField `json:"matched_fields"`
	Strength       int            `json:"strength"`
	SuspicionScore int            `json:"suspicion_score"`
	Details        string         `json:"details"`
	LastAnalyzed   time.Time      `json:"last_analyzed"`
	IsActive       bool           `json:"is_active"`
}

// MatchedField records one accepted field match between two profiles.
// Structured source fields are flattened to a readable "key: value, ..."
// form before being recorded.
type MatchedField struct {
	Field      string  `json:"field"`
	Value1     string  `json:"value1"`
	Value2     string  `json:"value2"`
	Similarity float64 `json:"similarity"`
}

// NetworkNode is a profile as it appears in an explored network.
type NetworkNode struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SuspicionScore int    `json:"suspicion_score"`
	LinkageCount   int    `json:"linkage_count"`
}

// NetworkEdge is a linkage as it appears in an explored network. Source and
// Target keep the stored canonical orientation of the linkage.
type NetworkEdge struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Strength  int    `json:"strength"`
	Type      string `json:"type"`
	Suspicion int    `json:"suspicion"`
}

// Network is the result of a bounded-depth exploration from a seed profile.
type Network struct {
	Nodes []NetworkNode `json:"nodes"`
	Edges []NetworkEdge `json:"edges"`
}

// CanonicalPair orders two profile identifiers into the canonical form used
// for stored linkages.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
