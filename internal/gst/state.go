package gst

import (
	"regexp"
	"strings"
)

// StateCode identifies an Indian state or union territory. It is always two
// characters long and may hold either the postal abbreviation ("MH") or the
// two-digit GST state code ("27").
type StateCode string

// State is an entry of the GST state table.
type State struct {
	Code string    `json:"code"` // two-digit GST code
	Abbr StateCode `json:"abbr"`
	Name string    `json:"name"`
}

// states is the fixed GST state-code table (first two characters of a GSTIN).
var states = []State{
	{"01", "JK", "Jammu and Kashmir"},
	{"02", "HP", "Himachal Pradesh"},
	{"03", "PB", "Punjab"},
	{"04", "CH", "Chandigarh"},
	{"05", "UK", "Uttarakhand"},
	{"06", "HR", "Haryana"},
	{"07", "DL", "Delhi"},
	{"08", "RJ", "Rajasthan"},
	{"09", "UP", "Uttar Pradesh"},
	{"10", "BR", "Bihar"},
	{"11", "SK", "Sikkim"},
	{"12", "AR", "Arunachal Pradesh"},
	{"13", "NL", "Nagaland"},
	{"14", "MN", "Manipur"},
	{"15", "MZ", "Mizoram"},
	{"16", "TR", "Tripura"},
	{"17", "ML", "Meghalaya"},
	{"18", "AS", "Assam"},
	{"19", "WB", "West Bengal"},
	{"20", "JH", "Jharkhand"},
	{"21", "OD", "Odisha"},
	{"22", "CG", "Chhattisgarh"},
	{"23", "MP", "Madhya Pradesh"},
	{"24", "GJ", "Gujarat"},
	{"26", "DN", "Dadra and Nagar Haveli and Daman and Diu"},
	{"27", "MH", "Maharashtra"},
	{"29", "KA", "Karnataka"},
	{"30", "GA", "Goa"},
	{"31", "LD", "Lakshadweep"},
	{"32", "KL", "Kerala"},
	{"33", "TN", "Tamil Nadu"},
	{"34", "PY", "Puducherry"},
	{"35", "AN", "Andaman and Nicobar Islands"},
	{"36", "TS", "Telangana"},
	{"37", "AP", "Andhra Pradesh"},
	{"38", "LA", "Ladakh"},
	{"97", "OT", "Other Territory"},
}

var (
	stateByCode = make(map[string]State, len(states))
	stateByAbbr = make(map[StateCode]State, len(states))
)

func init() {
	for _, s := range states {
		stateByCode[s.Code] = s
		stateByAbbr[s.Abbr] = s
	}
	// Pre-2014 Andhra Pradesh registrations still carry 28.
	stateByCode["28"] = stateByAbbr["AP"]
	// Daman and Diu kept 25 after the 2020 merger.
	stateByCode["25"] = stateByAbbr["DN"]
}

// ParseStateCode normalises s and reports whether it is a syntactically valid
// two-character state identifier. It does not check that the state exists.
func ParseStateCode(s string) (StateCode, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return "", false
	}
	return StateCode(s), true
}

// stateCodePrefix returns the first two characters of s as a StateCode, or ""
// when s is shorter than two characters.
func stateCodePrefix(s string) StateCode {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return ""
	}
	return StateCode(strings.ToUpper(s[:2]))
}

// Canonical maps a numeric GST code to its abbreviation. Abbreviations and
// unknown codes are returned unchanged.
func (s StateCode) Canonical() StateCode {
	if st, ok := stateByCode[string(s)]; ok {
		return st.Abbr
	}
	return s
}

// Known reports whether s is present in the state table.
func (s StateCode) Known() bool {
	_, ok := stateByAbbr[s.Canonical()]
	return ok
}

// Name returns the state's display name, or "" for an unknown code.
func (s StateCode) Name() string {
	return stateByAbbr[s.Canonical()].Name
}

// sameState compares two state identifiers on their first two characters.
// A missing state only matches another missing state.
func sameState(a, b StateCode) bool {
	a, b = stateCodePrefix(string(a)), stateCodePrefix(string(b))
	if a == "" || b == "" {
		return a == b
	}
	return a.Canonical() == b.Canonical()
}

// LookupState resolves a postal abbreviation, GST code or state name such as
// "Maharashtra" to the canonical abbreviation.
func LookupState(s string) (StateCode, bool) {
	if code, ok := ParseStateCode(s); ok && code.Known() {
		return code.Canonical(), true
	}
	name := strings.TrimSpace(s)
	for _, st := range states {
		if strings.EqualFold(st.Name, name) {
			return st.Abbr, true
		}
	}
	return "", false
}

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][A-Z0-9]Z[A-Z0-9]$`)

// ValidateGSTIN reports whether gstin has the structure of a GSTIN:
// 2 digits, 5 letters, 4 digits, 1 letter, 1 alphanumeric, "Z", 1 alphanumeric.
// The checksum character is not verified.
func ValidateGSTIN(gstin string) bool {
	return gstinPattern.MatchString(strings.ToUpper(strings.TrimSpace(gstin)))
}

// StateFromGSTIN returns the state abbreviation encoded in the first two
// digits of gstin. It returns "" when the prefix is not a known state code, so
// callers must check for emptiness before trusting the result.
func StateFromGSTIN(gstin string) string {
	prefix := stateCodePrefix(gstin)
	st, ok := stateByCode[string(prefix)]
	if !ok {
		return ""
	}
	return string(st.Abbr)
}
