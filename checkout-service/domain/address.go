package domain

import (
	"regexp"
	"strings"
)

type Address struct {
	Name         string `json:"name"`
	Line1        string `json:"line1"`
	Line2        string `json:"line2,omitempty"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	ProvinceCode string `json:"province_code"`
	CountryCode  string `json:"country_code"`
}

// Complete reports whether the address carries enough to compute tax and ship.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.CountryCode) != "" && strings.TrimSpace(a.ProvinceCode) != ""
}

// Normalize returns a copy with trimmed fields, upper-cased region codes and a
// normalized postal code.
func (a Address) Normalize() Address {
	a.Name = strings.TrimSpace(a.Name)
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.City = strings.TrimSpace(a.City)
	a.ProvinceCode = strings.ToUpper(strings.TrimSpace(a.ProvinceCode))
	a.CountryCode = strings.ToUpper(strings.TrimSpace(a.CountryCode))
	a.PostalCode = NormalizePostalCode(a.PostalCode)
	return a
}

var canadianPostal = regexp.MustCompile(`^[A-Z]\d[A-Z]\d[A-Z]\d$`)

// NormalizePostalCode upper-cases the code and collapses whitespace. Canadian
// codes are rendered as "A1A 1A1" whatever spacing they arrived with.
func NormalizePostalCode(code string) string {
	code = strings.ToUpper(strings.Join(strings.Fields(code), " "))
	compact := strings.ReplaceAll(code, " ", "")
	if canadianPostal.MatchString(compact) {
		return compact[:3] + " " + compact[3:]
	}
	return code
}

type SavedAddress struct {
	ID       int64   `json:"id"`
	MemberID int64   `json:"member_id"`
	Address  Address `json:"address"`
}
