// Package listing turns extracted document fields into a listing draft.
package listing

import (
	"slices"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/listing-docs/constants"
	"github.com/joseph-ayodele/listing-docs/internal/common"
	"github.com/joseph-ayodele/listing-docs/internal/llm"
)

// Draft is an unsaved listing as an agent would fill it in.
type Draft struct {
	Title        string                  `json:"title"`
	PropertyType constants.PropertyType  `json:"propertyType"`
	Status       constants.ListingStatus `json:"status"`
	Address      string                  `json:"address"`
	City         string                  `json:"city"`
	State        string                  `json:"state"`
	ZipCode      string                  `json:"zipCode"`
	Country      string                  `json:"country"`
	Bedrooms     string                  `json:"bedrooms"`
	Bathrooms    string                  `json:"bathrooms"`
	SquareFeet   string                  `json:"squareFeet"`
	LotSize      string                  `json:"lotSize"`
	YearBuilt    string                  `json:"yearBuilt"`
	Description  string                  `json:"description"`
	Features     string                  `json:"features"`
	ListPrice    string                  `json:"listPrice"`
	Commission   string                  `json:"commission"`
}

// NewDraft returns a draft with the form defaults.
func NewDraft() *Draft {
	return &Draft{
		PropertyType: constants.Residential,
		Status:       constants.StatusActive,
		Country:      constants.DefaultCountry,
		Commission:   constants.DefaultCommission,
	}
}

// Apply copies every recognized, non-empty field into d and returns the
// sorted draft field names that were filled. Unrecognized keys are ignored.
func (d *Draft) Apply(fields llm.FieldMap) []string {
	var populated []string
	set := func(key string, dst *string, transform func(string) string) {
		v := fields[key]
		if v == "" {
			return
		}
		if transform != nil {
			v = transform(v)
		}
		*dst = v
		populated = append(populated, key)
	}

	set(llm.FieldPropertyAddress, &d.Address, nil)
	set(llm.FieldCity, &d.City, nil)
	set(llm.FieldState, &d.State, nil)
	set(llm.FieldZipCode, &d.ZipCode, nil)
	set(llm.FieldListPrice, &d.ListPrice, DigitsOnly)
	if v := fields[llm.FieldPropertyType]; v != "" {
		d.PropertyType = MapPropertyType(v)
		populated = append(populated, llm.FieldPropertyType)
	}
	set(llm.FieldTitle, &d.Title, nil)
	set(llm.FieldBedrooms, &d.Bedrooms, nil)
	set(llm.FieldBathrooms, &d.Bathrooms, nil)
	set(llm.FieldSquareFeet, &d.SquareFeet, DigitsOnly)
	set(llm.FieldLotSize, &d.LotSize, nil)
	set(llm.FieldYearBuilt, &d.YearBuilt, nil)
	set(llm.FieldCommission, &d.Commission, nil)
	set(llm.FieldDescription, &d.Description, nil)
	set(llm.FieldFeatures, &d.Features, nil)

	slices.Sort(populated)
	return populated
}

// DigitsOnly strips everything but ASCII digits, so "$1,250,000" becomes
// "1250000".
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var propertyTypeRules = []struct {
	keywords []string
	typ      constants.PropertyType
}{
	{[]string{"condo", "apartment", "house", "home", "townhouse", "villa", "duplex", "residential"}, constants.Residential},
	{[]string{"commercial", "office", "retail", "business"}, constants.Commercial},
	{[]string{"land", "lot", "vacant"}, constants.Land},
	{[]string{"industrial", "warehouse", "manufacturing"}, constants.Industrial},
	{[]string{"mixed", "multi"}, constants.MixedUse},
	{[]string{"pre-construction", "new construction", "under construction"}, constants.PreConstruction},
}

// MapPropertyType folds a free-text property description onto the
// selectable types. The first matching rule wins; anything unrecognized is
// Residential.
func MapPropertyType(raw string) constants.PropertyType {
	lower := strings.ToLower(raw)
	for _, rule := range propertyTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.typ
			}
		}
	}
	return constants.Residential
}

// Completion reports which form sections are filled in.
type Completion struct {
	Documents bool `json:"documents"`
	Property  bool `json:"property"`
	Pricing   bool `json:"pricing"`
}

// Completion evaluates section completeness. documentsProcessed is true once
// a document went through extraction.
func (d *Draft) Completion(documentsProcessed bool) Completion {
	return Completion{
		Documents: documentsProcessed,
		Property:  d.Title != "" && d.Address != "" && d.City != "" && d.State != "",
		Pricing:   d.ListPrice != "" && d.Commission != "",
	}
}

// Percent is the share of required sections (property and pricing) that are
// complete.
func (c Completion) Percent() int {
	done := 0
	for _, ok := range []bool{c.Property, c.Pricing} {
		if ok {
			done++
		}
	}
	return done * 100 / 2
}

// Validate checks the fields a listing cannot be saved without.
func (d *Draft) Validate() error {
	v := common.NewValidator()
	v.Field("title", d.Title, common.Required).
		Field("address", d.Address, common.Required).
		Field("city", d.City, common.Required).
		Field("state", d.State, common.Required).
		Field("listPrice", d.ListPrice, common.Required)
	return common.ValidateAndReturnError(v)
}

// EstimatedCommission is listPrice × commission%. ok is false when either
// value is missing or not a number.
func (d *Draft) EstimatedCommission() (amount float64, ok bool) {
	price, err1 := strconv.ParseFloat(d.ListPrice, 64)
	rate, err2 := strconv.ParseFloat(d.Commission, 64)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return price * rate / 100, true
}

// PricePerSquareFoot is listPrice / squareFeet.
func (d *Draft) PricePerSquareFoot() (float64, bool) {
	price, err1 := strconv.ParseFloat(d.ListPrice, 64)
	sqft, err2 := strconv.ParseFloat(d.SquareFeet, 64)
	if err1 != nil || err2 != nil || sqft <= 0 {
		return 0, false
	}
	return price / sqft, true
}
