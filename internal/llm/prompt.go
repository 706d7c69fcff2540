package llm

import (
	"strings"
)

// extractionPrompt is sent verbatim with every uploaded document.
const extractionPrompt = `You are an expert real estate document analyzer specializing in Canadian real estate forms, MLS sheets, and property documents.

CRITICAL INSTRUCTIONS FOR ADDRESS PARSING:
- Canadian addresses often appear as: "1234 Street Name PROVINCE City, PostalCode"
- Example: "1711 101 Prudential DR ON Scarborough, M1P4S5"
- Split this into: propertyAddress="1711 101 Prudential DR", state="ON", city="Scarborough", zipCode="M1P4S5"
- Look for addresses in these patterns and split them correctly

DOCUMENT TYPES TO RECOGNIZE:
- OREA Forms (Ontario Real Estate Association)
- MLS Listing Sheets
- Purchase/Sale Agreements
- Property Disclosure Statements
- Listing Agreements

EXTRACTION FIELDS - Be extremely thorough and look everywhere in the document:

PROPERTY ADDRESS (parse carefully):
- propertyAddress: Street number and street name only (e.g., "1711 101 Prudential DR")
- city: City/municipality name (e.g., "Scarborough", "Toronto", "Mississauga")
- state: Province abbreviation (ON, BC, AB, etc.)
- zipCode: Canadian postal code (e.g., "M1P4S5", "L6B 1A1")

PROPERTY DETAILS:
- listPrice: Listing price, asking price or sale price (numbers only, no commas/currency)
- propertyType: Residential, Commercial, Condo, Townhouse, Detached, Semi-Detached, etc.
- bedrooms: Number of bedrooms/BR
- bathrooms: Number of bathrooms/BA/washrooms
- squareFeet: Square footage/sq ft (numbers only)
- lotSize: Lot size in any unit (acres, sq ft, etc.)
- yearBuilt: Year property was constructed
- parkingSpaces: Number of parking spots/garage spaces

FINANCIAL DETAILS:
- commission: Commission rate or percentage (number only, e.g., "2.5")
- taxes: Annual property taxes if mentioned
- maintenanceFee: Condo/maintenance fees if applicable

ADDITIONAL INFO:
- title: Property name or listing title
- description: Any property description text
- features: Notable features, amenities
- sellerName: Seller's name if visible
- listingAgent: Agent/broker name
- mlsNumber: MLS number if present
- closingDate: Closing or possession date

PARSING INSTRUCTIONS:
1. Scan the ENTIRE document - information may be anywhere
2. Look in headers, footers, form fields, and body text
3. For addresses, pay special attention to the format "ADDRESS PROVINCE CITY, POSTAL"
4. Canadian postal codes have the format Letter-Number-Letter Number-Letter-Number
5. Extract ALL numerical values without formatting (no $, %, commas)
6. If you see partial information, extract what you can find
7. Look for abbreviations: BR (bedrooms), BA (bathrooms), SF (square feet)
8. Omit any field you cannot find. Never output null.

Return ONLY a single valid JSON object. Do not include any explanation or additional text.

Example for a Canadian property:
{
  "propertyAddress": "1711 101 Prudential DR",
  "city": "Scarborough",
  "state": "ON",
  "zipCode": "M1P4S5",
  "propertyType": "Residential",
  "bedrooms": "3",
  "bathrooms": "2",
  "listPrice": "899000"
}`

// BuildExtractionPrompt returns the instruction sent alongside an uploaded document.
func BuildExtractionPrompt() string {
	return extractionPrompt
}

// EnhancementTarget is a field the web-search stage tries to fill.
type EnhancementTarget struct {
	Field string
	Label string
}

// EnhancementTargets are asked for, in this order, when missing.
var EnhancementTargets = []EnhancementTarget{
	{FieldTitle, "property title"},
	{FieldDescription, "property description"},
	{FieldBedrooms, "number of bedrooms"},
	{FieldBathrooms, "number of bathrooms"},
	{FieldSquareFeet, "square footage"},
	{FieldYearBuilt, "year built"},
	{FieldPropertyType, "property type"},
	{FieldFeatures, "property features"},
}

// addressFields make up the search query, in order.
var addressFields = []string{FieldPropertyAddress, FieldCity, FieldState, FieldZipCode}

// ShouldEnhance reports whether fields carry enough location to search on.
func ShouldEnhance(fields FieldMap) bool {
	return fields.Has(FieldPropertyAddress) || fields.Has(FieldCity)
}

// SearchAddress joins the present address parts with ", ".
func SearchAddress(fields FieldMap) string {
	parts := make([]string, 0, len(addressFields))
	for _, f := range addressFields {
		if v := fields[f]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// MissingTargets lists the enhancement targets absent from fields.
func MissingTargets(fields FieldMap) []EnhancementTarget {
	var missing []EnhancementTarget
	for _, t := range EnhancementTargets {
		if !fields.Has(t.Field) {
			missing = append(missing, t)
		}
	}
	return missing
}

// BuildEnhancementPrompt asks the search model to look up address and return
// JSON holding only the fields still missing from existing.
func BuildEnhancementPrompt(address string, existing FieldMap) string {
	var b strings.Builder
	b.WriteString(`Search for property information for: "`)
	b.WriteString(address)
	b.WriteString("\"\n\nI need to find the following missing details for this property:\n")
	for _, t := range MissingTargets(existing) {
		b.WriteString("- ")
		b.WriteString(t.Label)
		b.WriteString(" (")
		b.WriteString(t.Field)
		b.WriteString(")\n")
	}

	b.WriteString("\nCurrent known information:\n")
	for _, k := range existing.Keys() {
		b.WriteString("- ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(existing[k])
		b.WriteString("\n")
	}

	b.WriteString(`
Please search for this property online and provide a JSON response with the missing information. Focus on:

1. Property Title: Create an attractive, descriptive title for this property
2. Property Description: Write a compelling 2-3 sentence description highlighting key features
3. Missing Physical Details: Fill in bedrooms, bathrooms, square footage, year built if not provided
4. Property Type: Determine if it's a house, condo, townhouse, etc.
5. Features: List key amenities and features
6. Neighborhood Info: Brief neighborhood description if relevant

Return ONLY a JSON object with the missing fields listed above:

Example format:
{
  "title": "Stunning Modern Condo in Prime Location",
  "description": "This beautifully renovated 2-bedroom condo features an open-concept layout with premium finishes and city views. Located in a desirable neighborhood with easy access to transit and amenities.",
  "bedrooms": "2",
  "bathrooms": "2",
  "squareFeet": "1200",
  "yearBuilt": "2015",
  "propertyType": "Condo",
  "features": "Open concept, granite countertops, stainless appliances, balcony, parking"
}`)
	return b.String()
}
