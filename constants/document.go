package constants

import (
	"strings"
)

type DocumentType string

const (
	ListingAgreement  DocumentType = "Listing Agreement"
	PurchaseAgreement DocumentType = "Purchase Agreement"
	InspectionReport  DocumentType = "Inspection Report"
	Appraisal         DocumentType = "Appraisal"
	FloorPlan         DocumentType = "Floor Plan"
	TitleDocument     DocumentType = "Title Document"
	Other             DocumentType = "Other"
)

var allDocumentTypes = []DocumentType{
	ListingAgreement,
	PurchaseAgreement,
	InspectionReport,
	Appraisal,
	FloorPlan,
	TitleDocument,
	Other,
}

// classifierRules are evaluated in order; the first rule with a matching
// keyword wins, so "listing agreement" never reaches the title rule.
var classifierRules = []struct {
	keywords []string
	docType  DocumentType
}{
	{[]string{"listing", "agreement"}, ListingAgreement},
	{[]string{"purchase"}, PurchaseAgreement},
	{[]string{"inspection"}, InspectionReport},
	{[]string{"appraisal"}, Appraisal},
	{[]string{"floor", "plan"}, FloorPlan},
	{[]string{"title"}, TitleDocument},
}

func AsStringSlice() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// ClassifyDocument maps an uploaded filename to a document type label using
// case-insensitive substring rules. It always returns a label.
func ClassifyDocument(filename string) DocumentType {
	normalized := strings.ToLower(filename)
	for _, rule := range classifierRules {
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, kw) {
				return rule.docType
			}
		}
	}
	return Other
}

// Canonicalize resolves a user-supplied label (any case, surrounding space)
// to a known document type.
func Canonicalize(input string) (DocumentType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Other, false
	}
	for _, dt := range allDocumentTypes {
		if normalized == strings.ToLower(string(dt)) {
			return dt, true
		}
	}
	return Other, false
}
