package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDocument(t *testing.T) {
	tests := []struct {
		filename string
		want     DocumentType
	}{
		{"2024_Listing_Agreement_Final.pdf", ListingAgreement},
		{"listing agreement.pdf", ListingAgreement},
		{"agreement_of_purchase.pdf", ListingAgreement},
		{"PURCHASE-offer.pdf", PurchaseAgreement},
		{"home_inspection_report.pdf", InspectionReport},
		{"Appraisal 2023.png", Appraisal},
		{"floor.jpg", FloorPlan},
		{"site_plan.pdf", FloorPlan},
		{"Title_Search.pdf", TitleDocument},
		{"randomfile123.pdf", Other},
		{"", Other},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDocument(tt.filename))
		})
	}
}

func TestClassifyDocument_RuleOrder(t *testing.T) {
	// "plan" and "title" both appear; floor/plan is checked first.
	assert.Equal(t, FloorPlan, ClassifyDocument("title_plan.pdf"))
	// "inspection" beats "appraisal" by position in the rule list.
	assert.Equal(t, InspectionReport, ClassifyDocument("appraisal_inspection.pdf"))
}

func TestCanonicalize(t *testing.T) {
	dt, ok := Canonicalize("  floor plan ")
	assert.True(t, ok)
	assert.Equal(t, FloorPlan, dt)

	dt, ok = Canonicalize("brochure")
	assert.False(t, ok)
	assert.Equal(t, Other, dt)

	_, ok = Canonicalize("")
	assert.False(t, ok)
}

func TestAllowedExt(t *testing.T) {
	assert.True(t, IsAllowedExt(".PDF"))
	assert.True(t, IsAllowedExt("jpeg"))
	assert.False(t, IsAllowedExt(".heic"))
	assert.Len(t, AsStringSlice(), 7)
}
