package constants

type PropertyType string

const (
	Residential     PropertyType = "Residential"
	Commercial      PropertyType = "Commercial"
	Land            PropertyType = "Land"
	Industrial      PropertyType = "Industrial"
	MixedUse        PropertyType = "Mixed-Use"
	PreConstruction PropertyType = "Pre-Construction"
)

// PropertyTypes lists the selectable property types in display order.
var PropertyTypes = []PropertyType{Residential, Commercial, Land, Industrial, MixedUse, PreConstruction}

type ListingStatus string

const (
	StatusActive        ListingStatus = "Active"
	StatusPending       ListingStatus = "Pending"
	StatusSold          ListingStatus = "Sold"
	StatusOffMarket     ListingStatus = "Off-Market"
	StatusComingSoon    ListingStatus = "Coming Soon"
	StatusUnderContract ListingStatus = "Under Contract"
)

const (
	DefaultCountry    = "Canada"
	DefaultCommission = "2.5"
)
