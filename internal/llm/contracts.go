package llm

import (
	"context"
	"maps"
	"slices"
)

// Known field names. Models may return keys outside this vocabulary; they
// are carried through untouched.
const (
	FieldPropertyAddress = "propertyAddress"
	FieldCity            = "city"
	FieldState           = "state"
	FieldZipCode         = "zipCode"
	FieldListPrice       = "listPrice"
	FieldPropertyType    = "propertyType"
	FieldBedrooms        = "bedrooms"
	FieldBathrooms       = "bathrooms"
	FieldSquareFeet      = "squareFeet"
	FieldLotSize         = "lotSize"
	FieldYearBuilt       = "yearBuilt"
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldFeatures        = "features"
	FieldCommission      = "commission"
	FieldSellerName      = "sellerName"
	FieldClosingDate     = "closingDate"
)

// FieldMap is the flat set of property attributes extracted from a document.
// Keys and values are never empty.
type FieldMap map[string]string

// Has reports whether key is present with a non-empty value.
func (m FieldMap) Has(key string) bool {
	return m[key] != ""
}

// Clone returns an independent copy; a nil map clones to an empty one.
func (m FieldMap) Clone() FieldMap {
	out := make(FieldMap, len(m))
	maps.Copy(out, m)
	return out
}

// Keys returns the map keys in sorted order.
func (m FieldMap) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// FileUpload is a document handed to the model provider's file store.
type FileUpload struct {
	Name        string
	ContentType string
	Content     []byte
}

// DocumentModel is the provider surface the extraction pipeline depends on.
type DocumentModel interface {
	// UploadFile stores the document and returns an opaque file id.
	UploadFile(ctx context.Context, file FileUpload) (string, error)
	// DeleteFile removes a previously uploaded file.
	DeleteFile(ctx context.Context, fileID string) error
	// CompleteWithFile asks the document model to answer prompt about fileID
	// and returns the raw text of the first choice.
	CompleteWithFile(ctx context.Context, fileID, prompt string) (string, error)
	// CompleteWithSearch asks the search-augmented model to answer prompt.
	CompleteWithSearch(ctx context.Context, prompt string) (string, error)
}
