package constants

import "strings"

// MaxUploadMBDefault bounds the size of a document submitted for extraction.
const MaxUploadMBDefault = 20

// UploadPurpose is the purpose tag attached to documents sent to the file store.
const UploadPurpose = "user_data"

// AllowedExtensions holds the document extensions accepted for extraction.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// AllowedMIMETypes holds the detected content types accepted for extraction.
var AllowedMIMETypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without a dot) is accepted.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
