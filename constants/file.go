package constants

import "strings"

// AllowedImageExtensions holds the page image extensions accepted for OCR.
var AllowedImageExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"tif":  {},
	"tiff": {},
	"bmp":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImageExt reports whether ext (with or without dot) is an accepted page image.
func IsImageExt(ext string) bool {
	_, ok := AllowedImageExtensions[NormalizeExt(ext)]
	return ok
}

// IsPDFExt reports whether ext names a PDF, which must be rasterized upstream.
func IsPDFExt(ext string) bool {
	return NormalizeExt(ext) == "pdf"
}
