package entity

import (
	"path/filepath"
	"strings"
)

// allowedReceiptExtensions lists the accepted receipt image formats
var allowedReceiptExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
}

// IsValidReceiptFile reports whether a chosen receipt file is acceptable.
// The file extension is checked first, case-insensitively; when the name
// carries no extension the MIME subtype is consulted instead. There is no
// size limit. The predicate has no side effects.
func IsValidReceiptFile(fileName, contentType string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext != "" {
		return allowedReceiptExtensions[ext]
	}

	if idx := strings.Index(contentType, "/"); idx >= 0 {
		subtype := strings.ToLower(contentType[idx+1:])
		return allowedReceiptExtensions[subtype]
	}

	return false
}
