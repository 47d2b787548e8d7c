package entity

import "testing"

func TestIsValidReceiptFile(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		expected    bool
	}{
		{"jpg extension", "receipt.jpg", "image/jpeg", true},
		{"jpeg extension", "receipt.jpeg", "image/jpeg", true},
		{"png extension", "receipt.png", "image/png", true},
		{"gif extension", "receipt.gif", "image/gif", true},
		{"uppercase extension", "RECEIPT.JPG", "image/jpeg", true},
		{"mixed case extension", "scan.PnG", "image/png", true},
		{"pdf rejected", "receipt.pdf", "application/pdf", false},
		{"text rejected", "notes.txt", "text/plain", false},
		{"extension wins over mime", "receipt.pdf", "image/png", false},
		{"no extension falls back to mime", "receipt", "image/jpeg", true},
		{"no extension bad mime", "receipt", "application/pdf", false},
		{"empty descriptor", "", "", false},
		{"dotfile without extension", ".hidden", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidReceiptFile(tt.fileName, tt.contentType); got != tt.expected {
				t.Errorf("IsValidReceiptFile(%q, %q) = %v, want %v", tt.fileName, tt.contentType, got, tt.expected)
			}
		})
	}
}
