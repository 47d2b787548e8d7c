package entity

import "testing"

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty input falls back to epoch", "", "1 Jan. 70"},
		{"iso date", "2021-07-01", "1 Jul. 21"},
		{"day is unpadded", "2004-04-04", "4 Apr. 04"},
		{"end of year", "2023-12-31", "31 Dec. 23"},
		{"rfc3339 timestamp", "2021-07-01T10:30:00Z", "1 Jul. 21"},
		{"datetime layout", "2022-02-02 08:00:00", "2 Feb. 22"},
		{"unparseable passes through", "not-a-date", "not-a-date"},
		{"partial date passes through", "2021-13-45", "2021-13-45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDate(tt.input); got != tt.expected {
				t.Errorf("FormatDate(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusPending, "awaiting"},
		{StatusAccepted, "accepted"},
		{StatusRefused, "refused"},
		{Status("archived"), "archived"},
		{Status(""), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := FormatStatus(tt.status); got != tt.expected {
				t.Errorf("FormatStatus(%q) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusPending, false},
		{StatusAccepted, true},
		{StatusRefused, true},
		{Status("other"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}
