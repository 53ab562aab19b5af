package guild

import (
	"errors"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr bool
	}{
		{"snowflake", "222222222222222222", 222222222222222222, false},
		{"surrounding space", "  42 ", 42, false},
		{"max uint64", "18446744073709551615", ID(^uint64(0)), false},
		{"zero", "0", 0, true},
		{"negative", "-1", 0, true},
		{"overflow", "18446744073709551616", 0, true},
		{"letters", "abc", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidID) {
				t.Errorf("ParseID(%q) error = %v, want ErrInvalidID", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestID_String(t *testing.T) {
	if got := ID(111111111111111111).String(); got != "111111111111111111" {
		t.Errorf("String() = %q", got)
	}
}

func TestParsePurpose(t *testing.T) {
	tests := []struct {
		input   string
		want    Purpose
		wantErr bool
	}{
		{"faqs", PurposeFAQs, false},
		{"FAQ", PurposeFAQs, false},
		{"ratios", PurposeRatios, false},
		{" ratio ", PurposeRatios, false},
		{"recipes", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePurpose(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePurpose(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePurpose(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name    string
		id      ID
		purpose Purpose
		want    string
		wantErr error
	}{
		{"faqs", 1234, PurposeFAQs, "1234-faqs.json", nil},
		{"ratios", 1234, PurposeRatios, "1234-ratios.json", nil},
		{"zero id", 0, PurposeFAQs, "", ErrInvalidID},
		{"unknown purpose", 1234, Purpose("../etc"), "", ErrInvalidPurpose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileName(tt.id, tt.purpose)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FileName() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FileName() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FileName() = %q, want %q", got, tt.want)
			}
		})
	}
}
