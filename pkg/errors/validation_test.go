package errors

import (
	"testing"
)

func TestValidateConfigID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"generated shape", "kitchen-1718000000000-a1b2c3d4e", false},
		{"short millis", "kitchen-1-000000000", false},

		{"empty", "", true},
		{"wrong prefix", "galley-1718000000000-a1b2c3d4e", true},
		{"suffix too short", "kitchen-1718000000000-a1b2", true},
		{"uppercase suffix", "kitchen-1718000000000-A1B2C3D4E", true},
		{"path traversal", "kitchen-1-../../etc", true},
		{"trailing newline", "kitchen-1718000000000-a1b2c3d4e\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfigID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfigID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("ValidateConfigID(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "sink", false},
		{"with dash", "base-60", false},
		{"with spaces", "left wall", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidConfig,
		ErrCodeInvalidFormat,
		ErrCodeInvalidID,
		ErrCodeNotFound,
		ErrCodeConfigNotFound,
		ErrCodeFileNotFound,
		ErrCodeUnknownTool,
		ErrCodeHandleTooClose,
		ErrCodeLineLengthMismatch,
		ErrCodeUnknownModuleType,
		ErrCodeInvalidCorner,
		ErrCodeStoreUnavailable,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
