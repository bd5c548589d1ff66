package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateContent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"Valid", "Nice post!", false},
		{"Empty", "", true},
		{"Whitespace Only", " \n\t ", true},
		{"Exactly Max Length", strings.Repeat("a", MaxContentLength), false},
		{"Too Long", strings.Repeat("a", MaxContentLength+1), true},
		{"Multibyte At Max Length", strings.Repeat("é", MaxContentLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateContent(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRequired(t *testing.T) {
	t.Parallel()
	assert.EqualError(t, ValidateRequired("Name", "  "), "Name is required")
	assert.NoError(t, ValidateRequired("Name", "Rust Basics"))
}
