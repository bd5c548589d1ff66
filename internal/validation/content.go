// Package validation holds input rules shared by the service layer.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxContentLength is the longest comment or post body accepted, in characters.
const MaxContentLength = 10000

// ValidateRequired rejects values that are empty after trimming whitespace.
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ValidateContent applies the required and maximum-length rules to a text body.
func ValidateContent(value string) error {
	if err := ValidateRequired("Content", value); err != nil {
		return err
	}
	if utf8.RuneCountInString(value) > MaxContentLength {
		return fmt.Errorf("Content too long (max %d characters)", MaxContentLength)
	}
	return nil
}
