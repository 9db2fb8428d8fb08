package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"grapheditor/domain/config"
	"grapheditor/domain/core/valueobjects"
	"grapheditor/pkg/errors"
)

// ElementValidator validates user input for labels and attributes
type ElementValidator struct {
	maxNameLength  int
	maxTextLength  int
	maxLabelLength int
}

// NewElementValidator creates a validator from the domain rules
func NewElementValidator(cfg *config.DomainConfig) *ElementValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ElementValidator{
		maxNameLength:  cfg.MaxAttributeNameLength,
		maxTextLength:  cfg.MaxTextValueLength,
		maxLabelLength: cfg.MaxLabelLength,
	}
}

// ValidateAttributeName checks a name typed into the attribute panel
func (v *ElementValidator) ValidateAttributeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewValidationError("attribute name cannot be empty").WithCode("EMPTY_NAME")
	}
	if v.maxNameLength > 0 && utf8.RuneCountInString(name) > v.maxNameLength {
		return errors.NewValidationErrorf("attribute name exceeds %d characters", v.maxNameLength)
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return errors.NewValidationError("attribute name contains control characters")
	}
	return nil
}

// ValidateValue checks a coerced attribute value
func (v *ElementValidator) ValidateValue(value valueobjects.AttrValue) error {
	if value.IsZero() {
		return errors.NewValidationError("attribute value is missing").WithCode("NO_VALUE")
	}
	if v.maxTextLength > 0 && value.Kind() != valueobjects.KindBoolean && value.Kind() != valueobjects.KindNumber &&
		utf8.RuneCountInString(value.Text()) > v.maxTextLength {
		return errors.NewValidationErrorf("attribute value exceeds %d characters", v.maxTextLength)
	}
	return nil
}

// ValidateLabel checks a node label
func (v *ElementValidator) ValidateLabel(label string) error {
	if v.maxLabelLength > 0 && utf8.RuneCountInString(label) > v.maxLabelLength {
		return errors.NewValidationErrorf("label exceeds %d characters", v.maxLabelLength)
	}
	return nil
}
