package validator

import (
	"errors"
	"fmt"
	"strings"

	"bizbranches/pkg/model"

	"github.com/go-playground/validator/v10"
)

// Violation is one field-level failure. All violations for a submission are
// returned together so the client can fix the whole form in one round trip.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{validate: validator.New()}
}

// Normalize trims every string field, drops empty optionals and prepends
// https:// to URL fields supplied without a scheme. This runs before
// validation; it is normalization, not a rule check.
func (v *BusinessValidator) Normalize(b *model.Business) {
	b.Name = strings.TrimSpace(b.Name)
	b.Category = strings.TrimSpace(b.Category)
	b.Subcategory = strings.TrimSpace(b.Subcategory)
	b.Province = strings.TrimSpace(b.Province)
	b.City = strings.TrimSpace(b.City)
	b.Area = strings.TrimSpace(b.Area)
	b.PostalCode = strings.TrimSpace(b.PostalCode)
	b.Address = strings.TrimSpace(b.Address)
	b.Phone = strings.TrimSpace(b.Phone)
	b.ContactPerson = strings.TrimSpace(b.ContactPerson)
	b.WhatsApp = strings.TrimSpace(b.WhatsApp)
	b.Email = strings.TrimSpace(b.Email)
	b.Description = strings.TrimSpace(b.Description)
	b.ProfileUsername = strings.TrimSpace(b.ProfileUsername)
	b.SwiftCode = strings.TrimSpace(b.SwiftCode)
	b.BranchCode = strings.TrimSpace(b.BranchCode)
	b.CityDialingCode = strings.TrimSpace(b.CityDialingCode)
	b.IBAN = strings.TrimSpace(b.IBAN)

	b.WebsiteURL = ensureScheme(strings.TrimSpace(b.WebsiteURL))
	b.FacebookURL = ensureScheme(strings.TrimSpace(b.FacebookURL))
	b.GmbURL = ensureScheme(strings.TrimSpace(b.GmbURL))
	b.YoutubeURL = ensureScheme(strings.TrimSpace(b.YoutubeURL))
}

func ensureScheme(url string) string {
	if url == "" {
		return ""
	}
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return url
	}
	return "https://" + url
}

// Validate returns every violation at once, nil when the record is valid.
func (v *BusinessValidator) Validate(b *model.Business) []Violation {
	err := v.validate.Struct(b)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Violation{{Field: "", Message: err.Error(), Code: "invalid"}}
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, Violation{
			Field:   jsonField(fe),
			Message: message(fe),
			Code:    fe.Tag(),
		})
	}
	return violations
}

func jsonField(fe validator.FieldError) string {
	// StructField names map onto the submitted form field names.
	f := fe.Field()
	return strings.ToLower(f[:1]) + f[1:]
}

func message(fe validator.FieldError) string {
	field := jsonField(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Invalid email format"
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
