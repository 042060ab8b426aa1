package form

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"

	"github.com/rezonia/invoice-composer/internal/model"
)

// DefaultPhoneRegion is used for numbers written without a country code
const DefaultPhoneRegion = "CO"

// ContactChecker validates the syntax of the contact fields
type ContactChecker struct {
	validate *validator.Validate
	region   string
}

// NewContactChecker creates a checker that parses local phone numbers in region
func NewContactChecker(region string) *ContactChecker {
	if region == "" {
		region = DefaultPhoneRegion
	}
	return &ContactChecker{
		validate: validator.New(),
		region:   strings.ToUpper(region),
	}
}

// Check returns the first malformed contact field, email before phone
func (c *ContactChecker) Check(email, phone string) *model.ValidationError {
	if err := c.validate.Var(strings.TrimSpace(email), "required,email"); err != nil {
		return model.NewHeaderError(model.FieldEmail, model.ErrCodeInvalidFormat, "Invalid email")
	}

	num, err := libphonenumber.Parse(strings.TrimSpace(phone), c.region)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return model.NewHeaderError(model.FieldPhone, model.ErrCodeInvalidFormat, "Invalid phone number")
	}
	return nil
}
