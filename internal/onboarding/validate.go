package onboarding

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/PIUMYOMIN/ekaro-sub002/internal/domain"
)

// Validator instance shared by all controllers
var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report errors under the wire field names the forms use
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Mandatory fields per step. Optional fields (logo, banner, description,
// website, social links, bank details, postal code, map link) carry no tags
// and pass through untouched.

type storeBasicForm struct {
	StoreName    string `json:"store_name" validate:"required"`
	BusinessType string `json:"business_type" validate:"required"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
	ContactPhone string `json:"contact_phone" validate:"required"`
}

type addressForm struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// validateStep runs the client-side pre-flight check for one step's
// submission. It returns a field→message map, empty on success. The server
// re-validates everything; this only saves a round trip for obvious misses.
func validateStep(step Step, data map[string]string, businessType *domain.BusinessType, uploaded map[string]domain.UploadedDocument) map[string]string {
	fieldErrors := make(map[string]string)

	switch step {
	case StepStoreBasic:
		form := &storeBasicForm{}
		decodeForm(data, form)
		collectErrors(validate.Struct(form), fieldErrors)

	case StepBusinessDetails:
		// Registration fields are only mandatory for non-individual business
		// types, judged from the authoritative business type record. A
		// missing record never silently exempts the seller.
		if businessType != nil && !businessType.IsIndividual {
			if strings.TrimSpace(data["business_registration_number"]) == "" {
				fieldErrors["business_registration_number"] = "This field is required"
			}
			if strings.TrimSpace(data["tax_id"]) == "" {
				fieldErrors["tax_id"] = "This field is required"
			}
		}

	case StepAddress:
		form := &addressForm{}
		decodeForm(data, form)
		collectErrors(validate.Struct(form), fieldErrors)

	case StepDocuments:
		if businessType != nil {
			for _, req := range businessType.DocumentRequirements {
				if !req.Required {
					continue
				}
				if doc, ok := uploaded[req.Type]; !ok || !doc.Uploaded {
					fieldErrors[req.Type] = req.Label + " is required"
				}
			}
		}

	case StepReview:
		// No new fields; the server performs the final completeness check.
	}

	return fieldErrors
}

func decodeForm(data map[string]string, form any) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	_ = json.Unmarshal(raw, form)
}

func collectErrors(err error, out map[string]string) {
	if err == nil {
		return
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return
	}
	for _, fe := range validationErrors {
		out[fe.Field()] = errorMessage(fe)
	}
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	default:
		return "Invalid value"
	}
}
