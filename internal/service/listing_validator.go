package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/elan-api/internal/dto"
	"github.com/noah-isme/elan-api/internal/models"
	"github.com/noah-isme/elan-api/pkg/catalog"
	appErrors "github.com/noah-isme/elan-api/pkg/errors"
)

// listingMessages maps field and failed tag to the message shown to the submitter.
var listingMessages = map[string]map[string]string{
	"title": {
		"min": "Başlıq ən azı 5 simvol olmalıdır",
		"max": "Başlıq 100 simvoldan çox ola bilməz",
	},
	"description": {
		"min": "Təsvir ən azı 20 simvol olmalıdır",
		"max": "Təsvir 1000 simvoldan çox ola bilməz",
	},
	"category": {
		"required": "Kateqoriya seçin",
		"category": "Naməlum kateqoriya",
	},
	"city": {
		"required": "Şəhər seçin",
		"city":     "Naməlum şəhər",
	},
	"experience_level": {
		"experience_level": "Naməlum təcrübə səviyyəsi",
	},
	"contact_email": {
		"required": "Düzgün email daxil edin",
		"email":    "Düzgün email daxil edin",
	},
	"contact_phone": {
		"required": "Əlaqə telefonu tələb olunur",
	},
}

// ListingValidator turns raw submissions into validated listing content.
type ListingValidator struct {
	validate *validator.Validate
}

// NewListingValidator registers the catalog-backed rules on a dedicated validator instance.
func NewListingValidator(cat *catalog.Catalog) *ListingValidator {
	if cat == nil {
		cat = catalog.Default()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return cat.HasCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("city", func(fl validator.FieldLevel) bool {
		return cat.HasCity(fl.Field().String())
	})
	_ = v.RegisterValidation("experience_level", func(fl validator.FieldLevel) bool {
		return cat.HasExperienceLevel(fl.Field().String())
	})
	return &ListingValidator{validate: v}
}

// Validate trims the payload and checks it field by field; the first violation is returned.
func (v *ListingValidator) Validate(payload dto.ListingPayload) (models.ListingContent, error) {
	payload = trimPayload(payload)

	if err := v.validate.Struct(payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return models.ListingContent{}, appErrors.Validation(first.Field(), listingReason(first.Field(), first.Tag()))
		}
		return models.ListingContent{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid listing payload")
	}

	return models.ListingContent{
		Title:           payload.Title,
		Description:     payload.Description,
		Category:        models.Category(payload.Category),
		City:            payload.City,
		ExperienceLevel: optional(payload.ExperienceLevel),
		Salary:          optional(payload.Salary),
		ContactEmail:    payload.ContactEmail,
		ContactPhone:    payload.ContactPhone,
	}, nil
}

func listingReason(field, tag string) string {
	if msg, ok := listingMessages[field][tag]; ok {
		return msg
	}
	return "yanlış dəyər"
}

func trimPayload(p dto.ListingPayload) dto.ListingPayload {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)
	p.City = strings.TrimSpace(p.City)
	p.ExperienceLevel = strings.TrimSpace(p.ExperienceLevel)
	p.Salary = strings.TrimSpace(p.Salary)
	p.ContactEmail = strings.TrimSpace(p.ContactEmail)
	p.ContactPhone = strings.TrimSpace(p.ContactPhone)
	return p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
