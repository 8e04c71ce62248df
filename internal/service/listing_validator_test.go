package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elan-api/internal/dto"
	"github.com/noah-isme/elan-api/internal/models"
	appErrors "github.com/noah-isme/elan-api/pkg/errors"
)

func validPayload() dto.ListingPayload {
	return dto.ListingPayload{
		Title:        "Backend Developer",
		Description:  strings.Repeat("x", 25),
		Category:     "job",
		City:         "Bakı",
		ContactEmail: "a@b.com",
		ContactPhone: "+994501234567",
	}
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, field, appErr.Field)
	assert.NotEmpty(t, appErr.Message)
}

func TestListingValidatorAcceptsValidPayload(t *testing.T) {
	v := NewListingValidator(nil)
	payload := validPayload()
	payload.Title = "  Backend Developer  "
	payload.Salary = " 1500 AZN "

	content, err := v.Validate(payload)
	require.NoError(t, err)
	assert.Equal(t, "Backend Developer", content.Title)
	assert.Equal(t, models.CategoryJob, content.Category)
	require.NotNil(t, content.Salary)
	assert.Equal(t, "1500 AZN", *content.Salary)
	assert.Nil(t, content.ExperienceLevel)
}

func TestListingValidatorTitleBoundary(t *testing.T) {
	v := NewListingValidator(nil)

	payload := validPayload()
	payload.Title = "abcd"
	_, err := v.Validate(payload)
	requireFieldError(t, err, "title")

	payload.Title = "abcde"
	_, err = v.Validate(payload)
	require.NoError(t, err)

	payload.Title = strings.Repeat("ə", 100)
	_, err = v.Validate(payload)
	require.NoError(t, err)

	payload.Title = strings.Repeat("ə", 101)
	_, err = v.Validate(payload)
	requireFieldError(t, err, "title")
}

func TestListingValidatorDescriptionBoundary(t *testing.T) {
	v := NewListingValidator(nil)

	payload := validPayload()
	payload.Description = strings.Repeat("d", 19)
	_, err := v.Validate(payload)
	requireFieldError(t, err, "description")

	payload.Description = strings.Repeat("d", 20)
	_, err = v.Validate(payload)
	require.NoError(t, err)

	payload.Description = strings.Repeat("d", 1001)
	_, err = v.Validate(payload)
	requireFieldError(t, err, "description")
}

func TestListingValidatorFirstViolationWins(t *testing.T) {
	v := NewListingValidator(nil)
	payload := validPayload()
	payload.Title = "x"
	payload.ContactEmail = "not-an-email"
	payload.City = ""

	_, err := v.Validate(payload)
	requireFieldError(t, err, "title")
	assert.Equal(t, "Başlıq ən azı 5 simvol olmalıdır", appErrors.FromError(err).Message)
}

func TestListingValidatorEnums(t *testing.T) {
	v := NewListingValidator(nil)

	cases := []struct {
		name  string
		mut   func(*dto.ListingPayload)
		field string
	}{
		{"unknown category", func(p *dto.ListingPayload) { p.Category = "all" }, "category"},
		{"missing city", func(p *dto.ListingPayload) { p.City = "   " }, "city"},
		{"city outside gazetteer", func(p *dto.ListingPayload) { p.City = "Tbilisi" }, "city"},
		{"bad email", func(p *dto.ListingPayload) { p.ContactEmail = "a@" }, "contact_email"},
		{"missing phone", func(p *dto.ListingPayload) { p.ContactPhone = "" }, "contact_phone"},
		{"unknown experience", func(p *dto.ListingPayload) { p.ExperienceLevel = "junior" }, "experience_level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := validPayload()
			tc.mut(&payload)
			_, err := v.Validate(payload)
			requireFieldError(t, err, tc.field)
		})
	}
}

func TestListingValidatorAcceptsBothExperienceVocabularies(t *testing.T) {
	v := NewListingValidator(nil)
	for _, level := range []string{"0-2", "10+", "entry", "senior"} {
		payload := validPayload()
		payload.ExperienceLevel = level
		content, err := v.Validate(payload)
		require.NoError(t, err, level)
		require.NotNil(t, content.ExperienceLevel)
		assert.Equal(t, level, *content.ExperienceLevel)
	}
}

func TestCatalogMatchesCategoryConstants(t *testing.T) {
	v := NewListingValidator(nil)
	for _, category := range models.Categories {
		payload := validPayload()
		payload.Category = string(category)
		_, err := v.Validate(payload)
		require.NoError(t, err, category)
	}
}
