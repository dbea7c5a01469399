package models

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var tagPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report json field names so messages match the request body
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("adtag", func(fl validator.FieldLevel) bool {
		return tagPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("https_url", func(fl validator.FieldLevel) bool {
		return IsHTTPSURL(fl.Field().String())
	})
}

// IsHTTPSURL reports whether s is an absolute https URL with a host.
func IsHTTPSURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != ""
}

// ValidationError lists every problem found in an input.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateStruct runs the struct tag rules on v and converts failures into a
// ValidationError with one message per field.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Messages = append(out.Messages, fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	// drop the root struct name
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "adtag":
		return field + " must contain only lowercase letters, numbers, and underscores"
	case "https_url":
		return field + " must be a valid https URL"
	case "email":
		return field + " must be a valid email"
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// NormalizeTags lowercases, trims and deduplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

type publishGate struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	CTAText     string   `json:"ctaText" validate:"required"`
	CTAURL      string   `json:"ctaUrl" validate:"required,https_url"`
	Tags        []string `json:"tags" validate:"min=1,max=20,dive,min=2,max=32,adtag"`
}

// CheckPublishGate verifies an ad carries everything required to go live.
// The advertiser status check is done by the caller.
func CheckPublishGate(ad Ad) error {
	err := ValidateStruct(publishGate{
		Title:       strings.TrimSpace(ad.Title.Eng),
		Description: strings.TrimSpace(ad.Description.Eng),
		CTAText:     strings.TrimSpace(ad.CTAText.Eng),
		CTAURL:      ad.CTAURL,
		Tags:        ad.Tags,
	})
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		for i, m := range ve.Messages {
			switch m {
			case "title is required":
				ve.Messages[i] = "English title is required for publishing"
			case "description is required":
				ve.Messages[i] = "English description is required for publishing"
			case "ctaText is required":
				ve.Messages[i] = "English CTA text is required for publishing"
			}
		}
	}
	return err
}
