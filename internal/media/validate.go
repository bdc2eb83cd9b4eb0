package media

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"thirdcoast.systems/aquatube/internal/videoid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("videourl", func(fl validator.FieldLevel) bool {
		return videoid.IsSupportedURL(fl.Field().String())
	})
	return v
}

// fieldMessages maps "<Field>.<tag>" (or "<Field>" for any tag) to the
// message shown to clients.
var fieldMessages = map[string]string{
	"URL.required": "URL is required",
	"URL.videourl": "Invalid YouTube URL",
	"Format":       "Format must be mp3 or mp4",
}

type metadataInput struct {
	URL string `validate:"required,videourl"`
}

type downloadInput struct {
	URL    string `validate:"required,videourl"`
	Format string `validate:"required,oneof=mp3 mp4"`
}

// toValidationError turns the first validator failure into a ValidationError.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg, ok = fieldMessages[fe.Field()]
	}
	if !ok {
		msg = "invalid " + strings.ToLower(fe.Field())
	}
	return &ValidationError{Field: strings.ToLower(fe.Field()), Message: msg}
}
