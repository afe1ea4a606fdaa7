package services

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rpupo63/project-showcase-backend/errs"
)

var githubHandlePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names so errors match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("github_handle", func(fl validator.FieldLevel) bool {
		return githubHandlePattern.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct runs struct tags and converts the first failure into an ApiErr.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewBadRequestError(err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return errs.NewMissingRequiredFieldError(fe.Field())
	case "max":
		return errs.NewInvalidFieldError(fe.Field(), fmt.Sprintf("must be at most %s characters", fe.Param()))
	case "min":
		return errs.NewInvalidFieldError(fe.Field(), fmt.Sprintf("must be at least %s characters", fe.Param()))
	case "email":
		return errs.NewInvalidFieldError(fe.Field(), "must be a valid email address")
	case "url", "http_url":
		return errs.NewInvalidFieldError(fe.Field(), "must be a valid URL")
	case "github_handle":
		return errs.NewInvalidFieldError(fe.Field(), "must be a valid GitHub username")
	}
	return errs.NewInvalidFieldError(fe.Field(), "failed "+fe.Tag()+" validation")
}

// optional trims s and maps blank values to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// GithubUsernameFromURL extracts the account name from a github.com profile
// or repository URL. Other hosts yield "".
func GithubUsernameFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host != "github.com" && host != "www.github.com" {
		return ""
	}
	segment := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)[0]
	if !githubHandlePattern.MatchString(segment) {
		return ""
	}
	return segment
}
