package web

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type signupForm struct {
	Username string `label:"Username" validate:"required,max=64"`
	Email    string `label:"E-mail" validate:"required,email"`
	Password string `label:"Password" validate:"required,min=6"`
	ImageURL string `label:"Image URL" validate:"omitempty,url"`
}

func parseSignupForm(r *http.Request) signupForm {
	return signupForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		ImageURL: strings.TrimSpace(r.PostFormValue("image_url")),
	}
}

type loginForm struct {
	Username string `label:"Username" validate:"required"`
	Password string `label:"Password" validate:"required"`
}

func parseLoginForm(r *http.Request) loginForm {
	return loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

// messageForm mirrors the schema's limit so the user sees a form error
// instead of a failed insert.
type messageForm struct {
	Text string `label:"Text" validate:"required,max=140"`
}

type profileForm struct {
	Username       string `label:"Username" validate:"required,max=64"`
	Email          string `label:"E-mail" validate:"required,email"`
	ImageURL       string `label:"Image URL" validate:"omitempty,url"`
	HeaderImageURL string `label:"Header Image URL" validate:"omitempty,url"`
	Bio            string `label:"Bio" validate:"max=300"`
	Location       string `label:"Location" validate:"max=64"`
	Password       string `label:"Password" validate:"required"`
}

func parseProfileForm(r *http.Request) profileForm {
	return profileForm{
		Username:       strings.TrimSpace(r.PostFormValue("username")),
		Email:          strings.TrimSpace(r.PostFormValue("email")),
		ImageURL:       strings.TrimSpace(r.PostFormValue("image_url")),
		HeaderImageURL: strings.TrimSpace(r.PostFormValue("header_image_url")),
		Bio:            r.PostFormValue("bio"),
		Location:       strings.TrimSpace(r.PostFormValue("location")),
		Password:       r.PostFormValue("password"),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
		return f.Name
	})
	return v
}

// validationMessages turns a validator error into sentences for the form.
func validationMessages(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s is required.", fe.Field()))
		case "email":
			out = append(out, "Invalid email address.")
		case "url":
			out = append(out, fmt.Sprintf("%s must be a URL.", fe.Field()))
		case "min":
			out = append(out, fmt.Sprintf("%s must be at least %s characters.", fe.Field(), fe.Param()))
		case "max":
			out = append(out, fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param()))
		default:
			out = append(out, fmt.Sprintf("%s is invalid.", fe.Field()))
		}
	}
	return out
}
