package user

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

type SignUpForm struct {
	Username  string `form:"username" binding:"required,max=150"`
	Email     string `form:"email" binding:"omitempty,email,max=254"`
	Password1 string `form:"password1" binding:"required,min=8,max=128"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type ProfileForm struct {
	FullName string `form:"full_name" binding:"max=264"`
	Address  string `form:"address" binding:"max=300"`
	City     string `form:"city" binding:"max=40"`
	Zipcode  string `form:"zipcode" binding:"max=10"`
	Country  string `form:"country" binding:"max=50"`
	Phone    string `form:"phone" binding:"max=20"`
}

func profileForm(p *Profile) ProfileForm {
	return ProfileForm{FullName: p.FullName, Address: p.Address, City: p.City, Zipcode: p.Zipcode, Country: p.Country, Phone: p.Phone}
}

func (f ProfileForm) apply(p *Profile) {
	p.FullName, p.Address, p.City = f.FullName, f.Address, f.City
	p.Zipcode, p.Country, p.Phone = f.Zipcode, f.Country, f.Phone
}

// FormErrors maps field names (the form tag) to messages. Errors not coming
// from validation land under "form".
type FormErrors map[string][]string

func (e FormErrors) Add(field, msg string) { e[field] = append(e[field], msg) }

func formErrors(err error, form any) FormErrors {
	out := FormErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("form", "The submitted form is invalid.")
		return out
	}
	t := reflect.TypeOf(form)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, fe := range verrs {
		name := fe.Field()
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if tag := f.Tag.Get("form"); tag != "" {
				name = tag
			}
		}
		out.Add(name, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return "Enter a valid value."
	}
}
