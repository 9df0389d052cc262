package authform

import (
	"errors"
	"net/mail"
	"strings"

	domainauth "github.com/target/carecircle/internal/domain/auth"
)

// PasswordMismatchMessage is shown when the signup passwords differ.
const PasswordMismatchMessage = "Passwords don't match"

// ValidationError is a local precondition failure. It never reaches the
// identity service.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrPasswordMismatch is the signup confirmation failure.
var ErrPasswordMismatch = &ValidationError{Field: "confirm_password", Message: PasswordMismatchMessage}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Submission is a validated payload for one of the two forms.
type Submission interface {
	Form() Form
	Validate() error
}

// LoginSubmission is the login form payload.
type LoginSubmission struct {
	Email    string
	Password string
}

// Form implements Submission.
func (LoginSubmission) Form() Form { return Login }

// Validate mirrors the browser's required and type=email checks.
func (s LoginSubmission) Validate() error {
	if err := validateEmail(s.Email); err != nil {
		return err
	}
	return required("password", "Password", s.Password)
}

// Credentials returns the trimmed email with the password untouched.
func (s LoginSubmission) Credentials() domainauth.Credentials {
	return domainauth.Credentials{Email: strings.TrimSpace(s.Email), Password: s.Password}
}

// SignupSubmission is the signup form payload.
type SignupSubmission struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Form implements Submission.
func (SignupSubmission) Form() Form { return Signup }

// Validate runs the required-field checks then the password confirmation check.
func (s SignupSubmission) Validate() error {
	if err := required("full_name", "Full name", s.FullName); err != nil {
		return err
	}
	if err := validateEmail(s.Email); err != nil {
		return err
	}
	if err := required("password", "Password", s.Password); err != nil {
		return err
	}
	if err := required("confirm_password", "Confirm password", s.ConfirmPassword); err != nil {
		return err
	}
	if s.Password != s.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

// Credentials returns the trimmed email with the password untouched.
func (s SignupSubmission) Credentials() domainauth.Credentials {
	return domainauth.Credentials{Email: strings.TrimSpace(s.Email), Password: s.Password}
}

// Profile returns the account metadata sent with the sign-up.
func (s SignupSubmission) Profile() domainauth.Profile {
	return domainauth.Profile{FullName: strings.TrimSpace(s.FullName)}
}

func required(field, label, v string) error {
	if strings.TrimSpace(v) == "" {
		return &ValidationError{Field: field, Message: label + " is required."}
	}
	return nil
}

func validateEmail(v string) error {
	if err := required("email", "Email", v); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(v))
	if err != nil || addr.Name != "" || !strings.Contains(addr.Address, "@") {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address."}
	}
	return nil
}
