package authform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Transitions(t *testing.T) {
	var s State
	assert.Equal(t, Closed, s.Phase())

	s = s.Open()
	assert.Equal(t, OpenLogin, s.Phase())

	s = s.Toggle()
	assert.Equal(t, OpenSignup, s.Phase())
	assert.True(t, s.DialogVisible)

	s = s.Toggle()
	assert.Equal(t, OpenLogin, s.Phase())
}

func TestState_ToggleClearsError(t *testing.T) {
	s := State{DialogVisible: true, LastError: "Invalid login credentials"}

	s = s.Toggle()
	assert.Empty(t, s.LastError)

	s.LastError = "Passwords don't match"
	s = s.Toggle()
	assert.Empty(t, s.LastError)
	assert.Equal(t, Login, s.ActiveForm)
}

func TestState_CloseKeepsActiveForm(t *testing.T) {
	s := State{}.Open().Show(Signup).Close()
	assert.Equal(t, Closed, s.Phase())
	assert.Equal(t, Signup, s.ActiveForm)

	// reopening always starts on login
	assert.Equal(t, OpenLogin, s.Open().Phase())
}

func TestState_Labels(t *testing.T) {
	s := State{}.Open()
	assert.Equal(t, "Login to CareCircle", s.Title())
	assert.Equal(t, "Sign In", s.SubmitLabel())
	s.IsSubmitting = true
	assert.Equal(t, "Signing in...", s.SubmitLabel())

	s = s.Show(Signup)
	assert.Equal(t, "Create your account", s.Title())
	assert.Equal(t, "Creating account...", s.SubmitLabel())
}

func TestParseForm(t *testing.T) {
	f, err := ParseForm("SignUp")
	require.NoError(t, err)
	assert.Equal(t, Signup, f)

	f, err = ParseForm("")
	require.NoError(t, err)
	assert.Equal(t, Login, f)

	_, err = ParseForm("reset")
	assert.Error(t, err)

	assert.Equal(t, "signup", Signup.String())
	assert.Equal(t, "login", Login.String())
}

func TestSignupSubmission_PasswordMismatch(t *testing.T) {
	s := SignupSubmission{FullName: "Ada", Email: "ada@example.com", Password: "abc123", ConfirmPassword: "xyz456"}
	err := s.Validate()
	require.Error(t, err)
	assert.Equal(t, "Passwords don't match", err.Error())
	assert.True(t, IsValidation(err))
}

func TestSubmission_RequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		sub   Submission
		field string
	}{
		{"login missing email", LoginSubmission{Password: "x"}, "email"},
		{"login bad email", LoginSubmission{Email: "not-an-email", Password: "x"}, "email"},
		{"login missing password", LoginSubmission{Email: "a@example.com"}, "password"},
		{"signup missing name", SignupSubmission{Email: "a@example.com", Password: "x", ConfirmPassword: "x"}, "full_name"},
		{"signup missing confirm", SignupSubmission{FullName: "A", Email: "a@example.com", Password: "x"}, "confirm_password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sub.Validate()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestSubmission_Valid(t *testing.T) {
	login := LoginSubmission{Email: " ada@example.com ", Password: " secret "}
	require.NoError(t, login.Validate())
	assert.Equal(t, "ada@example.com", login.Credentials().Email)
	assert.Equal(t, " secret ", login.Credentials().Password)

	signup := SignupSubmission{FullName: " Ada Lovelace ", Email: "ada@example.com", Password: "p", ConfirmPassword: "p"}
	require.NoError(t, signup.Validate())
	assert.Equal(t, "Ada Lovelace", signup.Profile().FullName)
	assert.Equal(t, Signup, signup.Form())
}
