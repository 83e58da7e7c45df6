package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ProfileEditRequest is the wire shape of a single profile field update.
type ProfileEditRequest struct {
	Field           string `json:"field" binding:"required"`
	Value           string `json:"value"`
	CurrentPassword string `json:"current_password"`
}

// ProfileEdit is one of UsernameEdit, EmailEdit, BioEdit, ImageEdit or PasswordEdit.
type ProfileEdit interface {
	profileEdit()
}

type UsernameEdit struct {
	Username string `validate:"required,min=3,max=50,alphanum"`
}

type EmailEdit struct {
	Email string `validate:"required,email"`
}

type BioEdit struct {
	Bio string `validate:"max=1000"`
}

type ImageEdit struct {
	Image string `validate:"required,notblank,max=500"`
}

type PasswordEdit struct {
	Current string `validate:"required"`
	New     string `validate:"required,min=8,max=72,nefield=Current"`
}

func (UsernameEdit) profileEdit() {}
func (EmailEdit) profileEdit()    {}
func (BioEdit) profileEdit()      {}
func (ImageEdit) profileEdit()    {}
func (PasswordEdit) profileEdit() {}

var ErrUnknownProfileField = errors.New("unknown profile field")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterValidators(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterValidators installs the custom tags used by the DTOs of this package.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("notblank", validators.NotBlank)
}

// ParseProfileEdit decodes req into its typed variant and validates it.
func ParseProfileEdit(req ProfileEditRequest) (ProfileEdit, error) {
	var edit ProfileEdit
	switch strings.ToLower(strings.TrimSpace(req.Field)) {
	case "username":
		edit = UsernameEdit{Username: strings.TrimSpace(req.Value)}
	case "email":
		edit = EmailEdit{Email: strings.ToLower(strings.TrimSpace(req.Value))}
	case "bio":
		edit = BioEdit{Bio: strings.TrimSpace(req.Value)}
	case "image":
		edit = ImageEdit{Image: strings.TrimSpace(req.Value)}
	case "password":
		edit = PasswordEdit{Current: req.CurrentPassword, New: req.Value}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfileField, req.Field)
	}

	if err := validate.Struct(edit); err != nil {
		return nil, err
	}
	return edit, nil
}
