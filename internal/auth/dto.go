package auth

import (
	"strings"

	"github.com/frahmantamala/meal-scan/internal"
	"github.com/frahmantamala/meal-scan/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d *LoginDTO) Normalize() {
	d.Username = strings.TrimSpace(d.Username)
}

func (d LoginDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MaxLength(255)
	v.Field("password", d.Password).Required()
	return v.Validate()
}

type VerifyDTO struct {
	Token string `json:"token"`
}
