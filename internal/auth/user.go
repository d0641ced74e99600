package auth

import (
	"github.com/frahmantamala/meal-scan/internal"
	userDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/user"
	"golang.org/x/crypto/bcrypt"
)

// User is an operator account. Department approvers grant overtime; admins
// may also revoke grants.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
}

func (u *User) Actor() internal.Actor {
	return internal.Actor{Username: u.Username, IsAdmin: u.IsAdmin}
}

func FromDataModel(u *userDatamodel.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		IsAdmin:      u.IsAdmin,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	if u == nil {
		return nil
	}
	return &userDatamodel.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		IsAdmin:      u.IsAdmin,
	}
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
