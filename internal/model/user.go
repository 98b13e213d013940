package model

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User represents an authenticated user in the system
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username" validate:"required,min=3,max=50"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null;check:chk_users_role,role IN ('admin','employee')" json:"role" validate:"required,enum"`
	TokenVersion string `gorm:"type:varchar(64);default:''" json:"-"` // For single session enforcement
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash.
// Accounts migrated from the old schema still carry unsalted SHA-256 hex
// digests; those are accepted here and reported through NeedsRehash.
func (u *User) CheckPassword(password string) bool {
	if u.isLegacyHash() {
		sum := sha256.Sum256([]byte(password))
		want := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(strings.ToLower(u.PasswordHash)), []byte(want)) == 1
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// NeedsRehash reports whether the stored hash predates bcrypt.
func (u *User) NeedsRehash() bool {
	return u.isLegacyHash()
}

func (u *User) isLegacyHash() bool {
	if len(u.PasswordHash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(u.PasswordHash)
	return err == nil
}

// HasPrivilege checks if the user's role grants a specific privilege
func (u *User) HasPrivilege(code string) bool {
	return u.Role.Has(code)
}

// GetPrivilegeCodes returns all privilege codes granted by the user's role
func (u *User) GetPrivilegeCodes() []string {
	return u.Role.Privileges()
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID         uint     `json:"id"`
	Username   string   `json:"username"`
	Role       Role     `json:"role"`
	Privileges []string `json:"privileges"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		Privileges: u.GetPrivilegeCodes(),
	}
}
