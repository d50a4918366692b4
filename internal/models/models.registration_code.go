// FilePath: internal/models/models.registration_code.go
package models

import (
	"database/sql"
	"time"
)

// RegistrationCodeCharset is the alphabet codes are drawn from.
const RegistrationCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RegistrationCodeLength is the fixed code length.
const RegistrationCodeLength = 8

// RegistrationCode is a short-lived, single-use credential binding a
// not-yet-existing device to a farm. The code string itself is the
// primary key. Lifecycle: created unused, consumed exactly once by a
// device registration, or deleted by the reaper after expiry.
type RegistrationCode struct {
	Code       string       `json:"code" db:"code"`
	FarmID     string       `json:"farm_id" db:"farm_id"`
	UserID     string       `json:"user_id" db:"user_id"`
	DeviceName string       `json:"device_name" db:"device_name"`
	Location   string       `json:"location" db:"location"`
	Used       bool         `json:"used" db:"used"`
	DeviceID   string       `json:"device_id,omitempty" db:"device_id"`
	UsedAt     sql.NullTime `json:"used_at,omitempty" db:"used_at"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	ExpiresAt  time.Time    `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the code is past its expiry at t.
func (c *RegistrationCode) Expired(t time.Time) bool {
	return t.After(c.ExpiresAt)
}
