// FilePath: internal/models/models.farm.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Farm is a tenant scope owning one or more devices.
//
// OwnerID and CreatedBy are two historical spellings of the same
// single-owner concept; Users is an even older embedded member list.
// All three are kept for records that predate the farm_members table.
// Access checks live in hubservice.HasFarmAccess, nowhere else.
type Farm struct {
	ID              string          `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	OwnerID         string          `json:"owner_id" db:"owner_id"`
	CreatedBy       string          `json:"created_by,omitempty" db:"created_by"`
	Users           pq.StringArray  `json:"users,omitempty" db:"users"`
	DeviceCount     int             `json:"device_count" db:"device_count"`
	LastDeviceAdded time.Time       `json:"last_device_added" db:"last_device_added"`
	DeviceStatus    DeviceStatusMap `json:"device_status" db:"device_status"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// DeviceSummary is the denormalized per-device entry kept on the farm
// record so the dashboard can render a farm overview with one read.
type DeviceSummary struct {
	LastUpdate  time.Time `json:"last_update"`
	Temperature *float64  `json:"temperature,omitempty"`
	Humidity    *float64  `json:"humidity,omitempty"`
	CO2         *float64  `json:"co2,omitempty"`
	FillPercent *float64  `json:"fill_percent,omitempty"`
	Status      string    `json:"status"`
}

// DeviceStatusMap maps deviceID to its latest summary, stored as JSONB.
type DeviceStatusMap map[string]DeviceSummary

// Value implements the driver.Valuer interface
func (m DeviceStatusMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *DeviceStatusMap) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// MembershipRole is the role a user holds on a farm.
type MembershipRole string

const (
	RoleOwner   MembershipRole = "owner"
	RoleManager MembershipRole = "manager"
	RoleViewer  MembershipRole = "viewer"
)

// FarmMembership ties a user to a farm with a role. Created by
// farm-management flows; the hub only reads it for access checks.
type FarmMembership struct {
	UserID    string         `json:"user_id" db:"user_id"`
	FarmID    string         `json:"farm_id" db:"farm_id"`
	Role      MembershipRole `json:"role" db:"role"`
	GrantedAt time.Time      `json:"granted_at" db:"granted_at"`
}
