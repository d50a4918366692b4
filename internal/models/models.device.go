// FilePath: internal/models/models.device.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// JSON is a wrapper around map[string]interface{} for database storage
type JSON map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, &j)
}

type DeviceStatus string

const (
	DeviceOnline  DeviceStatus = "online"
	DeviceOffline DeviceStatus = "offline"
	DeviceError   DeviceStatus = "error"
)

// Device is a physical sensor unit. The ID is chosen by the device at
// registration time and must be globally unique; a device record is
// never recreated once the ID exists.
type Device struct {
	ID              string         `json:"id" db:"id"`
	Name            string         `json:"name" db:"name"`
	FarmID          string         `json:"farm_id" db:"farm_id"`
	Type            string         `json:"type" db:"type"`
	Location        string         `json:"location" db:"location"`
	Latitude        float64        `json:"latitude" db:"latitude"`
	Longitude       float64        `json:"longitude" db:"longitude"`
	Capabilities    pq.StringArray `json:"capabilities" db:"capabilities"`
	SensorMode      int            `json:"sensor_mode" db:"sensor_mode"`
	MACAddress      string         `json:"mac_address,omitempty" db:"mac_address"`
	Status          DeviceStatus   `json:"status" db:"status"`
	BatteryLevel    int            `json:"battery_level" db:"battery_level"`
	FirmwareVersion string         `json:"firmware_version" db:"firmware_version"`
	RegisteredBy    string         `json:"registered_by" db:"registered_by"`
	Settings        DeviceSettings `json:"settings" db:"settings"`
	Calibration     CalibrationMap `json:"calibration" db:"calibration"`
	LastData        JSON           `json:"last_data" db:"last_data"`
	LastSeen        time.Time      `json:"last_seen" db:"last_seen"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// DeviceSettings holds the firmware-facing operating parameters.
// Intervals are seconds.
type DeviceSettings struct {
	ReadingInterval      int  `json:"reading_interval"`
	TransmissionInterval int  `json:"transmission_interval"`
	SleepMode            bool `json:"sleep_mode"`
}

// Value implements the driver.Valuer interface
func (s DeviceSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface
func (s *DeviceSettings) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// DefaultDeviceSettings are applied at registration time.
func DefaultDeviceSettings() DeviceSettings {
	return DeviceSettings{
		ReadingInterval:      300,
		TransmissionInterval: 1800,
		SleepMode:            true,
	}
}

// Calibration holds per-channel correction parameters.
type Calibration struct {
	Offset   float64 `json:"offset"`
	Scale    float64 `json:"scale"`
	RangeMin float64 `json:"range_min,omitempty"`
	RangeMax float64 `json:"range_max,omitempty"`
}

// CalibrationMap maps a sensor channel name to its calibration.
type CalibrationMap map[string]Calibration

// Value implements the driver.Valuer interface
func (m CalibrationMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *CalibrationMap) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// DefaultCalibration is applied at registration time.
func DefaultCalibration() CalibrationMap {
	return CalibrationMap{
		"temperature":   {Offset: 0, Scale: 1},
		"humidity":      {Offset: 0, Scale: 1},
		"soil_moisture": {Offset: 0, Scale: 1, RangeMin: 0, RangeMax: 1023},
	}
}
