// FilePath: internal/models/models.reading.go
package models

import "time"

// MetricType names one reported measurement channel.
type MetricType string

const (
	MetricTemperature        MetricType = "temperature"
	MetricHumidity           MetricType = "humidity"
	MetricCO2                MetricType = "co2"
	MetricDistance1          MetricType = "distance1"
	MetricDistance2          MetricType = "distance2"
	MetricDistanceAvg        MetricType = "distance_avg"
	MetricOutdoorTemperature MetricType = "outdoor_temperature"
	MetricWifiRSSI           MetricType = "wifi_rssi"
)

// MetricTypes lists every accepted metric in payload order.
var MetricTypes = []MetricType{
	MetricTemperature,
	MetricHumidity,
	MetricCO2,
	MetricDistance1,
	MetricDistance2,
	MetricDistanceAvg,
	MetricOutdoorTemperature,
	MetricWifiRSSI,
}

// Reading is one timestamped scalar measurement of a single metric
// type from one device. Append-only; there is no update or delete
// path outside retention.
type Reading struct {
	ID         string     `json:"id" db:"id"`
	DeviceID   string     `json:"device_id" db:"device_id"`
	FarmID     string     `json:"farm_id" db:"farm_id"`
	Type       MetricType `json:"type" db:"type"`
	Value      float64    `json:"value" db:"value"`
	Timestamp  time.Time  `json:"timestamp" db:"timestamp"`
	ReceivedAt time.Time  `json:"received_at" db:"received_at"`
}

// DeviceSnapshot is the aggregated per-ingestion record: every metric
// present in one payload, plus the derived grain fill percentage when
// a distance average was reported.
type DeviceSnapshot struct {
	ID          string    `json:"id" db:"id"`
	DeviceID    string    `json:"device_id" db:"device_id"`
	FarmID      string    `json:"farm_id" db:"farm_id"`
	Metrics     JSON      `json:"metrics" db:"metrics"`
	FillPercent *float64  `json:"fill_percent,omitempty" db:"fill_percent"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	ReceivedAt  time.Time `json:"received_at" db:"received_at"`
}
