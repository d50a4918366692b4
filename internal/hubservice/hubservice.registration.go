// FilePath: internal/hubservice/hubservice.registration.go
package hubservice

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// GenerateRegistrationCode returns an 8-character code drawn uniformly
// from [A-Z0-9]. crypto/rand bytes are mapped through rejection
// sampling so no charset position is favored.
func GenerateRegistrationCode() (string, error) {
	const charset = models.RegistrationCodeCharset
	// Largest multiple of len(charset) below 256; bytes at or above
	// it are rejected to keep the draw uniform.
	max := byte(256 - (256 % len(charset)))

	code := make([]byte, models.RegistrationCodeLength)
	buf := make([]byte, 1)
	for i := 0; i < len(code); {
		if _, err := rand.Read(buf); err != nil {
			return "", errors.NewInternalError("failed to generate registration code", err)
		}
		if buf[0] >= max {
			continue
		}
		code[i] = charset[int(buf[0])%len(charset)]
		i++
	}
	return string(code), nil
}

// IssueCodeResult is returned to the dashboard so the code and its
// metadata can be handed to the physical device out-of-band.
type IssueCodeResult struct {
	Code       string    `json:"registrationCode"`
	ExpiresAt  time.Time `json:"expiresAt"`
	DeviceName string    `json:"deviceName"`
	FarmName   string    `json:"farmName"`
}

// IssueRegistrationCode creates a time-boxed, single-use onboarding
// code bound to a farm, a requested device name/location and the
// issuing user. The requester must have access to the farm.
func (s *HubService) IssueRegistrationCode(ctx context.Context, userID, farmID, deviceName, location string) (*IssueCodeResult, error) {
	farm, err := s.FarmAccess(ctx, farmID, userID)
	if err != nil {
		return nil, err
	}

	code, err := GenerateRegistrationCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rc := &models.RegistrationCode{
		Code:       code,
		FarmID:     farm.ID,
		UserID:     userID,
		DeviceName: deviceName,
		Location:   location,
		Used:       false,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.Registration.CodeTTL),
	}

	if err := s.Codes.Create(ctx, rc); err != nil {
		return nil, err
	}

	nuts.L.Infof("[Registration] Issued code %s for farm %s by user %s", code, farm.ID, userID)
	return &IssueCodeResult{
		Code:       code,
		ExpiresAt:  rc.ExpiresAt,
		DeviceName: deviceName,
		FarmName:   farm.Name,
	}, nil
}

// RegisterDeviceParams is the typed command parsed from the redemption
// request body.
type RegisterDeviceParams struct {
	DeviceID         string
	RegistrationCode string
	DeviceType       string
	Capabilities     []string
	SensorMode       *int
	MACAddress       string
}

// RegisteredDevice is the slice of the device record the firmware
// needs to start operating.
type RegisteredDevice struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	FarmID   string                `json:"farmId"`
	Settings models.DeviceSettings `json:"settings"`
}

// RegisterDevice redeems a registration code. The device insert, the
// code consumption and the farm counter increment commit as one
// transaction; the consumption is conditioned on used=false so a
// concurrent redemption of the same code cannot also succeed.
func (s *HubService) RegisterDevice(ctx context.Context, params RegisterDeviceParams) (*RegisteredDevice, error) {
	if params.DeviceID == "" || params.RegistrationCode == "" {
		return nil, errors.NewValidationError("deviceId and registrationCode are required", nil)
	}
	if params.SensorMode != nil && *params.SensorMode != 0 && *params.SensorMode != 1 {
		return nil, errors.NewValidationError("sensorMode must be 0 or 1", nil)
	}

	rc, err := s.Codes.Get(ctx, params.RegistrationCode)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewValidationError("invalid registration code", nil)
		}
		return nil, err
	}

	now := time.Now()
	if rc.Expired(now) {
		return nil, errors.NewCodeExpiredError("registration code expired")
	}
	if rc.Used {
		return nil, errors.NewCodeUsedError("registration code already used")
	}

	exists, err := s.Devices.Exists(ctx, params.DeviceID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.NewConflictError("device already registered", nil)
	}

	// The issuing user's access is re-validated at redemption time.
	farm, err := s.Farms.Get(ctx, rc.FarmID)
	if err != nil {
		return nil, err
	}
	membership, err := s.Memberships.Get(ctx, rc.UserID, rc.FarmID)
	if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}
	if !HasFarmAccess(farm, membership, rc.UserID) {
		return nil, errors.NewAuthorizationError("issuing user no longer has access to this farm", nil)
	}

	sensorMode := 0
	if params.SensorMode != nil {
		sensorMode = *params.SensorMode
	}

	device := &models.Device{
		ID:           params.DeviceID,
		Name:         rc.DeviceName,
		FarmID:       farm.ID,
		Type:         params.DeviceType,
		Location:     rc.Location,
		Capabilities: params.Capabilities,
		SensorMode:   sensorMode,
		MACAddress:   params.MACAddress,
		Status:       models.DeviceOnline,
		BatteryLevel: 100,
		RegisteredBy: rc.UserID,
		Settings:     models.DefaultDeviceSettings(),
		Calibration:  models.DefaultCalibration(),
		LastData:     models.JSON{},
		LastSeen:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx, err := s.Codes.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	if err := s.Devices.CreateTx(ctx, tx, device); err != nil {
		return nil, err
	}

	rows, err := s.Codes.Consume(ctx, tx, rc.Code, device.ID, now)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Another device won the race between our read and this write.
		return nil, errors.NewCodeUsedError("registration code already used")
	}

	if err := s.Farms.IncrementDeviceCount(ctx, tx, farm.ID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewDatabaseError("failed to commit device registration", err)
	}

	nuts.L.Infof("[Registration] Device %s registered on farm %s via code %s", device.ID, farm.ID, rc.Code)
	return &RegisteredDevice{
		ID:       device.ID,
		Name:     device.Name,
		FarmID:   device.FarmID,
		Settings: device.Settings,
	}, nil
}
