package hubservice

import (
	"context"

	"github.com/farmsense/farmhub/internal/config"
	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/models"
	"github.com/farmsense/farmhub/internal/repository"
)

// StatusCache is the subset of the redis cache the hub needs. Nil is
// a valid value; every use is best-effort.
type StatusCache interface {
	SetDeviceStatus(ctx context.Context, snapshot *models.DeviceSnapshot) error
	GetDeviceStatus(ctx context.Context, deviceID string) (*models.DeviceSnapshot, error)
}

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Farms        repository.FarmRepository
	Memberships  repository.MembershipRepository
	Devices      repository.DeviceRepository
	Codes        repository.RegistrationCodeRepository
	Readings     repository.ReadingRepository
	Status       StatusCache
	Registration config.RegistrationConfig
}

// New creates a new HubService instance
func New(
	farms repository.FarmRepository,
	memberships repository.MembershipRepository,
	devices repository.DeviceRepository,
	codes repository.RegistrationCodeRepository,
	readings repository.ReadingRepository,
	status StatusCache,
	registration config.RegistrationConfig,
) *HubService {
	return &HubService{
		Farms:        farms,
		Memberships:  memberships,
		Devices:      devices,
		Codes:        codes,
		Readings:     readings,
		Status:       status,
		Registration: registration,
	}
}

// Validate checks if all required repositories are initialized
func (s *HubService) Validate() error {
	if s.Farms == nil {
		return ErrMissingRepository("farms")
	}
	if s.Memberships == nil {
		return ErrMissingRepository("memberships")
	}
	if s.Devices == nil {
		return ErrMissingRepository("devices")
	}
	if s.Codes == nil {
		return ErrMissingRepository("codes")
	}
	if s.Readings == nil {
		return ErrMissingRepository("readings")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}
