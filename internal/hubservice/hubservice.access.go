// FilePath: internal/hubservice/hubservice.access.go
package hubservice

import (
	"context"

	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/models"
)

// HasFarmAccess decides whether a user may act on a farm. The checks
// run in priority order: an explicit membership row, then the two
// historical spellings of the single-owner field, then the legacy
// embedded users list. All legacy-compatibility logic lives here so
// the handlers never touch the duplicated fields directly.
//
// Pure and side-effect-free; a false result is an authorization
// failure, never a transient error.
func HasFarmAccess(farm *models.Farm, membership *models.FarmMembership, userID string) bool {
	if farm == nil || userID == "" {
		return false
	}
	if membership != nil && membership.UserID == userID && membership.FarmID == farm.ID {
		return true
	}
	if farm.OwnerID == userID {
		return true
	}
	if farm.CreatedBy == userID {
		return true
	}
	for _, u := range farm.Users {
		if u == userID {
			return true
		}
	}
	return false
}

// FarmAccess loads the farm and the user's membership and applies
// HasFarmAccess. A missing membership row is not an error; any other
// lookup failure is.
func (s *HubService) FarmAccess(ctx context.Context, farmID, userID string) (*models.Farm, error) {
	farm, err := s.Farms.Get(ctx, farmID)
	if err != nil {
		return nil, err
	}

	membership, err := s.Memberships.Get(ctx, userID, farmID)
	if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}

	if !HasFarmAccess(farm, membership, userID) {
		return nil, errors.NewAuthorizationError("no access to this farm", nil)
	}
	return farm, nil
}
