package hubservice

import (
	"context"
	"testing"
	"time"

	"github.com/farmsense/farmhub/internal/config"
	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/models"
	"github.com/stretchr/testify/assert"
)

func newTestService(farms *MockFarmRepository, memberships *MockMembershipRepository, devices *MockDeviceRepository, codes *MockRegistrationCodeRepository, readings *MockReadingRepository) *HubService {
	return New(farms, memberships, devices, codes, readings, nil, config.RegistrationConfig{
		CodeTTL:        24 * time.Hour,
		ReaperInterval: 24 * time.Hour,
	})
}

func TestHasFarmAccess(t *testing.T) {
	farm := &models.Farm{ID: "farm1", OwnerID: "owner", CreatedBy: "legacy-owner", Users: []string{"embedded-user"}}

	t.Run("MembershipRow", func(t *testing.T) {
		membership := &models.FarmMembership{UserID: "member", FarmID: "farm1", Role: models.RoleViewer}
		assert.True(t, HasFarmAccess(farm, membership, "member"))
	})

	t.Run("OwnerField", func(t *testing.T) {
		assert.True(t, HasFarmAccess(farm, nil, "owner"))
	})

	t.Run("LegacyOwnerSpelling", func(t *testing.T) {
		assert.True(t, HasFarmAccess(farm, nil, "legacy-owner"))
	})

	t.Run("LegacyEmbeddedUsersList", func(t *testing.T) {
		assert.True(t, HasFarmAccess(farm, nil, "embedded-user"))
	})

	t.Run("NoMatch", func(t *testing.T) {
		assert.False(t, HasFarmAccess(farm, nil, "stranger"))
	})

	t.Run("NilFarm", func(t *testing.T) {
		assert.False(t, HasFarmAccess(nil, nil, "owner"))
	})

	t.Run("EmptyUser", func(t *testing.T) {
		assert.False(t, HasFarmAccess(farm, nil, ""))
	})

	t.Run("MembershipForOtherFarmDoesNotLeak", func(t *testing.T) {
		membership := &models.FarmMembership{UserID: "member", FarmID: "farm2", Role: models.RoleOwner}
		assert.False(t, HasFarmAccess(farm, membership, "member"))
	})
}

func TestFarmAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingMembershipFallsThroughToOwner", func(t *testing.T) {
		farms := new(MockFarmRepository)
		memberships := new(MockMembershipRepository)
		svc := newTestService(farms, memberships, new(MockDeviceRepository), new(MockRegistrationCodeRepository), new(MockReadingRepository))

		farm := &models.Farm{ID: "farm1", OwnerID: "owner"}
		farms.On("Get", ctx, "farm1").Return(farm, nil).Once()
		memberships.On("Get", ctx, "owner", "farm1").Return(nil, errors.NewNotFoundError("membership not found", nil)).Once()

		got, err := svc.FarmAccess(ctx, "farm1", "owner")

		assert.NoError(t, err)
		assert.Equal(t, farm, got)
		farms.AssertExpectations(t)
		memberships.AssertExpectations(t)
	})

	t.Run("Forbidden", func(t *testing.T) {
		farms := new(MockFarmRepository)
		memberships := new(MockMembershipRepository)
		svc := newTestService(farms, memberships, new(MockDeviceRepository), new(MockRegistrationCodeRepository), new(MockReadingRepository))

		farms.On("Get", ctx, "farm1").Return(&models.Farm{ID: "farm1", OwnerID: "owner"}, nil).Once()
		memberships.On("Get", ctx, "stranger", "farm1").Return(nil, errors.NewNotFoundError("membership not found", nil)).Once()

		_, err := svc.FarmAccess(ctx, "farm1", "stranger")

		assert.Error(t, err)
		apiErr, ok := err.(*errors.APIError)
		assert.True(t, ok)
		assert.Equal(t, errors.ErrorTypeAuthorize, apiErr.Type)
	})

	t.Run("FarmNotFound", func(t *testing.T) {
		farms := new(MockFarmRepository)
		svc := newTestService(farms, new(MockMembershipRepository), new(MockDeviceRepository), new(MockRegistrationCodeRepository), new(MockReadingRepository))

		farms.On("Get", ctx, "missing").Return(nil, errors.NewNotFoundError("farm not found", nil)).Once()

		_, err := svc.FarmAccess(ctx, "missing", "owner")

		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("MembershipLookupErrorIsNotSwallowed", func(t *testing.T) {
		farms := new(MockFarmRepository)
		memberships := new(MockMembershipRepository)
		svc := newTestService(farms, memberships, new(MockDeviceRepository), new(MockRegistrationCodeRepository), new(MockReadingRepository))

		farms.On("Get", ctx, "farm1").Return(&models.Farm{ID: "farm1"}, nil).Once()
		memberships.On("Get", ctx, "user", "farm1").Return(nil, errors.NewDatabaseError("boom", nil)).Once()

		_, err := svc.FarmAccess(ctx, "farm1", "user")

		apiErr, ok := err.(*errors.APIError)
		assert.True(t, ok)
		assert.Equal(t, errors.ErrorTypeDatabase, apiErr.Type)
	})
}
