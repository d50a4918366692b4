// FilePath: internal/repository/postgres/postgres.membership.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/farmsense/farmhub/internal/database"
	"github.com/farmsense/farmhub/internal/errors"
	"github.com/farmsense/farmhub/internal/models"
)

type MembershipRepo struct {
	PostgresBaseRepo
}

func NewMembershipRepository(db database.DB) *MembershipRepo {
	repo := &PostgresBaseRepo{db: db}
	return &MembershipRepo{PostgresBaseRepo: *repo}
}

func (r *MembershipRepo) Get(ctx context.Context, userID, farmID string) (*models.FarmMembership, error) {
	membership := &models.FarmMembership{}
	query := `SELECT * FROM farm_members WHERE user_id = $1 AND farm_id = $2`

	err := r.db.GetDB().GetContext(ctx, membership, query, userID, farmID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("membership not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get membership", err)
	}
	return membership, nil
}

func (r *MembershipRepo) ListByFarm(ctx context.Context, farmID string) ([]*models.FarmMembership, error) {
	memberships := []*models.FarmMembership{}
	query := `SELECT * FROM farm_members WHERE farm_id = $1 ORDER BY granted_at`

	err := r.db.GetDB().SelectContext(ctx, &memberships, query, farmID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list memberships", err)
	}
	return memberships, nil
}
