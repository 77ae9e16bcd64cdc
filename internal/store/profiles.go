package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/janseva-labs/janseva-bot-go/internal/errors"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

// GetProfile returns the stored profile for the user, or ErrNotFound.
func (db *DB) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	const query = `
SELECT user_id, platform, name, address, city, state, language, onboarding_complete, updated_at
FROM user_profiles WHERE user_id = ?`

	var p model.UserProfile
	var complete int
	err := db.conn.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.Platform, &p.Name, &p.Address, &p.City, &p.State,
		&p.Language, &complete, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}
	p.OnboardingComplete = complete != 0

	return &p, nil
}

// PutProfile inserts or replaces the profile for the user.
// A complete flag without all onboarding fields filled is rejected so a
// stored profile marked complete always has every field.
func (db *DB) PutProfile(ctx context.Context, profile *model.UserProfile) error {
	if profile.UserID == "" {
		return apperrors.NewValidationError("user_id", "must not be empty")
	}
	if profile.OnboardingComplete && !profile.Complete() {
		return apperrors.NewValidationError("onboarding_complete", "set while onboarding fields are missing")
	}

	const query = `
INSERT INTO user_profiles (user_id, platform, name, address, city, state, language, onboarding_complete, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	platform = excluded.platform,
	name = excluded.name,
	address = excluded.address,
	city = excluded.city,
	state = excluded.state,
	language = excluded.language,
	onboarding_complete = excluded.onboarding_complete,
	updated_at = excluded.updated_at`

	complete := 0
	if profile.OnboardingComplete {
		complete = 1
	}

	_, err := db.conn.ExecContext(ctx, query,
		profile.UserID, profile.Platform, profile.Name, profile.Address,
		profile.City, profile.State, profile.Language, complete, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
