package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/reviewforge/reviewforge/internal/domain"
)

const settingsCols = `id, percentage_of_sponsors, bonus_when_registering, minimum_balance_for_submissions,
	service_availability_start_time, service_availability_end_time, timezone,
	token_validity_period_hours, contact_email, contact_phone, blockchain_address, video_url, updated_at`

func scanSettings(s scanner) (*domain.Settings, error) {
	var st domain.Settings
	var sponsorsPct, regBonus, minBalance string
	var updatedAt int64

	err := s.Scan(&st.ID, &sponsorsPct, &regBonus, &minBalance,
		&st.ServiceAvailabilityStartTime, &st.ServiceAvailabilityEndTime, &st.Timezone,
		&st.TokenValidityPeriodHours, &st.ContactEmail, &st.ContactPhone, &st.BlockchainAddress,
		&st.VideoURL, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if st.PercentageOfSponsors, err = parseDec(sponsorsPct); err != nil {
		return nil, fmt.Errorf("parse percentage_of_sponsors: %w", err)
	}
	if st.BonusWhenRegistering, err = parseDec(regBonus); err != nil {
		return nil, fmt.Errorf("parse bonus_when_registering: %w", err)
	}
	if st.MinimumBalanceForSubmissions, err = parseDec(minBalance); err != nil {
		return nil, fmt.Errorf("parse minimum_balance_for_submissions: %w", err)
	}
	st.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &st, nil
}

// GetSettings loads the singleton settings row, creating it with
// defaults on first access.
func (d *DB) GetSettings(ctx context.Context) (*domain.Settings, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+settingsCols+` FROM settings WHERE id = 1`)
	st, err := scanSettings(row)
	if err != nil {
		return nil, err
	}
	if st != nil {
		return st, nil
	}
	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO settings (id, updated_at) VALUES (1, ?)`, time.Now().Unix()); err != nil {
		return nil, err
	}
	row = d.db.QueryRowContext(ctx, `SELECT `+settingsCols+` FROM settings WHERE id = 1`)
	return scanSettings(row)
}

// GetSettingsTx loads the settings singleton within an open transaction.
// Unlike GetSettings it does not lazily create the row — callers run
// after daemon startup has already done so via GetSettings.
func (d *DB) GetSettingsTx(ctx context.Context, tx *Tx) (*domain.Settings, error) {
	row := tx.queryRow(ctx, `SELECT `+settingsCols+` FROM settings WHERE id = 1`)
	return scanSettings(row)
}

// SaveSettings persists the full settings singleton.
func (d *DB) SaveSettings(ctx context.Context, st *domain.Settings) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE settings SET percentage_of_sponsors = ?, bonus_when_registering = ?,
			minimum_balance_for_submissions = ?, service_availability_start_time = ?,
			service_availability_end_time = ?, timezone = ?, token_validity_period_hours = ?,
			contact_email = ?, contact_phone = ?, blockchain_address = ?, video_url = ?, updated_at = ?
		 WHERE id = 1`,
		decStr(st.PercentageOfSponsors), decStr(st.BonusWhenRegistering), decStr(st.MinimumBalanceForSubmissions),
		st.ServiceAvailabilityStartTime, st.ServiceAvailabilityEndTime, st.Timezone, st.TokenValidityPeriodHours,
		st.ContactEmail, st.ContactPhone, st.BlockchainAddress, st.VideoURL, time.Now().Unix(),
	)
	return err
}

// GetDailyResetTracker loads the singleton reset tracker, creating it
// at the zero time on first access.
func (d *DB) GetDailyResetTracker(ctx context.Context, tx *Tx) (*domain.DailyResetTracker, error) {
	row := tx.queryRow(ctx, `SELECT id, last_reset_time FROM daily_reset_tracker WHERE id = 1`)
	var tr domain.DailyResetTracker
	var lastReset int64
	err := row.Scan(&tr.ID, &lastReset)
	if err == sql.ErrNoRows {
		if _, err := tx.exec(ctx, `INSERT INTO daily_reset_tracker (id, last_reset_time) VALUES (1, 0)`); err != nil {
			return nil, err
		}
		return &domain.DailyResetTracker{ID: 1, LastResetTime: time.Unix(0, 0).UTC()}, nil
	}
	if err != nil {
		return nil, err
	}
	tr.LastResetTime = time.Unix(lastReset, 0).UTC()
	return &tr, nil
}

// SaveDailyResetTracker persists the tracker's last_reset_time.
func (d *DB) SaveDailyResetTracker(ctx context.Context, tx *Tx, tr *domain.DailyResetTracker) error {
	_, err := tx.exec(ctx,
		`UPDATE daily_reset_tracker SET last_reset_time = ? WHERE id = 1`, tr.LastResetTime.Unix())
	return err
}
