package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ReferralRepository tracks who referred whom onto the waitlist.
type ReferralRepository struct {
	db *sqlx.DB
}

// NewReferralRepository constructs the repository.
func NewReferralRepository(db *sqlx.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// CountByReferrer returns how many applicants this email has referred.
func (r *ReferralRepository) CountByReferrer(ctx context.Context, email string) (int, error) {
	const query = `SELECT COUNT(*) FROM waitlist_referrals WHERE referrer_email = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, email); err != nil {
		return 0, fmt.Errorf("count referrals: %w", err)
	}
	return count, nil
}

// Record stores a referral edge when a submission carries an invite code that
// resolves to an existing applicant.
func (r *ReferralRepository) Record(ctx context.Context, referrerEmail, referredEmail string) error {
	const query = `INSERT INTO waitlist_referrals (id, referrer_email, referred_email, created_at)
VALUES ($1, $2, $3, $4) ON CONFLICT (referrer_email, referred_email) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), referrerEmail, referredEmail, time.Now().UTC()); err != nil {
		return fmt.Errorf("record referral: %w", err)
	}
	return nil
}

// ResolveInviteCode maps an invite code to the referrer's email, if the code
// belongs to anyone.
func (r *ReferralRepository) ResolveInviteCode(ctx context.Context, code string) (string, error) {
	const query = `SELECT email FROM waitlist_invite_codes WHERE code = $1 LIMIT 1`
	var email string
	if err := r.db.GetContext(ctx, &email, query, code); err != nil {
		return "", err
	}
	return email, nil
}
