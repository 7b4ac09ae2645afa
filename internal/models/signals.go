package models

import "time"

// Profile is a member profile row as read from the profile store. Every
// optional field may be absent; the waitlist core only reads, never writes.
type Profile struct {
	UserID       string     `db:"user_id" json:"user_id"`
	Email        string     `db:"email" json:"email"`
	DisplayName  *string    `db:"display_name" json:"display_name,omitempty"`
	Bio          *string    `db:"bio" json:"bio,omitempty"`
	Location     *string    `db:"location" json:"location,omitempty"`
	Handicap     *float64   `db:"handicap" json:"handicap,omitempty"`
	FavoriteClub *string    `db:"favorite_club" json:"favorite_club,omitempty"`
	AvatarURL    *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// profileOptionalFields is the fixed field count completion is measured over.
const profileOptionalFields = 6

// Signal derives the completion ratio from the presence of the fixed set of
// optional fields.
func (p *Profile) Signal() ProfileSignal {
	filled := 0
	if p.DisplayName != nil && *p.DisplayName != "" {
		filled++
	}
	if p.Bio != nil && *p.Bio != "" {
		filled++
	}
	if p.Location != nil && *p.Location != "" {
		filled++
	}
	if p.Handicap != nil {
		filled++
	}
	if p.FavoriteClub != nil && *p.FavoriteClub != "" {
		filled++
	}
	if p.AvatarURL != nil && *p.AvatarURL != "" {
		filled++
	}
	return ProfileSignal{Completion: float64(filled) / float64(profileOptionalFields)}
}

// ProfileSignal is the optional profile-completion scoring input. A nil
// *ProfileSignal means the dimension is skipped, not an error.
type ProfileSignal struct {
	Completion float64 `json:"completion"`
}

// EquipmentSignal is the optional equipment-engagement scoring input, read
// from the equipment store. A nil *EquipmentSignal skips the dimension.
type EquipmentSignal struct {
	ItemCount    int  `json:"item_count"`
	HasPhoto     bool `json:"has_photo"`
	UniqueBrands int  `json:"unique_brands"`
}
