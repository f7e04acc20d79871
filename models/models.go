package models

import (
	"time"

	"marzipan/birthday"

	"gorm.io/gorm"
)

// BirthdayRecord stores one member's birthday per guild. The (guild, user)
// pair is unique; saving again replaces the previous record.
type BirthdayRecord struct {
	gorm.Model
	GuildID       string `gorm:"uniqueIndex:idx_guild_user"`
	UserID        string `gorm:"uniqueIndex:idx_guild_user"`
	Year          int
	Month         int
	Day           int
	Hour          int
	Minute        int
	Second        int
	OffsetMinutes int
}

// NewBirthdayRecord builds a record row from an already-validated birthday.
func NewBirthdayRecord(guildID, userID string, b birthday.Birthday) BirthdayRecord {
	t := b.Time()
	return BirthdayRecord{
		GuildID:       guildID,
		UserID:        userID,
		Year:          t.Year(),
		Month:         int(t.Month()),
		Day:           t.Day(),
		Hour:          t.Hour(),
		Minute:        t.Minute(),
		Second:        t.Second(),
		OffsetMinutes: b.OffsetMinutes(),
	}
}

// Birthday reconstructs the stored birthday value. It only fails if the
// row was written outside the bot and holds an impossible date.
func (r BirthdayRecord) Birthday() (birthday.Birthday, error) {
	return birthday.New(
		r.Year,
		time.Month(r.Month),
		r.Day,
		r.Hour,
		r.Minute,
		r.Second,
		r.OffsetMinutes,
	)
}

// AnnounceChannel stores a guild's birthday announcement channel.
type AnnounceChannel struct {
	gorm.Model
	GuildID   string `gorm:"uniqueIndex"`
	ChannelID string
}

// BirthdayRole stores the role granted to members on their birthdays.
type BirthdayRole struct {
	gorm.Model
	GuildID string `gorm:"uniqueIndex"`
	RoleID  string
}
