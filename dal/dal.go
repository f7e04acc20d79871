package dal

import (
	"log"

	"marzipan/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InitDB creates and returns a database connection.
func InitDB(dbPath string) *gorm.DB {
	db, err := gorm.Open(
		sqlite.Open(dbPath),
		&gorm.Config{},
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	log.Println("Connected to database.")

	db.AutoMigrate(
		&models.BirthdayRecord{},
		&models.AnnounceChannel{},
		&models.BirthdayRole{},
	)
	log.Println("Migrated database.")

	return db
}

// UpsertBirthday inserts or replaces the given birthday record.
func UpsertBirthday(record models.BirthdayRecord, db *gorm.DB) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guild_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"year", "month", "day",
			"hour", "minute", "second",
			"offset_minutes",
		}),
	}).Create(&record).Error
}

// GetBirthday gets the birthday record for the given guild & user.
func GetBirthday(
	guildID string,
	userID string,
	db *gorm.DB,
) (*models.BirthdayRecord, error) {
	var record models.BirthdayRecord
	err := db.Where(
		&models.BirthdayRecord{
			GuildID: guildID,
			UserID:  userID,
		},
	).Take(&record).Error

	if err != nil {
		return nil, err
	}

	return &record, nil
}

// DeleteBirthday removes the birthday record for the given guild & user,
// reporting whether one existed. The delete is unscoped: a soft-deleted
// row would keep holding the (guild, user) unique index and block a later
// re-save from ever becoming visible again.
func DeleteBirthday(guildID string, userID string, db *gorm.DB) (bool, error) {
	result := db.Unscoped().Where(
		&models.BirthdayRecord{
			GuildID: guildID,
			UserID:  userID,
		},
	).Delete(&models.BirthdayRecord{})

	return result.RowsAffected > 0, result.Error
}

// ListBirthdays returns all birthday records for the given guild.
func ListBirthdays(guildID string, db *gorm.DB) ([]models.BirthdayRecord, error) {
	var records []models.BirthdayRecord
	err := db.Where(
		&models.BirthdayRecord{GuildID: guildID},
	).Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

// UpsertAnnounceChannel inserts or updates the given announcement channel.
func UpsertAnnounceChannel(
	channel models.AnnounceChannel,
	db *gorm.DB,
) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"channel_id"}),
	}).Create(&channel).Error
}

// GetAnnounceChannel returns the saved announcement channel for the given guild.
func GetAnnounceChannel(
	guildID string,
	db *gorm.DB,
) (*models.AnnounceChannel, error) {
	var channel models.AnnounceChannel
	err := db.Where(
		&models.AnnounceChannel{
			GuildID: guildID,
		},
	).Take(&channel).Error

	if err != nil {
		return nil, err
	}

	return &channel, nil
}

// DeleteAnnounceChannel removes the announcement channel for the given
// guild, reporting whether one was set. Unscoped for the same reason as
// DeleteBirthday: the guild unique index must be free for a later re-set.
func DeleteAnnounceChannel(guildID string, db *gorm.DB) (bool, error) {
	result := db.Unscoped().Where(
		&models.AnnounceChannel{GuildID: guildID},
	).Delete(&models.AnnounceChannel{})

	return result.RowsAffected > 0, result.Error
}

// UpsertBirthdayRole inserts or updates the given birthday role.
func UpsertBirthdayRole(role models.BirthdayRole, db *gorm.DB) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role_id"}),
	}).Create(&role).Error
}

// GetBirthdayRole returns the saved birthday role for the given guild.
func GetBirthdayRole(guildID string, db *gorm.DB) (*models.BirthdayRole, error) {
	var role models.BirthdayRole
	err := db.Where(
		&models.BirthdayRole{
			GuildID: guildID,
		},
	).Take(&role).Error

	if err != nil {
		return nil, err
	}

	return &role, nil
}
