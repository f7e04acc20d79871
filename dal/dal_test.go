package dal

import (
	"testing"
	"time"

	"marzipan/birthday"
	"marzipan/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testRecord(t *testing.T, guildID, userID, date string) models.BirthdayRecord {
	t.Helper()
	b, err := birthday.Parse(date)
	require.NoError(t, err)
	return models.NewBirthdayRecord(guildID, userID, b)
}

func TestUpsertAndGetBirthday(t *testing.T) {
	req := require.New(t)
	db := InitDB(":memory:")

	req.NoError(UpsertBirthday(testRecord(t, "g1", "u1", "1 November 2007"), db))

	record, err := GetBirthday("g1", "u1", db)
	req.NoError(err)
	req.Equal(2007, record.Year)
	req.Equal(int(time.November), record.Month)
	req.Equal(1, record.Day)

	// A second save replaces the record for the same (guild, user).
	req.NoError(UpsertBirthday(
		testRecord(t, "g1", "u1", "23 June 1996, 14:35, +09:00"),
		db,
	))

	record, err = GetBirthday("g1", "u1", db)
	req.NoError(err)
	req.Equal(1996, record.Year)
	req.Equal(14, record.Hour)
	req.Equal(9*60, record.OffsetMinutes)

	// Same user, different guild, is a separate record.
	req.NoError(UpsertBirthday(testRecord(t, "g2", "u1", "2002-07-19"), db))
	record, err = GetBirthday("g2", "u1", db)
	req.NoError(err)
	req.Equal(2002, record.Year)
}

func TestGetBirthdayMissing(t *testing.T) {
	db := InitDB(":memory:")

	// Callers distinguish "not registered" from store faults by this
	// sentinel, so it's part of the contract.
	_, err := GetBirthday("g1", "nobody", db)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteBirthday(t *testing.T) {
	req := require.New(t)
	db := InitDB(":memory:")

	req.NoError(UpsertBirthday(testRecord(t, "g1", "u1", "1 November 2007"), db))

	existed, err := DeleteBirthday("g1", "u1", db)
	req.NoError(err)
	req.True(existed)

	existed, err = DeleteBirthday("g1", "u1", db)
	req.NoError(err)
	req.False(existed)

	_, err = GetBirthday("g1", "u1", db)
	req.Error(err)
}

func TestBirthdaySaveAfterForget(t *testing.T) {
	req := require.New(t)
	db := InitDB(":memory:")

	// Save, forget, save again: the second save must come back.
	req.NoError(UpsertBirthday(testRecord(t, "g1", "u1", "1 November 2007"), db))

	existed, err := DeleteBirthday("g1", "u1", db)
	req.NoError(err)
	req.True(existed)

	req.NoError(UpsertBirthday(testRecord(t, "g1", "u1", "2002-07-19"), db))

	record, err := GetBirthday("g1", "u1", db)
	req.NoError(err)
	req.Equal(2002, record.Year)

	records, err := ListBirthdays("g1", db)
	req.NoError(err)
	req.Len(records, 1)
}

func TestAnnounceChannelSetAfterForget(t *testing.T) {
	req := require.New(t)
	db := InitDB(":memory:")

	req.NoError(UpsertAnnounceChannel(
		models.AnnounceChannel{GuildID: "g1", ChannelID: "c1"},
		db,
	))

	existed, err := DeleteAnnounceChannel("g1", db)
	req.NoError(err)
	req.True(existed)

	req.NoError(UpsertAnnounceChannel(
		models.AnnounceChannel{GuildID: "g1", ChannelID: "c2"},
		db,
	))

	channel, err := GetAnnounceChannel("g1", db)
	req.NoError(err)
	req.Equal("c2", channel.ChannelID)
}

func TestListBirthdays(t *testing.T) {
	req := require.New(t)
	db := InitDB(":memory:")

	req.NoError(UpsertBirthday(testRecord(t, "g1", "u1", "1 November 2007"), db))
	req.NoError(UpsertBirthday(testRecord(t, "g1", "u2", "2002-07-19"), db))
	req.NoError(UpsertBirthday(testRecord(t, "g2", "u3", "19 July 2002"), db))

	records, err := ListBirthdays("g1", db)
	req.NoError(err)
	req.Len(records, 2)

	records, err = ListBirthdays("g3", db)
	req.NoError(err)
	req.Empty(records)
}

func TestAnnounceChannel(t *testing.T) {
	req := require.New(t)
	db := InitDB(":memory:")

	req.NoError(UpsertAnnounceChannel(
		models.AnnounceChannel{GuildID: "g1", ChannelID: "c1"},
		db,
	))

	channel, err := GetAnnounceChannel("g1", db)
	req.NoError(err)
	req.Equal("c1", channel.ChannelID)

	req.NoError(UpsertAnnounceChannel(
		models.AnnounceChannel{GuildID: "g1", ChannelID: "c2"},
		db,
	))

	channel, err = GetAnnounceChannel("g1", db)
	req.NoError(err)
	req.Equal("c2", channel.ChannelID)

	existed, err := DeleteAnnounceChannel("g1", db)
	req.NoError(err)
	req.True(existed)

	existed, err = DeleteAnnounceChannel("g1", db)
	req.NoError(err)
	req.False(existed)
}

func TestBirthdayRole(t *testing.T) {
	req := require.New(t)
	db := InitDB(":memory:")

	_, err := GetBirthdayRole("g1", db)
	req.Error(err)

	req.NoError(UpsertBirthdayRole(
		models.BirthdayRole{GuildID: "g1", RoleID: "r1"},
		db,
	))
	req.NoError(UpsertBirthdayRole(
		models.BirthdayRole{GuildID: "g1", RoleID: "r2"},
		db,
	))

	role, err := GetBirthdayRole("g1", db)
	req.NoError(err)
	req.Equal("r2", role.RoleID)
}
