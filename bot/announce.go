package bot

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"marzipan/birthday"
	"marzipan/dal"
	"marzipan/discordutils"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// sendEmbed posts an embed to a channel; swapped out in tests.
var sendEmbed = func(
	session *discordgo.Session,
	channelID string,
	embed *discordgo.MessageEmbed,
) (*discordgo.Message, error) {
	return session.ChannelMessageSendEmbed(channelID, embed)
}

// CheckBirthdays sweeps all joined guilds, announcing birthdays that fall
// inside the current due window and keeping birthday roles in step with
// who is celebrating today. Each sweep reads a fresh snapshot. Only the
// timer runs this; anything else would overlap the timer's due windows
// and announce the same birthday twice.
func CheckBirthdays(
	session *discordgo.Session,
	db *gorm.DB,
	halfWindow time.Duration,
) {
	now := time.Now()

	for _, guild := range session.State.Guilds {
		entries := guildEntries(guild.ID, db)

		updateBirthdayRoles(session, guild, entries, now, db)
		announceDueBirthdays(session, guild, entries, now, halfWindow, db)
	}
}

// RefreshBirthdayRoles re-checks birthday roles in all joined guilds
// without announcing anything. Command handlers use this after a save so
// a fresh birthday takes effect immediately while announcements stay on
// the timer.
func RefreshBirthdayRoles(session *discordgo.Session, db *gorm.DB) {
	now := time.Now()

	for _, guild := range session.State.Guilds {
		updateBirthdayRoles(session, guild, guildEntries(guild.ID, db), now, db)
	}
}

// guildEntries loads a guild's birthday records as scheduler entries,
// skipping rows that no longer reconstruct into a valid birthday.
func guildEntries(guildID string, db *gorm.DB) []birthday.Entry {
	records, err := dal.ListBirthdays(guildID, db)
	if err != nil {
		log.Printf("Failed to list birthdays for guild %v: %v", guildID, err)
		return nil
	}

	entries := make([]birthday.Entry, 0, len(records))
	for _, record := range records {
		b, err := record.Birthday()
		if err != nil {
			log.Printf(
				"Skipping unusable birthday record for %v in %v: %v",
				record.UserID,
				record.GuildID,
				err,
			)
			continue
		}
		entries = append(entries, birthday.Entry{
			UserID:   record.UserID,
			GuildID:  record.GuildID,
			Birthday: b,
		})
	}
	return entries
}

func updateBirthdayRoles(
	session *discordgo.Session,
	guild *discordgo.Guild,
	entries []birthday.Entry,
	now time.Time,
	db *gorm.DB,
) {
	role, ok := roleForGuild(guild, db)
	if !ok {
		return
	}

	byUser := lo.KeyBy(entries, func(entry birthday.Entry) string {
		return entry.UserID
	})

	for _, member := range guild.Members {
		entry, known := byUser[member.User.ID]
		celebrating := known && entry.Birthday.OccursOn(now)
		hasRole := discordutils.MemberHasRole(member, role)

		switch {
		case celebrating && !hasRole:
			discordutils.AddRole(guild, role, member, session)
		case !celebrating && hasRole:
			discordutils.RemoveRole(guild, role, member, session)
		}
	}
}

func announceDueBirthdays(
	session *discordgo.Session,
	guild *discordgo.Guild,
	entries []birthday.Entry,
	now time.Time,
	halfWindow time.Duration,
	db *gorm.DB,
) {
	due := birthday.Due(now, halfWindow, entries)
	if len(due) == 0 {
		return
	}

	channel, err := dal.GetAnnounceChannel(guild.ID, db)
	if err != nil {
		log.Printf(
			"Can't announce birthdays in %v: %v",
			guild.Name,
			err,
		)
		return
	}

	for _, entry := range due {
		announceBirthday(entry, channel.ChannelID, now, session)
	}
}

func roleForGuild(guild *discordgo.Guild, db *gorm.DB) (*discordgo.Role, bool) {
	birthdayRole, err := dal.GetBirthdayRole(guild.ID, db)
	if err != nil {
		return nil, false
	}

	for _, role := range guild.Roles {
		if role.ID == birthdayRole.RoleID {
			return role, true
		}
	}

	return nil, false
}

func announceBirthday(
	entry birthday.Entry,
	channelID string,
	now time.Time,
	session *discordgo.Session,
) {
	_, err := sendEmbed(
		session,
		channelID,
		&discordgo.MessageEmbed{
			Title: "Happy birthday!",
			Description: fmt.Sprintf(
				"It's <@%v>'s birthday! :partying_face:",
				entry.UserID,
			),
			Fields: []*discordgo.MessageEmbedField{
				{
					Name:   "Age",
					Value:  strconv.Itoa(entry.Birthday.Age(now)),
					Inline: true,
				},
			},
		},
	)

	if err != nil {
		log.Printf(
			"Failed to announce %v's birthday in %v: %v",
			entry.UserID,
			channelID,
			err,
		)
	}
}
