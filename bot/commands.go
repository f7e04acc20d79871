package bot

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"marzipan/birthday"
	"marzipan/dal"
	"marzipan/discordutils"
	"marzipan/models"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const birthdaySaveCooldown = 3 * 24 * time.Hour
const prettyDateFormat = "2006-01-02"
const prettyTimeFormat = "15:04:05"

// maxUpcoming caps /birthday-next; Discord embeds show at most 25 fields.
const maxUpcoming = 25

// Birthday looks up a birthday in the database.
func (bot *Bot) Birthday(
	i *discordgo.InteractionCreate,
	db *gorm.DB,
) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	var user *discordgo.User
	if len(i.Data.Options) > 0 {
		user = i.Data.Options[0].UserValue(nil)
	} else {
		user = i.Member.User
	}

	var reply string

	record, err := dal.GetBirthday(i.GuildID, user.ID, db)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		reply = fmt.Sprintf(
			"%v hasn't registered their birthday with me yet.",
			user.Mention(),
		)
	} else if err != nil {
		log.Printf(
			"Failed to look up %v's birthday in %v: %v",
			user.ID,
			i.GuildID,
			err,
		)
		reply = "I couldn't reach my database. Please try again later."
	} else if b, err := record.Birthday(); err != nil {
		log.Printf(
			"Stored birthday for %v in %v doesn't parse: %v",
			user.ID,
			i.GuildID,
			err,
		)
		reply = fmt.Sprintf(
			"I have a birthday down for %v but it isn't usable. "+
				"Please save it again.",
			user.Mention(),
		)
	} else {
		reply = fmt.Sprintf(
			"I've got %v's birthday down as %v. That makes them %v years old.",
			user.Mention(),
			b,
			b.Age(time.Now()),
		)
	}

	discordutils.SendFollowup(reply, i.Interaction, bot.session)
}

// BirthdaySave saves a birthday to the database.
func (bot *Bot) BirthdaySave(
	i *discordgo.InteractionCreate,
	db *gorm.DB,
) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	target := i.Member.User
	if len(i.Data.Options) > 1 {
		target = i.Data.Options[1].UserValue(nil)
	}

	reply, saved := bot.saveBirthday(i, target, db)

	discordutils.SendFollowup(reply, i.Interaction, bot.session)

	// Roles only: announcements belong to the timer, whose due windows
	// tile exactly once per birthday.
	if saved {
		bot.RefreshRoles()
	}
}

func (bot *Bot) saveBirthday(
	i *discordgo.InteractionCreate,
	target *discordgo.User,
	db *gorm.DB,
) (reply string, saved bool) {
	settingSelf := target.ID == i.Member.User.ID

	if !settingSelf {
		guild, err := bot.session.State.Guild(i.GuildID)
		if err != nil {
			log.Panicf(
				"We have received an interaction from a guild we're not in... " +
					"this should never happen!",
			)
		}
		if !discordutils.MemberHasAdminPermissions(guild, i.Member) {
			return "Nice try.", false
		}
	}

	if settingSelf {
		if ok, lastUse := bot.userCanChangeBirthday(userID(i.Member.User.ID)); !ok {
			nextUse := lastUse.Add(birthdaySaveCooldown)
			return fmt.Sprintf(
				"You last changed your birthday on %v at %v. "+
					"You can change it again %v.",
				lastUse.Format(prettyDateFormat),
				lastUse.Format(prettyTimeFormat),
				humanize.Time(nextUse),
			), false
		}
	}

	b, err := birthday.Parse(i.Data.Options[0].StringValue())
	if err != nil {
		return fmt.Sprintf("I can't make sense of that: %v.", err), false
	}

	if b.Time().After(time.Now()) {
		return "That birthday hasn't happened yet! " +
			"I only keep track of birthdays from the past.", false
	}

	err = dal.UpsertBirthday(
		models.NewBirthdayRecord(i.GuildID, target.ID, b),
		db,
	)
	if err != nil {
		return fmt.Sprintf(
			"Failed to save %v's birthday: %v",
			target.Mention(),
			err,
		), false
	}

	if settingSelf {
		bot.lastSaveUsage[userID(i.Member.User.ID)] = time.Now()
	}
	return fmt.Sprintf(
		"Saved %v as %v's birthday.",
		b,
		target.Mention(),
	), true
}

// BirthdayForget removes a user's birthday from the database.
func (bot *Bot) BirthdayForget(
	i *discordgo.InteractionCreate,
	db *gorm.DB,
) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	var reply string

	if ok, lastUse := bot.userCanChangeBirthday(userID(i.Member.User.ID)); !ok {
		nextUse := lastUse.Add(birthdaySaveCooldown)
		reply = fmt.Sprintf(
			"You last changed your birthday on %v at %v. "+
				"You can change it again %v.",
			lastUse.Format(prettyDateFormat),
			lastUse.Format(prettyTimeFormat),
			humanize.Time(nextUse),
		)
	} else {
		existed, err := dal.DeleteBirthday(i.GuildID, i.Member.User.ID, db)
		switch {
		case err != nil:
			reply = fmt.Sprintf(
				"I'm unable to delete your birthday from my database: %v\n"+
					"Please contact an admin to resolve this issue.",
				err,
			)
		case !existed:
			reply = "I don't seem to have your birthday on record. " +
				"Isn't that a lovely coincidence?"
		default:
			bot.lastSaveUsage[userID(i.Member.User.ID)] = time.Now()
			reply = "I have erased your birthday from my database."
		}
	}

	discordutils.SendFollowup(reply, i.Interaction, bot.session)
}

// BirthdayList lists every birthday saved for the guild.
func (bot *Bot) BirthdayList(
	i *discordgo.InteractionCreate,
	db *gorm.DB,
) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	sorted := true
	if len(i.Data.Options) > 0 {
		sorted = i.Data.Options[0].BoolValue()
	}

	entries := guildEntries(i.GuildID, db)
	if len(entries) == 0 {
		discordutils.SendFollowup(
			"There are no birthdays to list.",
			i.Interaction,
			bot.session,
		)
		return
	}

	if sorted {
		// Next with limit == len yields each entry exactly once, ordered
		// by upcoming occurrence.
		upcoming := birthday.Next(time.Now(), entries, len(entries))
		entries = lo.Map(
			upcoming,
			func(occ birthday.Occurrence, _ int) birthday.Entry {
				return occ.Entry
			},
		)
	}

	lines := lo.Map(entries, func(entry birthday.Entry, _ int) string {
		return fmt.Sprintf("<@%v> — %v", entry.UserID, entry.Birthday)
	})

	discordutils.SendFollowupEmbed(
		&discordgo.MessageEmbed{
			Title:       "Birthdays",
			Description: strings.Join(lines, "\n"),
		},
		i.Interaction,
		bot.session,
	)
}

// BirthdayNext shows the next upcoming birthdays for the guild.
func (bot *Bot) BirthdayNext(
	i *discordgo.InteractionCreate,
	db *gorm.DB,
) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	count := 1
	if len(i.Data.Options) > 0 {
		count = int(i.Data.Options[0].IntValue())
	}
	if count < 1 {
		count = 1
	}
	if count > maxUpcoming {
		count = maxUpcoming
	}

	entries := guildEntries(i.GuildID, db)
	if len(entries) == 0 {
		discordutils.SendFollowup(
			"There are no birthdays to list.",
			i.Interaction,
			bot.session,
		)
		return
	}

	upcoming := birthday.Next(time.Now(), entries, count)

	fields := lo.Map(
		upcoming,
		func(occ birthday.Occurrence, _ int) *discordgo.MessageEmbedField {
			return &discordgo.MessageEmbedField{
				Name: occ.At.Format("02 January 2006"),
				Value: fmt.Sprintf(
					"<@%v>, %v",
					occ.UserID,
					humanize.Time(occ.At),
				),
				Inline: true,
			}
		},
	)

	discordutils.SendFollowupEmbed(
		&discordgo.MessageEmbed{
			Title:  "Upcoming birthdays",
			Fields: fields,
		},
		i.Interaction,
		bot.session,
	)
}

// BirthdayRole sets the role to use on members' birthdays.
func (bot *Bot) BirthdayRole(
	i *discordgo.InteractionCreate,
	db *gorm.DB,
) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	guild, err := bot.session.State.Guild(i.GuildID)
	if err != nil {
		log.Panicf(
			"We have received an interaction from a guild we're not in... " +
				"this should never happen!",
		)
	}

	var reply string

	if discordutils.MemberHasAdminPermissions(guild, i.Member) {
		role := i.Data.Options[0].RoleValue(bot.session, i.GuildID)

		if discordutils.RoleAllowsAdminPermissions(role) {
			reply = "That role allows admin permissions, that's a bad idea."
		} else {
			err := dal.UpsertBirthdayRole(
				models.BirthdayRole{
					GuildID: guild.ID,
					RoleID:  role.ID,
				},
				db,
			)

			if err != nil {
				reply = fmt.Sprintf("Failed to set new role: %v", err)
			} else {
				reply = fmt.Sprintf(
					"I will now assign %v on birthdays.",
					role.Mention(),
				)
			}
		}
	} else {
		reply = "Nice try."
	}

	discordutils.SendFollowup(reply, i.Interaction, bot.session)
}

// BirthdayChannel shows or sets the channel to use for announcements.
func (bot *Bot) BirthdayChannel(
	i *discordgo.InteractionCreate,
	db *gorm.DB,
) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	if len(i.Data.Options) == 0 {
		var reply string
		channel, err := dal.GetAnnounceChannel(i.GuildID, db)
		if err != nil {
			reply = "No announcement channel is set."
		} else {
			reply = fmt.Sprintf(
				"Birthday announcements go to <#%v>.",
				channel.ChannelID,
			)
		}
		discordutils.SendFollowup(reply, i.Interaction, bot.session)
		return
	}

	guild, err := bot.session.State.Guild(i.GuildID)
	if err != nil {
		log.Panicf(
			"We have received an interaction from a guild we're not in... " +
				"this should never happen!",
		)
	}

	var reply string

	if discordutils.MemberHasAdminPermissions(guild, i.Member) {
		channel := i.Data.Options[0].ChannelValue(nil)

		err := dal.UpsertAnnounceChannel(
			models.AnnounceChannel{
				GuildID:   guild.ID,
				ChannelID: channel.ID,
			},
			db,
		)

		if err != nil {
			reply = fmt.Sprintf("Failed to set new channel: %v", err)
		} else {
			reply = fmt.Sprintf(
				"I will now use %v for announcements.",
				channel.Mention(),
			)
		}
	} else {
		reply = "Nice try."
	}

	discordutils.SendFollowup(reply, i.Interaction, bot.session)
}

// BirthdayChannelForget stops announcements for the guild.
func (bot *Bot) BirthdayChannelForget(
	i *discordgo.InteractionCreate,
	db *gorm.DB,
) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	guild, err := bot.session.State.Guild(i.GuildID)
	if err != nil {
		log.Panicf(
			"We have received an interaction from a guild we're not in... " +
				"this should never happen!",
		)
	}

	var reply string

	if discordutils.MemberHasAdminPermissions(guild, i.Member) {
		existed, err := dal.DeleteAnnounceChannel(guild.ID, db)
		switch {
		case err != nil:
			reply = fmt.Sprintf("Failed to clear the channel: %v", err)
		case !existed:
			reply = "There was no announcement channel to clear."
		default:
			reply = "I will no longer announce birthdays here."
		}
	} else {
		reply = "Nice try."
	}

	discordutils.SendFollowup(reply, i.Interaction, bot.session)
}

func (bot *Bot) userCanChangeBirthday(uid userID) (bool, *time.Time) {
	if lastUse, ok := bot.lastSaveUsage[uid]; ok {
		nextUse := lastUse.Add(birthdaySaveCooldown)
		return nextUse.Before(time.Now()), &lastUse
	}
	return true, nil
}
