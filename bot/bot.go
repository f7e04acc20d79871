package bot

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"
)

type commandHandler = func(
	*discordgo.InteractionCreate,
	*gorm.DB,
)

var botCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "birthday",
		Description: "Looks up a birthday.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "The user to look up. Defaults to you.",
				Required:    false,
			},
		},
	}, {
		Name:        "birthday-save",
		Description: "Saves a birthday.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type: discordgo.ApplicationCommandOptionString,
				Name: "date",
				Description: "The birthday, like `1 November 2007` " +
					"or `2007-11-01`. Time and UTC offset are optional.",
				Required: true,
			}, {
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Whose birthday to save (admin only). Defaults to you.",
				Required:    false,
			},
		},
	}, {
		Name:        "birthday-forget",
		Description: "Removes your birthday from the database.",
	}, {
		Name:        "birthday-list",
		Description: "Lists all saved birthdays.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "sorted",
				Description: "Sort by next occurrence. Defaults to true.",
				Required:    false,
			},
		},
	}, {
		Name:        "birthday-next",
		Description: "Shows the next upcoming birthdays.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "count",
				Description: "How many to show (1-25). Defaults to 1.",
				Required:    false,
			},
		},
	}, {
		Name:        "birthday-role",
		Description: "Sets the role to apply on members' birthdays.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "The role to use on birthdays.",
				Required:    true,
			},
		},
	}, {
		Name:        "birthday-chan",
		Description: "Shows or sets the channel to use for announcements.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "The channel to use. Omit to show the current one.",
				Required:    false,
			},
		},
	}, {
		Name:        "birthday-chan-forget",
		Description: "Stops birthday announcements for this guild.",
	},
}

type userID string

// Bot represents an instance of the Marzipan discord bot.
type Bot struct {
	session            *discordgo.Session
	db                 *gorm.DB
	halfWindow         time.Duration
	registeredCommands []*discordgo.ApplicationCommand
	commandHandlers    map[string]commandHandler
	lastSaveUsage      map[userID]time.Time
}

func (bot *Bot) initSession(token string, db *gorm.DB) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatalf("Failed to create discord session: %v", err)
	}

	session.Identify.Intents = discordgo.IntentsAll

	session.AddHandler(func(*discordgo.Session, *discordgo.Ready) {
		log.Println("Bot is up!")
	})

	session.AddHandler(func(
		s *discordgo.Session,
		i *discordgo.InteractionCreate,
	) {
		if handler, ok := bot.commandHandlers[i.Data.Name]; ok {
			handler(i, db)
		}
	})

	err = session.Open()
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}

	bot.session = session
}

func (bot *Bot) registerCommands(guildID string) {
	for _, command := range botCommands {
		newCommand, err := bot.session.ApplicationCommandCreate(
			bot.session.State.User.ID,
			guildID,
			command,
		)
		bot.registeredCommands = append(bot.registeredCommands, newCommand)
		if err != nil {
			log.Fatalf("Failed to create %v command: %v", command.Name, err)
		}
		log.Printf("Created %v command.", command.Name)
	}
}

// New initialises a new marzipan bot. halfWindow is half the width of the
// announcement due window, normally half the sweep interval.
func New(
	token string,
	guildID string,
	halfWindow time.Duration,
	db *gorm.DB,
) Bot {
	bot := Bot{
		db:            db,
		halfWindow:    halfWindow,
		lastSaveUsage: make(map[userID]time.Time),
	}

	bot.commandHandlers = map[string]commandHandler{
		"birthday":             bot.Birthday,
		"birthday-save":        bot.BirthdaySave,
		"birthday-forget":      bot.BirthdayForget,
		"birthday-list":        bot.BirthdayList,
		"birthday-next":        bot.BirthdayNext,
		"birthday-role":        bot.BirthdayRole,
		"birthday-chan":        bot.BirthdayChannel,
		"birthday-chan-forget": bot.BirthdayChannelForget,
	}

	bot.initSession(token, db)
	bot.registerCommands(guildID)

	return bot
}

// Shutdown shuts down the bot cleanly.
func (bot *Bot) Shutdown(guildID string) {
	log.Println("Shutting down.")

	for _, command := range bot.registeredCommands {
		err := bot.session.ApplicationCommandDelete(
			bot.session.State.User.ID,
			guildID,
			command.ID,
		)
		if err != nil {
			log.Printf("Failed to delete %v command: %v", command.Name, err)
		} else {
			log.Printf("Deleted %v command.", command.Name)
		}
	}

	bot.session.Close()
}

// CheckBirthdays invokes CheckBirthdays with this bot's session and database.
func (bot *Bot) CheckBirthdays() {
	CheckBirthdays(bot.session, bot.db, bot.halfWindow)
}

// RefreshRoles invokes RefreshBirthdayRoles with this bot's session and database.
func (bot *Bot) RefreshRoles() {
	RefreshBirthdayRoles(bot.session, bot.db)
}
