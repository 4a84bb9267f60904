package main

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/tr4cks/hwctl/controls"
	"github.com/tr4cks/hwctl/gestures"
)

type DiscordBot struct {
	config   *DiscordBotConfig
	hardware []controls.Named
	settings *gestures.Settings

	logger             zerolog.Logger
	session            *discordgo.Session
	commands           []*discordgo.ApplicationCommand
	registeredCommands []*discordgo.ApplicationCommand
}

type DiscordBotConfig struct {
	BotToken string `yaml:"bot-token" validate:"required"`
	GuildId  string `yaml:"guild-id"`
}

func (d *DiscordBot) Start() error {
	err := d.session.Open()
	if err != nil {
		return fmt.Errorf("cannot open the session: %w", err)
	}

	d.logger.Info().Msg("Adding commands...")
	registeredCommands := make([]*discordgo.ApplicationCommand, len(d.commands))
	for i, v := range d.commands {
		cmd, err := d.session.ApplicationCommandCreate(d.session.State.User.ID, d.config.GuildId, v)
		if err != nil {
			d.logger.Panic().Err(err).Msg(fmt.Sprintf("Cannot create '%v' command: %v", v.Name, err))
		}
		registeredCommands[i] = cmd
	}
	d.registeredCommands = registeredCommands

	return nil
}

func (d *DiscordBot) Stop() {
	d.logger.Info().Msg("Removing commands...")

	for _, v := range d.registeredCommands {
		err := d.session.ApplicationCommandDelete(d.session.State.User.ID, d.config.GuildId, v.ID)

		if err != nil {
			d.logger.Panic().Err(err).Msg(fmt.Sprintf("Cannot delete '%v' command: %v", v.Name, err))
		}
	}

	err := d.session.Close()
	if err != nil {
		d.logger.Error().Err(err).Msg("Unable to close the session")
	}

	d.logger.Info().Msg("Gracefully shutting down")
}

func interactionUsername(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	if i.User != nil {
		return i.User.Username
	}
	return ""
}

func (d *DiscordBot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, logger zerolog.Logger, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: content,
		},
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to send interaction response")
	}
}

// formatStatuses renders one line per control for chat replies.
func formatStatuses(statuses []controls.Status) string {
	var b strings.Builder
	for _, status := range statuses {
		switch {
		case !status.Supported:
			fmt.Fprintf(&b, "➖ **%s**: not supported\n", status.Name)
		case status.Error != "":
			fmt.Fprintf(&b, "❌ **%s**: unreadable\n", status.Name)
		default:
			fmt.Fprintf(&b, "✅ **%s**: `%s` (range %d–%d)\n", status.Name, status.Value, status.Bounds.Min, status.Bounds.Max)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (d *DiscordBot) controlStatusHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logger := d.logger.With().Str("username", interactionUsername(i)).Logger()
	logger.Info().Msg("A user checks the control status")

	statuses := controls.Snapshot(d.hardware)
	for _, status := range statuses {
		if status.Error != "" {
			logger.Error().Str("control", status.Name).Str("error", status.Error).Msg("Failed to read control")
		}
	}

	var b strings.Builder
	b.WriteString(formatStatuses(statuses))
	for _, setting := range d.settings.All() {
		state := "off"
		if setting.Enabled {
			state = "on"
		}
		fmt.Fprintf(&b, "\n👋 **%s**: %s", setting.Title, state)
	}

	d.respond(s, i, logger, b.String())
}

func (d *DiscordBot) controlSetHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logger := d.logger.With().Str("username", interactionUsername(i)).Logger()

	options := map[string]*discordgo.ApplicationCommandInteractionDataOption{}
	for _, option := range i.ApplicationCommandData().Options {
		options[option.Name] = option
	}
	name := options["control"].StringValue()
	value := options["value"].StringValue()
	logger = logger.With().Str("control", name).Str("value", value).Logger()
	logger.Info().Msg("A user attempts to change a control")

	control, ok := controls.Find(d.hardware, name)
	if !ok || !control.Supported() {
		d.respond(s, i, logger, fmt.Sprintf("🤷 `%s` is not available on this device", name))
		return
	}

	err := control.SetValue(value)
	if err != nil {
		logger.Error().Err(err).Msg("A problem occurred when changing the control")
		d.respond(s, i, logger, "❌ Oops! Something went wrong while changing the control")
		return
	}

	logger.Info().Msg("Control changed")
	d.respond(s, i, logger, fmt.Sprintf("✨ `%s` set to `%s`", name, value))
}

func (d *DiscordBot) gestureHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	logger := d.logger.With().Str("username", interactionUsername(i)).Logger()

	options := map[string]*discordgo.ApplicationCommandInteractionDataOption{}
	for _, option := range i.ApplicationCommandData().Options {
		options[option.Name] = option
	}
	key := options["setting"].StringValue()
	enabled := options["enabled"].BoolValue()
	logger = logger.With().Str("setting", key).Bool("enabled", enabled).Logger()
	logger.Info().Msg("A user attempts to change a gesture setting")

	err := d.settings.Set(key, enabled)
	if err != nil {
		logger.Error().Err(err).Msg("A problem occurred when saving the gesture setting")
		d.respond(s, i, logger, "❌ Oops! Something went wrong while saving the setting")
		return
	}

	d.respond(s, i, logger, "✅ Gesture setting saved")
}

func newCommands(hardware []controls.Named, settings *gestures.Settings) []*discordgo.ApplicationCommand {
	controlChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(hardware))
	for _, named := range hardware {
		controlChoices = append(controlChoices, &discordgo.ApplicationCommandOptionChoice{Name: named.Name, Value: named.Name})
	}

	gestureChoices := []*discordgo.ApplicationCommandOptionChoice{}
	for _, setting := range settings.All() {
		gestureChoices = append(gestureChoices, &discordgo.ApplicationCommandOptionChoice{Name: setting.Title, Value: setting.Key})
	}

	adminOnly := func() *int64 {
		perms := int64(discordgo.PermissionAdministrator)
		return &perms
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "control_status",
			Description: "Shows the current hardware controls and gesture settings",
		},
		{
			Name:        "control_set",
			Description: "Changes a hardware control",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "control",
					Description: "Control to change",
					Required:    true,
					Choices:     controlChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "value",
					Description: "New value, e.g. 1 or \"255 255 255\"",
					Required:    true,
				},
			},
			DefaultMemberPermissions: adminOnly(),
		},
		{
			Name:        "gesture",
			Description: "Turns a touchscreen gesture on or off",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "setting",
					Description: "Gesture to change",
					Required:    true,
					Choices:     gestureChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "enabled",
					Description: "Whether the gesture is enabled",
					Required:    true,
				},
			},
			DefaultMemberPermissions: adminOnly(),
		},
	}
}

func NewDiscordBot(config *DiscordBotConfig, hardware []controls.Named, settings *gestures.Settings) (*DiscordBot, error) {
	logger := newLogger("discord")

	session, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("invalid bot parameters: %w", err)
	}

	bot := &DiscordBot{
		config:   config,
		hardware: hardware,
		settings: settings,
		logger:   logger,
		session:  session,
		commands: newCommands(hardware, settings),
	}

	commandHandlers := map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
		"control_status": bot.controlStatusHandler,
		"control_set":    bot.controlSetHandler,
		"gesture":        bot.gestureHandler,
	}

	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := commandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info().
			Str("discriminator", s.State.User.Discriminator).
			Str("username", s.State.User.Username).
			Msg(fmt.Sprintf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator))
	})

	return bot, nil
}
