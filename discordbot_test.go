package main

import (
	"bytes"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tr4cks/hwctl/controls"
	"github.com/tr4cks/hwctl/gestures"
)

func TestFormatStatuses(t *testing.T) {
	statuses := []controls.Status{
		{Name: "backlight", Supported: true, Bounds: controls.Bounds{Min: 0, Max: 1, Default: 1}, Value: "1"},
		{Name: "colors", Supported: true, Error: "boom"},
		{Name: "power-profile"},
	}

	assert.Equal(t,
		"✅ **backlight**: `1` (range 0–1)\n❌ **colors**: unreadable\n➖ **power-profile**: not supported",
		formatStatuses(statuses))
}

func TestNewCommands(t *testing.T) {
	settings, err := gestures.Load(afero.NewMemMapFs(), defaultGesturesFile)
	require.NoError(t, err)
	hardware := []controls.Named{{Name: "backlight"}, {Name: "colors"}}

	commands := newCommands(hardware, settings)

	require.Len(t, commands, 3)
	assert.Equal(t, "control_status", commands[0].Name)
	assert.Nil(t, commands[0].DefaultMemberPermissions)

	set := commands[1]
	require.Len(t, set.Options, 2)
	require.Len(t, set.Options[0].Choices, 2)
	assert.Equal(t, "colors", set.Options[0].Choices[1].Value)
	require.NotNil(t, set.DefaultMemberPermissions)
	assert.Equal(t, int64(discordgo.PermissionAdministrator), *set.DefaultMemberPermissions)

	gesture := commands[2]
	require.Len(t, gesture.Options[0].Choices, 3)
	assert.Equal(t, gestures.KeyAmbientDisplay, gesture.Options[0].Choices[0].Value)
	assert.Equal(t, discordgo.ApplicationCommandOptionBoolean, gesture.Options[1].Type)
}

func TestInteractionUsername(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{Username: "alice"}},
	}}
	assert.Equal(t, "alice", interactionUsername(guild))

	direct := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{Username: "bob"},
	}}
	assert.Equal(t, "bob", interactionUsername(direct))
}

func TestStopLogsThroughBotLogger(t *testing.T) {
	session, err := discordgo.New("Bot token")
	require.NoError(t, err)

	var buf bytes.Buffer
	bot := &DiscordBot{
		config:  &DiscordBotConfig{BotToken: "token"},
		logger:  zerolog.New(&buf).With().Str("scope", "discord").Logger(),
		session: session,
	}

	bot.Stop()

	assert.Contains(t, buf.String(), `"scope":"discord"`)
	assert.Contains(t, buf.String(), "Removing commands...")
	assert.Contains(t, buf.String(), "Gracefully shutting down")
}
