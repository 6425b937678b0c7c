package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandDefinitions(t *testing.T) {
	defs := commandDefinitions(RecapBounds{MinMessages: 25, MaxMessages: 300, MaxHours: 168})

	byName := make(map[string]*discordgo.ApplicationCommand, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}

	require.Len(t, defs, 11)
	for _, name := range []string{
		"save", "search", "delete", "edit", "count", "quote",
		"download", "leaderboard", "wordcloud", "recap", "help",
	} {
		assert.Contains(t, byName, name)
	}

	t.Run("save options", func(t *testing.T) {
		opts := byName["save"].Options
		require.Len(t, opts, 3)

		assert.Equal(t, "author", opts[0].Name)
		assert.True(t, opts[0].Required)
		assert.Equal(t, "quote", opts[1].Name)
		assert.True(t, opts[1].Required)
		assert.Equal(t, "date", opts[2].Name)
		assert.False(t, opts[2].Required)
	})

	t.Run("search and delete take the same options", func(t *testing.T) {
		for _, name := range []string{"search", "delete"} {
			opts := byName[name].Options
			require.Len(t, opts, 2, name)

			assert.Equal(t, "search_string", opts[0].Name)
			assert.True(t, opts[0].Required)
			assert.Equal(t, "author", opts[1].Name)
			assert.False(t, opts[1].Required)
		}
	})

	t.Run("recap bounds", func(t *testing.T) {
		opts := byName["recap"].Options
		require.Len(t, opts, 2)

		messages := opts[0]
		assert.Equal(t, "messages", messages.Name)
		assert.Equal(t, discordgo.ApplicationCommandOptionInteger, messages.Type)
		require.NotNil(t, messages.MinValue)
		assert.Equal(t, 25.0, *messages.MinValue)
		assert.Equal(t, 300.0, messages.MaxValue)

		hours := opts[1]
		assert.Equal(t, "hours", hours.Name)
		require.NotNil(t, hours.MinValue)
		assert.Equal(t, 1.0, *hours.MinValue)
		assert.Equal(t, 168.0, hours.MaxValue)
	})

	t.Run("download format choices", func(t *testing.T) {
		opts := byName["download"].Options
		require.Len(t, opts, 1)
		require.Len(t, opts[0].Choices, 2)

		assert.Equal(t, "csv", opts[0].Choices[0].Value)
		assert.Equal(t, "text", opts[0].Choices[1].Value)
	})

	t.Run("bare commands have no options", func(t *testing.T) {
		assert.Empty(t, byName["leaderboard"].Options)
		assert.Empty(t, byName["help"].Options)
	})
}
