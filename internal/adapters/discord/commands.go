package discord

import (
	"github.com/bwmarrin/discordgo"
)

// commandDefinitions returns the bot's slash commands. They are registered
// with a bulk overwrite on startup, so removing one here removes it from the
// guild.
func commandDefinitions(recap RecapBounds) []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "save",
			Description: "Add a new quote.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "author",
					Description: "The person(s) who said this quote",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "quote",
					Description: "What was said",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "date",
					Description: "When the quote was said (MM/DD/YYYY or MM-DD-YYYY). Default is today.",
				},
			},
		},
		{
			Name:        "search",
			Description: "search for quotes, optionally filtering by author.",
			Options: []*discordgo.ApplicationCommandOption{
				searchStringOption(),
				authorOption("narrow your search by author."),
			},
		},
		{
			Name:        "delete",
			Description: "delete a quote by search, optionally filtering by author.",
			Options: []*discordgo.ApplicationCommandOption{
				searchStringOption(),
				authorOption("narrow your search by author."),
			},
		},
		{
			Name:        "edit",
			Description: "edit quotes that match your search.",
			Options: []*discordgo.ApplicationCommandOption{
				searchStringOption(),
			},
		},
		{
			Name:        "count",
			Description: "get the total number of quotes saved, optionally filtering by author.",
			Options: []*discordgo.ApplicationCommandOption{
				authorOption("the author by which to get the number of quotes."),
			},
		},
		{
			Name:        "quote",
			Description: "get a random quote, optionally filtering by author.",
			Options: []*discordgo.ApplicationCommandOption{
				authorOption("the author by which to get a random quote."),
			},
		},
		{
			Name:        "download",
			Description: "get a file of the server quotes.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "format",
					Description: "file format for the export. Default is csv.",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "csv", Value: "csv"},
						{Name: "text", Value: "text"},
					},
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show top quote authors",
		},
		{
			Name:        "wordcloud",
			Description: "Make a word cloud using quotes from the server.",
			Options: []*discordgo.ApplicationCommandOption{
				authorOption("Make a word cloud for a specified author."),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "font",
					Description: "Choose which font to use. Defaults to a random installed font.",
				},
			},
		},
		{
			Name:        "recap",
			Description: "Summarize recent conversation in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "messages",
					Description: "How many recent messages to summarize",
					MinValue:    float64Ptr(float64(recap.MinMessages)),
					MaxValue:    float64(recap.MaxMessages),
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "hours",
					Description: "Only include messages from the last X hours",
					MinValue:    float64Ptr(1),
					MaxValue:    float64(recap.MaxHours),
				},
			},
		},
		{
			Name:        "help",
			Description: "learn how to use the bot.",
		},
	}
}

func searchStringOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "search_string",
		Description: "a keyword or keyphrase by which to search for quotes.",
		Required:    true,
	}
}

func authorOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "author",
		Description: description,
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}
