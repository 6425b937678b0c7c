package app

// User-facing reply text shared across handlers. Command-specific text that
// interpolates values is built at the call site with fmt.
const (
	msgGenericError        = "There was an error while executing this command!"
	msgSaveProblemsHeader  = "Your quote has the following problems:\n\n"
	msgDuplicateQuote      = "Too slow, an identical quote by this person has already been saved!"
	msgSaveGenericError    = "There was a problem saving your quote. Please try again later!"
	msgInvalidSaveDate     = "The date for your quote is invalid. Make sure it is in either MM/DD/YYYY or MM-DD-YYYY format."
	msgNoQuotesForGuild    = "No quotes found for this server."
	msgCountZero           = "There are no quotes saved!"
	msgCountGenericError   = "There was a problem getting the number of quotes. Please try again later!"
	msgNoQuotesByAuthor    = "There are no quotes stored by that author!"
	msgRandomGenericError  = "There was a problem getting a quote. Please try again later!"
	msgEmptySearch         = "There were no quotes found matching your search."
	msgNothingDeleted      = "There is no quote with that identifier, so nothing was deleted."
	msgSearchResultTooLong = "Your search returned results, but returning them all would exceed Discord's 2000 character limit for messages." +
		" You can either narrow your search, or you can always download saved quotes using the `/download` command."
	msgDeleteResultTooLong = "Your search returned results, but returning them all would exceed Discord's 2000 character limit for messages." +
		" Please narrow your search."
	msgDownloadError     = "❌ There was an error generating the export file."
	msgLeaderboardError  = "❌ Error generating leaderboard."
	msgWordcloudDBError  = "❌ Error retrieving quotes for wordcloud."
	msgWordcloudNoQuotes = "There were no quotes to generate a word cloud."
	msgWordcloudDisabled = "Wordcloud feature is not available on this deployment."
	msgHistoryError      = "❌ I couldn't read message history in this channel (missing permissions?)."
	msgRecapTooFew       = "Not enough recent messages to summarize in this channel."
	msgEditNoChanges     = "No changes made."
	msgEditNothing       = "Update failed or nothing was updated."

	msgHelp = "**About:**\n\nThis is a bot for adding quotes and revisiting them later. Save a quote with `/save`." +
		" The author can be a mention of a user in the server (e.g. @leosmmmv) or simply a name (Tati). The quotation can be " +
		"entered as it is - there is NO NEED to wrap it in quotation marks.\n\n" +
		"Find quotes with `/search`. You can enter a word or phrase, and the bot will give you the quotes that match.\n\n" +
		"Pull random quotes with `/quote`.\n\n" +
		"You can receive all the quotes you have saved at any time using `/download`.\n\n" +
		"To delete a quote, use the `/delete` command. This works like the `/search` command. The bot will then display buttons to delete quote(s) from the results.\n\n" +
		"You can also generate a \"word cloud\" type visualization of quotes said by everyone using `/wordcloud`.\n\n" +
		"**Privacy Policy:**\n\n" +
		"Quotes added in a particular server can only be retrieved by users in that server. " +
		"The bot uses an SSL connection to store your quotes in a password-protected database. Only the bot and its " +
		"creator have access. Quotes (but not the names of their authors) are stored with encryption. The data is only" +
		" used for this bot and its associated commands."
)

// maxMessageLength is the platform's hard cap on message content.
const maxMessageLength = 2000
