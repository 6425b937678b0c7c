// Package app contains the use-case services behind each slash command. The
// service depends on port interfaces only; the Discord and Postgres adapters
// are injected at startup.
package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"quotebot/internal/domain"
	"quotebot/internal/platform/logging"
	"quotebot/internal/platform/metrics"
	"quotebot/internal/ports"
)

// Limits bounds user submissions and result listings.
type Limits struct {
	Quote            domain.QuoteLimits
	MaxSearchResults int
	MaxDeleteResults int
	LeaderboardSize  int
	MaxCloudWords    int
}

// Timeouts sets the interactive wait windows. Selection and form submission
// are independent waits.
type Timeouts struct {
	DeleteSelect time.Duration
	EditSelect   time.Duration
	EditSubmit   time.Duration
}

// RecapLimits bounds the channel recap command.
type RecapLimits struct {
	DefaultMessages int
	MinMessages     int
	MaxMessages     int
	MaxHours        int
}

// ServiceConfig contains the dependencies for the command service.
type ServiceConfig struct {
	Store    ports.QuoteStore
	Resolver domain.NameResolver

	// Renderer is optional; nil disables the wordcloud command.
	Renderer ports.CloudRenderer

	Metrics  *metrics.Metrics
	Limits   Limits
	Timeouts Timeouts
	Recap    RecapLimits
}

// Service implements one handler per slash command. Every handler is an
// error boundary: expected failures are reported to the user here and the
// returned error is marked reported, so the dispatcher only logs and counts
// it. Unexpected failures escape unreported and the dispatcher apologizes.
type Service struct {
	store    ports.QuoteStore
	resolver domain.NameResolver
	renderer ports.CloudRenderer
	metrics  *metrics.Metrics
	limits   Limits
	timeouts Timeouts
	recap    RecapLimits

	// Injection points for tests.
	randIndex func(n int) int
	now       func() time.Time
}

// NewService creates the command service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		store:     cfg.Store,
		resolver:  cfg.Resolver,
		renderer:  cfg.Renderer,
		metrics:   cfg.Metrics,
		limits:    cfg.Limits,
		timeouts:  cfg.Timeouts,
		recap:     cfg.Recap,
		randIndex: rand.IntN,
		now:       time.Now,
	}
}

// Handlers returns the command dispatch table. The returned map is the only
// registration point; the gateway copies it and never mutates it.
func (s *Service) Handlers() map[string]ports.Handler {
	return map[string]ports.Handler{
		"save":        s.Save,
		"search":      s.Search,
		"delete":      s.Delete,
		"edit":        s.Edit,
		"count":       s.Count,
		"quote":       s.Random,
		"download":    s.Download,
		"leaderboard": s.Leaderboard,
		"wordcloud":   s.Wordcloud,
		"recap":       s.Recap,
		"help":        s.Help,
	}
}

// Save stores a new quote. All validation problems are reported together;
// an omitted date defaults to today.
func (s *Service) Save(ctx context.Context, in ports.Interaction) error {
	author := strings.TrimSpace(in.Option("author"))
	quotation := strings.TrimSpace(in.Option("quote"))
	date := strings.TrimSpace(in.Option("date"))

	if violations := domain.ValidateNewQuote(quotation, author, date, s.limits.Quote); len(violations) > 0 {
		err := in.Reply(ctx, ports.Message{
			Content:   msgSaveProblemsHeader + domain.ViolationText(violations),
			Ephemeral: true,
		})
		if err != nil {
			return err
		}

		return ports.Reported(violations[0])
	}

	saidAt := s.now()
	if date != "" {
		parsed, err := domain.ParseSaidDate(date)
		if err != nil {
			if replyErr := in.Reply(ctx, ports.Message{Content: msgInvalidSaveDate, Ephemeral: true}); replyErr != nil {
				return replyErr
			}

			return ports.Reported(err)
		}
		saidAt = parsed
	}

	stored, err := s.store.Insert(ctx, in.GuildID(), quotation, author, saidAt)
	if err != nil {
		switch {
		case domain.IsConflict(err):
			return s.report(ctx, in, err, ports.Message{Content: msgDuplicateQuote, Ephemeral: true})
		case domain.IsValidation(err):
			return s.report(ctx, in, err, ports.Message{Content: msgInvalidSaveDate, Ephemeral: true})
		default:
			return s.report(ctx, in, err, ports.Message{Content: msgSaveGenericError, Ephemeral: true})
		}
	}

	s.metrics.QuotesStored.Inc()
	logging.FromContext(ctx).InfoContext(ctx, "quote saved", "quote_id", stored.ID, "author", stored.Author)

	return in.Reply(ctx, ports.Message{Content: "Added the following:\n\n" + domain.FormatQuote(stored, true)})
}

// Count reports how many quotes the guild has, optionally for one author.
func (s *Service) Count(ctx context.Context, in ports.Interaction) error {
	author := strings.TrimSpace(in.Option("author"))

	count, err := s.store.Count(ctx, in.GuildID(), author)
	if err != nil {
		return s.report(ctx, in, err, ports.Message{Content: msgCountGenericError})
	}

	switch {
	case author != "":
		return in.Reply(ctx, ports.Message{Content: fmt.Sprintf("**%s** has said **%d** quote(s).", author, count)})
	case count == 0:
		return in.Reply(ctx, ports.Message{Content: msgCountZero})
	case count == 1:
		return in.Reply(ctx, ports.Message{Content: "There is **1** quote."})
	default:
		return in.Reply(ctx, ports.Message{Content: fmt.Sprintf("There are **%d** quotes.", count)})
	}
}

// Random replies with one uniformly chosen quote, optionally by author.
func (s *Service) Random(ctx context.Context, in ports.Interaction) error {
	author := strings.TrimSpace(in.Option("author"))

	var (
		quotes []*domain.Quote
		err    error
	)
	if author != "" {
		quotes, err = s.store.FetchByAuthor(ctx, in.GuildID(), author)
	} else {
		quotes, err = s.store.FetchAll(ctx, in.GuildID())
	}
	if err != nil {
		return s.report(ctx, in, err, ports.Message{Content: msgRandomGenericError})
	}

	if len(quotes) == 0 {
		if err := in.Reply(ctx, ports.Message{Content: msgNoQuotesByAuthor}); err != nil {
			return err
		}

		return ports.Reported(domain.NewNotFoundError("quote", author))
	}

	pick := quotes[s.randIndex(len(quotes))]

	return in.Reply(ctx, ports.Message{Content: domain.FormatQuote(pick, true)})
}

// Search lists every quote whose text contains the search string, optionally
// narrowed to one author.
func (s *Service) Search(ctx context.Context, in ports.Interaction) error {
	if err := in.Defer(ctx, false); err != nil {
		return err
	}

	results, err := s.searchResults(ctx, in)
	if err != nil {
		return s.edit(ctx, in, err, ports.Message{Content: msgGenericError})
	}

	switch {
	case len(results) == 0:
		return in.Edit(ctx, ports.Message{Content: msgEmptySearch})
	case len(results) > s.limits.MaxSearchResults:
		return in.Edit(ctx, ports.Message{Content: fmt.Sprintf(
			"Your search returned more than %d results. Try narrowing your search.", s.limits.MaxSearchResults)})
	}

	var b strings.Builder
	for _, q := range results {
		b.WriteString(domain.FormatQuote(q, true))
		b.WriteByte('\n')
	}

	if b.Len() > maxMessageLength {
		return in.Edit(ctx, ports.Message{Content: msgSearchResultTooLong})
	}

	return in.Edit(ctx, ports.Message{Content: b.String()})
}

// Download exports every quote in the guild as a file attachment. The
// default format is CSV; "text" exports one formatted quote per line with
// mention tokens resolved to display names.
func (s *Service) Download(ctx context.Context, in ports.Interaction) error {
	if err := in.Defer(ctx, false); err != nil {
		return err
	}

	quotes, err := s.store.FetchAll(ctx, in.GuildID())
	if err != nil {
		return s.edit(ctx, in, err, ports.Message{Content: msgDownloadError})
	}

	if len(quotes) == 0 {
		return in.Edit(ctx, ports.Message{Content: msgNoQuotesForGuild})
	}

	format := strings.ToLower(strings.TrimSpace(in.Option("format")))

	var file ports.File
	switch format {
	case "text":
		file = ports.File{
			Name:        "quotes.txt",
			ContentType: "text/plain",
			Data:        []byte(exportText(ctx, quotes, s.resolver)),
		}
	default:
		format = "csv"
		file = ports.File{
			Name:        "quotes.csv",
			ContentType: "text/csv",
			Data:        []byte(exportCSV(quotes)),
		}
	}

	return in.Edit(ctx, ports.Message{
		Content: fmt.Sprintf("\U0001f4c4 Here is your quote export (%s format):", format),
		Files:   []ports.File{file},
	})
}

// Leaderboard lists the guild's most quoted authors.
func (s *Service) Leaderboard(ctx context.Context, in ports.Interaction) error {
	if err := in.Defer(ctx, false); err != nil {
		return err
	}

	rows, err := s.store.Leaderboard(ctx, in.GuildID(), s.limits.LeaderboardSize)
	if err != nil {
		return s.edit(ctx, in, err, ports.Message{Content: msgLeaderboardError})
	}

	if len(rows) == 0 {
		return in.Edit(ctx, ports.Message{Content: msgNoQuotesForGuild})
	}

	var b strings.Builder
	b.WriteString("\U0001f3c6 **Quote Leaderboard** \U0001f3c6\n\n")
	for i, row := range rows {
		fmt.Fprintf(&b, "%d. **%s** — %d quotes\n", i+1, row.Author, row.Count)
	}

	return in.Edit(ctx, ports.Message{Content: b.String()})
}

// Wordcloud renders the guild's quotes as a word-cloud image. The renderer
// is an optional capability; without one the command reports the feature as
// unavailable.
func (s *Service) Wordcloud(ctx context.Context, in ports.Interaction) error {
	if s.renderer == nil {
		if err := in.Reply(ctx, ports.Message{Content: msgWordcloudDisabled, Ephemeral: true}); err != nil {
			return err
		}

		return ports.Reported(domain.NewUnavailableError("wordcloud", "no renderer configured"))
	}

	if err := in.Defer(ctx, false); err != nil {
		return err
	}

	author := strings.TrimSpace(in.Option("author"))

	var (
		quotes []*domain.Quote
		err    error
	)
	if author != "" {
		quotes, err = s.store.FetchByAuthor(ctx, in.GuildID(), author)
	} else {
		quotes, err = s.store.FetchAll(ctx, in.GuildID())
	}
	if err != nil {
		return s.edit(ctx, in, err, ports.Message{Content: msgWordcloudDBError})
	}

	if len(quotes) == 0 {
		return in.Edit(ctx, ports.Message{Content: msgWordcloudNoQuotes})
	}

	words := domain.TopWords(quotes, s.limits.MaxCloudWords)
	font := strings.ToLower(strings.TrimSpace(in.Option("font")))

	png, fellBack, err := s.renderer.Render(words, font)
	if err != nil {
		return s.edit(ctx, in, err, ports.Message{Content: msgGenericError})
	}

	content := "☁️ Wordcloud for all quotes"
	if author != "" {
		content = fmt.Sprintf("☁️ Wordcloud for quotes by **%s**", author)
	}
	if font != "" && fellBack {
		content += "\n⚠️ Unknown font requested. Using default."
	}

	return in.Edit(ctx, ports.Message{
		Content: content,
		Files:   []ports.File{{Name: "wordcloud.png", ContentType: "image/png", Data: png}},
	})
}

// Help replies with usage and privacy text, visible to the invoker only.
func (s *Service) Help(ctx context.Context, in ports.Interaction) error {
	return in.Reply(ctx, ports.Message{Content: msgHelp, Ephemeral: true})
}

// searchResults runs the shared search used by the search, delete, and edit
// commands.
func (s *Service) searchResults(ctx context.Context, in ports.Interaction) ([]*domain.Quote, error) {
	substring := strings.TrimSpace(in.Option("search_string"))
	author := strings.TrimSpace(in.Option("author"))

	return s.store.FetchBySearch(ctx, in.GuildID(), substring, author)
}

// report sends msg as the initial reply and returns err marked reported.
func (s *Service) report(ctx context.Context, in ports.Interaction, err error, msg ports.Message) error {
	if replyErr := in.Reply(ctx, msg); replyErr != nil {
		return fmt.Errorf("replying with %q after %w: %w", msg.Content, err, replyErr)
	}

	return ports.Reported(err)
}

// edit is report for handlers that already deferred.
func (s *Service) edit(ctx context.Context, in ports.Interaction, err error, msg ports.Message) error {
	if editErr := in.Edit(ctx, msg); editErr != nil {
		return fmt.Errorf("editing reply to %q after %w: %w", msg.Content, err, editErr)
	}

	return ports.Reported(err)
}
