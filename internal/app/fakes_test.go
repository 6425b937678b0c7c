package app

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"quotebot/internal/domain"
	"quotebot/internal/platform/metrics"
	"quotebot/internal/ports"
)

var errUnexpectedCall = errors.New("unexpected call")

// fakeStore is a function-field double for ports.QuoteStore. Unset methods
// fail the call so tests notice unexpected store traffic.
type fakeStore struct {
	insert        func(ctx context.Context, guildID, quotation, author string, saidAt time.Time) (*domain.Quote, error)
	fetchAll      func(ctx context.Context, guildID string) ([]*domain.Quote, error)
	fetchByAuthor func(ctx context.Context, guildID, author string) ([]*domain.Quote, error)
	fetchBySearch func(ctx context.Context, guildID, substring, author string) ([]*domain.Quote, error)
	count         func(ctx context.Context, guildID, author string) (int64, error)
	updateByID    func(ctx context.Context, guildID string, id int64, update ports.QuoteUpdate) (*domain.Quote, error)
	deleteByID    func(ctx context.Context, guildID string, id int64) (*domain.Quote, error)
	leaderboard   func(ctx context.Context, guildID string, limit int) ([]domain.AuthorCount, error)
}

func (f *fakeStore) Insert(ctx context.Context, guildID, quotation, author string, saidAt time.Time) (*domain.Quote, error) {
	if f.insert == nil {
		return nil, errUnexpectedCall
	}
	return f.insert(ctx, guildID, quotation, author, saidAt)
}

func (f *fakeStore) FetchAll(ctx context.Context, guildID string) ([]*domain.Quote, error) {
	if f.fetchAll == nil {
		return nil, errUnexpectedCall
	}
	return f.fetchAll(ctx, guildID)
}

func (f *fakeStore) FetchByAuthor(ctx context.Context, guildID, author string) ([]*domain.Quote, error) {
	if f.fetchByAuthor == nil {
		return nil, errUnexpectedCall
	}
	return f.fetchByAuthor(ctx, guildID, author)
}

func (f *fakeStore) FetchBySearch(ctx context.Context, guildID, substring, author string) ([]*domain.Quote, error) {
	if f.fetchBySearch == nil {
		return nil, errUnexpectedCall
	}
	return f.fetchBySearch(ctx, guildID, substring, author)
}

func (f *fakeStore) Count(ctx context.Context, guildID, author string) (int64, error) {
	if f.count == nil {
		return 0, errUnexpectedCall
	}
	return f.count(ctx, guildID, author)
}

func (f *fakeStore) UpdateByID(ctx context.Context, guildID string, id int64, update ports.QuoteUpdate) (*domain.Quote, error) {
	if f.updateByID == nil {
		return nil, errUnexpectedCall
	}
	return f.updateByID(ctx, guildID, id, update)
}

func (f *fakeStore) DeleteByID(ctx context.Context, guildID string, id int64) (*domain.Quote, error) {
	if f.deleteByID == nil {
		return nil, errUnexpectedCall
	}
	return f.deleteByID(ctx, guildID, id)
}

func (f *fakeStore) Leaderboard(ctx context.Context, guildID string, limit int) ([]domain.AuthorCount, error) {
	if f.leaderboard == nil {
		return nil, errUnexpectedCall
	}
	return f.leaderboard(ctx, guildID, limit)
}

// fakeInteraction scripts one command invocation.
type fakeInteraction struct {
	guildID    string
	channelID  string
	userID     string
	options    map[string]string
	intOptions map[string]int64

	deferred  bool
	ephemeral bool
	replies   []ports.Message
	edits     []ports.Message
	followups []ports.Message

	click    ports.Click
	clickErr error

	form       ports.FormSubmit
	formErr    error
	awaitedFor string

	history    []ports.ChannelMessage
	historyErr error
}

func (f *fakeInteraction) GuildID() string   { return f.guildID }
func (f *fakeInteraction) ChannelID() string { return f.channelID }
func (f *fakeInteraction) UserID() string    { return f.userID }

func (f *fakeInteraction) Option(name string) string {
	return f.options[name]
}

func (f *fakeInteraction) IntOption(name string) (int64, bool) {
	v, ok := f.intOptions[name]
	return v, ok
}

func (f *fakeInteraction) Defer(ctx context.Context, ephemeral bool) error {
	f.deferred = true
	f.ephemeral = ephemeral
	return nil
}

func (f *fakeInteraction) Reply(ctx context.Context, msg ports.Message) error {
	f.replies = append(f.replies, msg)
	return nil
}

func (f *fakeInteraction) Edit(ctx context.Context, msg ports.Message) error {
	f.edits = append(f.edits, msg)
	return nil
}

func (f *fakeInteraction) Followup(ctx context.Context, msg ports.Message) error {
	f.followups = append(f.followups, msg)
	return nil
}

func (f *fakeInteraction) AwaitClick(ctx context.Context, timeout time.Duration) (ports.Click, error) {
	return f.click, f.clickErr
}

func (f *fakeInteraction) AwaitForm(ctx context.Context, formID string, timeout time.Duration) (ports.FormSubmit, error) {
	f.awaitedFor = formID
	return f.form, f.formErr
}

func (f *fakeInteraction) History(ctx context.Context, limit int, since time.Time) ([]ports.ChannelMessage, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	if len(f.history) > limit {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func (f *fakeInteraction) lastEdit() ports.Message {
	return f.edits[len(f.edits)-1]
}

// fakeClick scripts one button activation.
type fakeClick struct {
	customID   string
	updates    []ports.Message
	openedForm *ports.Form
}

func (f *fakeClick) CustomID() string { return f.customID }

func (f *fakeClick) Update(ctx context.Context, msg ports.Message) error {
	f.updates = append(f.updates, msg)
	return nil
}

func (f *fakeClick) OpenForm(ctx context.Context, form ports.Form) error {
	f.openedForm = &form
	return nil
}

// fakeSubmit scripts one modal form submission.
type fakeSubmit struct {
	values    map[string]string
	responses []ports.Message
	acked     bool
}

func (f *fakeSubmit) Value(fieldID string) string { return f.values[fieldID] }

func (f *fakeSubmit) Acknowledge(ctx context.Context) error {
	f.acked = true
	return nil
}

func (f *fakeSubmit) Respond(ctx context.Context, msg ports.Message) error {
	f.responses = append(f.responses, msg)
	return nil
}

// fakeResolver maps IDs to fixed names.
type fakeResolver struct {
	members  map[string]string
	roles    map[string]string
	channels map[string]string
}

func (f *fakeResolver) ResolveMember(ctx context.Context, guildID, userID string) (string, error) {
	if name, ok := f.members[userID]; ok {
		return name, nil
	}
	return "", domain.NewNotFoundError("member", userID)
}

func (f *fakeResolver) ResolveRole(ctx context.Context, guildID, roleID string) (string, error) {
	if name, ok := f.roles[roleID]; ok {
		return name, nil
	}
	return "", domain.NewNotFoundError("role", roleID)
}

func (f *fakeResolver) ResolveChannel(ctx context.Context, guildID, channelID string) (string, error) {
	if name, ok := f.channels[channelID]; ok {
		return name, nil
	}
	return "", domain.NewNotFoundError("channel", channelID)
}

// fakeRenderer returns a fixed image.
type fakeRenderer struct {
	png      []byte
	fellBack bool
	err      error
	words    []domain.WordCount
	font     string
}

func (f *fakeRenderer) Render(words []domain.WordCount, font string) ([]byte, bool, error) {
	f.words = words
	f.font = font
	return f.png, f.fellBack, f.err
}

// newTestService wires a Service with production-shaped defaults, a fresh
// metrics registry, and deterministic clocks.
func newTestService(store *fakeStore) *Service {
	svc := NewService(ServiceConfig{
		Store:    store,
		Resolver: &fakeResolver{},
		Metrics:  metrics.New(prometheus.NewRegistry()),
		Limits: Limits{
			Quote:            domain.DefaultQuoteLimits(),
			MaxSearchResults: 10,
			MaxDeleteResults: 5,
			LeaderboardSize:  10,
			MaxCloudWords:    100,
		},
		Timeouts: Timeouts{
			DeleteSelect: 60 * time.Second,
			EditSelect:   15 * time.Minute,
			EditSubmit:   2 * time.Minute,
		},
		Recap: RecapLimits{
			DefaultMessages: 150,
			MinMessages:     25,
			MaxMessages:     300,
			MaxHours:        168,
		},
	})
	svc.now = func() time.Time {
		return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}
