package ports

import (
	"context"
	"time"
)

// Handler processes one command invocation. Handlers are registered with the
// gateway dispatcher under the command name they serve. Any error returned
// escapes no further than the dispatcher, which reports it to the user.
type Handler func(ctx context.Context, in Interaction) error

// Interaction is one command invocation received from the messaging gateway.
// It carries the invocation's identity and options and exposes the reply,
// follow-up, and interactive-wait operations the workflows need.
//
// All waits are bound to the original invoking user. Actions by other users
// on the same message are ignored without consuming the wait.
type Interaction interface {
	// GuildID identifies the guild the command was invoked in.
	GuildID() string

	// ChannelID identifies the channel the command was invoked in.
	ChannelID() string

	// UserID identifies the invoking user.
	UserID() string

	// Option returns the named string option, or "" when absent.
	Option(name string) string

	// IntOption returns the named integer option and whether it was supplied.
	IntOption(name string) (int64, bool)

	// Defer acknowledges the invocation without content, buying time for
	// slow work. ephemeral hides the eventual reply from other users.
	Defer(ctx context.Context, ephemeral bool) error

	// Reply sends the initial response.
	Reply(ctx context.Context, msg Message) error

	// Edit replaces the initial response.
	Edit(ctx context.Context, msg Message) error

	// Followup sends an additional message after the initial response.
	Followup(ctx context.Context, msg Message) error

	// AwaitClick blocks until the invoking user clicks a button on the
	// initial response, or the timeout elapses with domain.ErrTimeout.
	AwaitClick(ctx context.Context, timeout time.Duration) (Click, error)

	// AwaitForm blocks until the invoking user submits the form with the
	// given ID, or the timeout elapses with domain.ErrTimeout.
	AwaitForm(ctx context.Context, formID string, timeout time.Duration) (FormSubmit, error)

	// History reads recent messages from the invoking channel, newest
	// first, up to limit messages and no older than since.
	History(ctx context.Context, limit int, since time.Time) ([]ChannelMessage, error)
}

// Click is one button activation by the invoking user.
type Click interface {
	// CustomID returns the clicked button's ID.
	CustomID() string

	// Update acknowledges the click by replacing the clicked message.
	Update(ctx context.Context, msg Message) error

	// OpenForm acknowledges the click by presenting a modal form. The
	// gateway imposes a short acknowledgment deadline, so this must be the
	// immediate response to the click.
	OpenForm(ctx context.Context, form Form) error
}

// FormSubmit is one modal form submission by the invoking user.
type FormSubmit interface {
	// Value returns the submitted value of the named field.
	Value(fieldID string) string

	// Acknowledge accepts the submission without visible content.
	Acknowledge(ctx context.Context) error

	// Respond accepts the submission with a visible reply.
	Respond(ctx context.Context, msg Message) error
}

// Message is an outbound reply, edit, or follow-up.
type Message struct {
	Content   string
	Ephemeral bool

	// Buttons are attached in order; the adapter groups them into rows of
	// at most five.
	Buttons []Button

	Files []File
}

// Button is one clickable control attached to a message.
type Button struct {
	ID     string
	Label  string
	Danger bool
}

// Form is a modal data-entry form.
type Form struct {
	ID     string
	Title  string
	Fields []FormField
}

// FormField is one text input in a form.
type FormField struct {
	ID        string
	Label     string
	Value     string
	Paragraph bool
	MaxLength int
}

// File is an attachment.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ChannelMessage is one message read from channel history.
type ChannelMessage struct {
	AuthorID   string
	AuthorName string
	Content    string
	Bot        bool
	SentAt     time.Time
}
