package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"quotebot/internal/domain"
)

// clickKey correlates a component interaction with a pending wait. Keying on
// both the message and the user means another user clicking the same button
// never resolves, or consumes, someone else's wait.
type clickKey struct {
	messageID string
	userID    string
}

// formKey correlates a modal submission with a pending wait. The form custom
// ID carries a per-invocation nonce, so a stale submission from an earlier
// command run cannot match.
type formKey struct {
	formID string
	userID string
}

// waitRouter parks in-flight workflows until the gateway delivers the event
// they are waiting for. Each wait owns a buffered channel; delivery never
// blocks the gateway's event goroutine.
type waitRouter struct {
	mu     sync.Mutex
	clicks map[clickKey]chan *discordgo.InteractionCreate
	forms  map[formKey]chan *discordgo.InteractionCreate
}

func newWaitRouter() *waitRouter {
	return &waitRouter{
		clicks: make(map[clickKey]chan *discordgo.InteractionCreate),
		forms:  make(map[formKey]chan *discordgo.InteractionCreate),
	}
}

// awaitClick blocks until the user clicks a component on the message, the
// timeout elapses, or ctx is done.
func (r *waitRouter) awaitClick(ctx context.Context, messageID, userID string, timeout time.Duration) (*discordgo.InteractionCreate, error) {
	key := clickKey{messageID: messageID, userID: userID}
	ch := make(chan *discordgo.InteractionCreate, 1)

	r.mu.Lock()
	if _, exists := r.clicks[key]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("click wait already pending for message %s user %s", messageID, userID)
	}
	r.clicks[key] = ch
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.clicks, key)
		r.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case event := <-ch:
		return event, nil
	case <-timer.C:
		return nil, domain.NewTimeoutError("component selection")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// awaitForm blocks until the user submits the form with the given custom ID,
// the timeout elapses, or ctx is done.
func (r *waitRouter) awaitForm(ctx context.Context, formID, userID string, timeout time.Duration) (*discordgo.InteractionCreate, error) {
	key := formKey{formID: formID, userID: userID}
	ch := make(chan *discordgo.InteractionCreate, 1)

	r.mu.Lock()
	if _, exists := r.forms[key]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("form wait already pending for form %s user %s", formID, userID)
	}
	r.forms[key] = ch
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.forms, key)
		r.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case event := <-ch:
		return event, nil
	case <-timer.C:
		return nil, domain.NewTimeoutError("form submission")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// deliverClick hands a component interaction to its pending wait, if any.
// It reports whether the event was consumed.
func (r *waitRouter) deliverClick(messageID, userID string, event *discordgo.InteractionCreate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.clicks[clickKey{messageID: messageID, userID: userID}]
	if !ok {
		return false
	}

	select {
	case ch <- event:
		return true
	default:
		return false
	}
}

// deliverForm hands a modal submission to its pending wait, if any. It
// reports whether the event was consumed.
func (r *waitRouter) deliverForm(formID, userID string, event *discordgo.InteractionCreate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.forms[formKey{formID: formID, userID: userID}]
	if !ok {
		return false
	}

	select {
	case ch <- event:
		return true
	default:
		return false
	}
}
