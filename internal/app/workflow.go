package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"quotebot/internal/domain"
	"quotebot/internal/platform/logging"
	"quotebot/internal/ports"
)

// Form field identifiers for the edit modal.
const (
	editQuotationField = "edit_quotation"
	editAuthorField    = "edit_author"
)

// Delete finds quotes by search, offers one delete button per result, and
// removes the quote the invoking user picks. Clicks by other users are
// ignored without consuming the wait.
func (s *Service) Delete(ctx context.Context, in ports.Interaction) error {
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
	case len(results) > s.limits.MaxDeleteResults:
		return in.Edit(ctx, ports.Message{Content: fmt.Sprintf(
			"Your search for quotes to delete returned more than the max of %d results. Try narrowing your search.",
			s.limits.MaxDeleteResults)})
	}

	var (
		listing strings.Builder
		buttons []ports.Button
	)
	for i, q := range results {
		fmt.Fprintf(&listing, "#%d: %s\n", i+1, domain.FormatQuote(q, true))
		buttons = append(buttons, ports.Button{
			ID:     strconv.FormatInt(q.ID, 10),
			Label:  fmt.Sprintf("Delete #%d", i+1),
			Danger: true,
		})
	}

	if listing.Len() > maxMessageLength {
		return in.Edit(ctx, ports.Message{Content: msgDeleteResultTooLong})
	}

	if err := in.Edit(ctx, ports.Message{Content: listing.String(), Buttons: buttons}); err != nil {
		return err
	}

	click, err := in.AwaitClick(ctx, s.timeouts.DeleteSelect)
	if err != nil {
		if domain.IsTimeout(err) {
			s.metrics.WorkflowTimeouts.WithLabelValues("delete").Inc()
			return s.cancelWait(ctx, in, err, s.timeouts.DeleteSelect)
		}

		return err
	}

	id, err := strconv.ParseInt(click.CustomID(), 10, 64)
	if err != nil {
		return fmt.Errorf("unparseable delete button id %q: %w", click.CustomID(), err)
	}

	deleted, err := s.store.DeleteByID(ctx, in.GuildID(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			if updateErr := click.Update(ctx, ports.Message{Content: msgNothingDeleted}); updateErr != nil {
				return updateErr
			}

			return ports.Reported(err)
		}

		if updateErr := click.Update(ctx, ports.Message{Content: msgGenericError}); updateErr != nil {
			return updateErr
		}

		return ports.Reported(err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "quote deleted", "quote_id", deleted.ID)

	return click.Update(ctx, ports.Message{
		Content: "The following quote was deleted: \n\n" + domain.FormatQuote(deleted, true),
	})
}

// Edit finds quotes by search, lets the invoking user pick one, presents a
// form pre-filled with its current text, and applies the submitted changes.
// The selection and the form submission are independent waits with
// independent windows, both bound to the invoking user.
func (s *Service) Edit(ctx context.Context, in ports.Interaction) error {
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
	case len(results) > s.limits.MaxDeleteResults:
		return in.Edit(ctx, ports.Message{Content: fmt.Sprintf(
			"Your search for quotes to delete returned more than the max of %d results. Try narrowing your search.",
			s.limits.MaxDeleteResults)})
	}

	var (
		listing strings.Builder
		buttons []ports.Button
	)
	fmt.Fprintf(&listing, "Found **%d** matching quote(s). Choose one to edit:\n\n", len(results))
	for _, q := range results {
		listing.WriteString(domain.FormatQuote(q, true))
		listing.WriteByte('\n')
		buttons = append(buttons, ports.Button{
			ID:    fmt.Sprintf("edit:%d", q.ID),
			Label: fmt.Sprintf("Edit #%d", q.ID),
		})
	}

	if listing.Len() > maxMessageLength {
		return in.Edit(ctx, ports.Message{Content: msgDeleteResultTooLong})
	}

	if err := in.Edit(ctx, ports.Message{Content: listing.String(), Buttons: buttons}); err != nil {
		return err
	}

	click, err := in.AwaitClick(ctx, s.timeouts.EditSelect)
	if err != nil {
		if domain.IsTimeout(err) {
			s.metrics.WorkflowTimeouts.WithLabelValues("edit_select").Inc()
			return s.cancelWait(ctx, in, err, s.timeouts.EditSelect)
		}

		return err
	}

	current := findByButtonID(results, click.CustomID())
	if current == nil {
		if updateErr := click.Update(ctx, ports.Message{Content: fmt.Sprintf(
			"Could not load quote %s for this server.", strings.TrimPrefix(click.CustomID(), "edit:"))}); updateErr != nil {
			return updateErr
		}

		return ports.Reported(domain.NewNotFoundError("quote", click.CustomID()))
	}

	// The form ID carries a per-invocation nonce so a stale submission from
	// an earlier run of this command cannot satisfy this wait.
	formID := fmt.Sprintf("editModal:%d:%s", current.ID, uuid.NewString())

	form := ports.Form{
		ID:    formID,
		Title: fmt.Sprintf("Edit Quote #%d", current.ID),
		Fields: []ports.FormField{
			{
				ID:        editQuotationField,
				Label:     "New quote text (leave as-is if no change)",
				Value:     current.Quotation,
				Paragraph: true,
				MaxLength: s.limits.Quote.MaxQuotationLength,
			},
			{
				ID:        editAuthorField,
				Label:     "New author (leave as-is if no change)",
				Value:     current.Author,
				MaxLength: s.limits.Quote.MaxAuthorLength,
			},
		},
	}

	if err := click.OpenForm(ctx, form); err != nil {
		return err
	}

	submit, err := in.AwaitForm(ctx, formID, s.timeouts.EditSubmit)
	if err != nil {
		if domain.IsTimeout(err) {
			s.metrics.WorkflowTimeouts.WithLabelValues("edit_submit").Inc()
			return s.cancelWait(ctx, in, err, s.timeouts.EditSubmit)
		}

		return err
	}

	newQuotation := strings.TrimSpace(submit.Value(editQuotationField))
	newAuthor := strings.TrimSpace(submit.Value(editAuthorField))

	// A blank field never overwrites; it reads as "leave unchanged".
	update := ports.QuoteUpdate{}
	if newQuotation != "" && newQuotation != current.Quotation {
		update.Quotation = &newQuotation
	}
	if newAuthor != "" && newAuthor != current.Author {
		update.Author = &newAuthor
	}

	if update.Quotation == nil && update.Author == nil {
		if err := submit.Respond(ctx, ports.Message{Content: msgEditNoChanges, Ephemeral: true}); err != nil {
			return err
		}

		// Strip the buttons from the listing so nothing dangles.
		return in.Edit(ctx, ports.Message{Content: listing.String()})
	}

	updated, err := s.store.UpdateByID(ctx, in.GuildID(), current.ID, update)
	if err != nil {
		if domain.IsNotFound(err) {
			if respondErr := submit.Respond(ctx, ports.Message{Content: msgEditNothing, Ephemeral: true}); respondErr != nil {
				return respondErr
			}

			return ports.Reported(err)
		}

		if respondErr := submit.Respond(ctx, ports.Message{Content: msgGenericError, Ephemeral: true}); respondErr != nil {
			return respondErr
		}

		return ports.Reported(err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "quote updated", "quote_id", updated.ID)

	comparison := strings.Join([]string{
		fmt.Sprintf("**Quote %d updated.**", updated.ID),
		"",
		"**Before**",
		domain.FormatQuote(current, true),
		"",
		"**After**",
		domain.FormatQuote(updated, true),
	}, "\n")

	if err := submit.Respond(ctx, ports.Message{Content: comparison, Ephemeral: true}); err != nil {
		return err
	}

	return in.Edit(ctx, ports.Message{Content: listing.String()})
}

// cancelWait replaces the interactive message with a cancellation notice,
// stripping its buttons, and returns the timeout marked reported.
func (s *Service) cancelWait(ctx context.Context, in ports.Interaction, cause error, window time.Duration) error {
	notice := fmt.Sprintf("A quote was not chosen within %s, so I cancelled the interaction.", waitPhrase(window))
	if err := in.Edit(ctx, ports.Message{Content: notice}); err != nil {
		return err
	}

	return ports.Reported(cause)
}

// waitPhrase renders a wait window the way a person would say it. Windows
// under two minutes read in seconds, so the common 60 second delete window
// stays "60 seconds".
func waitPhrase(d time.Duration) string {
	if d < 2*time.Minute {
		seconds := int(d.Seconds())
		if seconds == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", seconds)
	}

	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}

// findByButtonID matches an edit button's custom ID back to its quote.
func findByButtonID(quotes []*domain.Quote, customID string) *domain.Quote {
	raw := strings.TrimPrefix(customID, "edit:")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}

	for _, q := range quotes {
		if q.ID == id {
			return q
		}
	}

	return nil
}
