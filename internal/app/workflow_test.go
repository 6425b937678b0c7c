package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotebot/internal/domain"
	"quotebot/internal/ports"
)

func searchStore(results []*domain.Quote) *fakeStore {
	return &fakeStore{
		fetchBySearch: func(ctx context.Context, guildID, substring, author string) ([]*domain.Quote, error) {
			return results, nil
		},
	}
}

func TestDelete(t *testing.T) {
	results := []*domain.Quote{
		{ID: 7, Quotation: "first", Author: "a", SaidAt: date(2021, 1, 1)},
		{ID: 9, Quotation: "second", Author: "b", SaidAt: date(2021, 2, 2)},
	}

	t.Run("deletes the chosen quote", func(t *testing.T) {
		store := searchStore(results)
		var deletedID int64
		store.deleteByID = func(ctx context.Context, guildID string, id int64) (*domain.Quote, error) {
			deletedID = id
			return results[1], nil
		}
		svc := newTestService(store)
		click := &fakeClick{customID: "9"}
		in := &fakeInteraction{
			options: map[string]string{"search_string": "s"},
			click:   click,
		}

		require.NoError(t, svc.Delete(context.Background(), in))

		assert.True(t, in.deferred)
		require.Len(t, in.edits, 1)
		listing := in.edits[0]
		assert.Contains(t, listing.Content, "#1: \"first\" - a (Jan 1, 2021)")
		assert.Contains(t, listing.Content, "#2: \"second\" - b (Feb 2, 2021)")
		require.Len(t, listing.Buttons, 2)
		assert.Equal(t, ports.Button{ID: "7", Label: "Delete #1", Danger: true}, listing.Buttons[0])
		assert.Equal(t, ports.Button{ID: "9", Label: "Delete #2", Danger: true}, listing.Buttons[1])

		assert.Equal(t, int64(9), deletedID)
		require.Len(t, click.updates, 1)
		assert.Equal(t,
			"The following quote was deleted: \n\n\"second\" - b (Feb 2, 2021)",
			click.updates[0].Content)
		assert.Empty(t, click.updates[0].Buttons)
	})

	t.Run("cancels after the selection window", func(t *testing.T) {
		svc := newTestService(searchStore(results))
		in := &fakeInteraction{
			options:  map[string]string{"search_string": "s"},
			clickErr: domain.NewTimeoutError("delete selection"),
		}

		err := svc.Delete(context.Background(), in)

		require.Error(t, err)
		assert.True(t, domain.IsTimeout(err))
		assert.True(t, ports.IsReported(err))
		assert.Equal(t,
			"A quote was not chosen within 60 seconds, so I cancelled the interaction.",
			in.lastEdit().Content)
		assert.Empty(t, in.lastEdit().Buttons)
		assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.WorkflowTimeouts.WithLabelValues("delete")))
	})

	t.Run("row already gone", func(t *testing.T) {
		store := searchStore(results)
		store.deleteByID = func(ctx context.Context, guildID string, id int64) (*domain.Quote, error) {
			return nil, domain.NewNotFoundError("quote", "7")
		}
		svc := newTestService(store)
		click := &fakeClick{customID: "7"}
		in := &fakeInteraction{
			options: map[string]string{"search_string": "s"},
			click:   click,
		}

		err := svc.Delete(context.Background(), in)

		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
		assert.True(t, ports.IsReported(err))
		require.Len(t, click.updates, 1)
		assert.Equal(t, msgNothingDeleted, click.updates[0].Content)
	})

	t.Run("too many matches to offer buttons", func(t *testing.T) {
		many := make([]*domain.Quote, 6)
		for i := range many {
			many[i] = &domain.Quote{ID: int64(i + 1), Quotation: "q", Author: "a"}
		}
		svc := newTestService(searchStore(many))
		in := &fakeInteraction{options: map[string]string{"search_string": "q"}}

		require.NoError(t, svc.Delete(context.Background(), in))
		assert.Equal(t,
			"Your search for quotes to delete returned more than the max of 5 results. Try narrowing your search.",
			in.lastEdit().Content)
		assert.Empty(t, in.lastEdit().Buttons)
	})

	t.Run("no matches", func(t *testing.T) {
		svc := newTestService(searchStore(nil))
		in := &fakeInteraction{options: map[string]string{"search_string": "zzz"}}

		require.NoError(t, svc.Delete(context.Background(), in))
		assert.Equal(t, msgEmptySearch, in.lastEdit().Content)
	})
}

func TestEdit(t *testing.T) {
	current := &domain.Quote{ID: 7, Quotation: "original text", Author: "Tati", SaidAt: date(2021, 1, 1)}

	t.Run("presents a pre-filled form and applies changes", func(t *testing.T) {
		store := searchStore([]*domain.Quote{current})
		var gotUpdate ports.QuoteUpdate
		store.updateByID = func(ctx context.Context, guildID string, id int64, update ports.QuoteUpdate) (*domain.Quote, error) {
			require.Equal(t, int64(7), id)
			gotUpdate = update
			return &domain.Quote{ID: 7, Quotation: "revised text", Author: "Tati", SaidAt: current.SaidAt}, nil
		}
		svc := newTestService(store)
		click := &fakeClick{customID: "edit:7"}
		submit := &fakeSubmit{values: map[string]string{
			editQuotationField: " revised text ",
			editAuthorField:    "Tati",
		}}
		in := &fakeInteraction{
			options: map[string]string{"search_string": "original"},
			click:   click,
			form:    submit,
		}

		require.NoError(t, svc.Edit(context.Background(), in))

		require.NotNil(t, click.openedForm)
		assert.Equal(t, click.openedForm.ID, in.awaitedFor)
		assert.Contains(t, click.openedForm.ID, "editModal:7:")
		assert.Equal(t, "Edit Quote #7", click.openedForm.Title)
		require.Len(t, click.openedForm.Fields, 2)
		assert.Equal(t, "original text", click.openedForm.Fields[0].Value)
		assert.True(t, click.openedForm.Fields[0].Paragraph)
		assert.Equal(t, "Tati", click.openedForm.Fields[1].Value)

		require.NotNil(t, gotUpdate.Quotation)
		assert.Equal(t, "revised text", *gotUpdate.Quotation)
		assert.Nil(t, gotUpdate.Author)

		require.Len(t, submit.responses, 1)
		response := submit.responses[0].Content
		assert.Contains(t, response, "**Quote 7 updated.**")
		assert.Contains(t, response, "**Before**\n\"original text\" - Tati (Jan 1, 2021)")
		assert.Contains(t, response, "**After**\n\"revised text\" - Tati (Jan 1, 2021)")

		// The listing loses its buttons once the workflow resolves.
		last := in.lastEdit()
		assert.Empty(t, last.Buttons)
	})

	t.Run("no changes short-circuits without a write", func(t *testing.T) {
		store := searchStore([]*domain.Quote{current})
		svc := newTestService(store)
		click := &fakeClick{customID: "edit:7"}
		submit := &fakeSubmit{values: map[string]string{
			editQuotationField: "original text",
			editAuthorField:    "Tati",
		}}
		in := &fakeInteraction{
			options: map[string]string{"search_string": "original"},
			click:   click,
			form:    submit,
		}

		require.NoError(t, svc.Edit(context.Background(), in))
		require.Len(t, submit.responses, 1)
		assert.Equal(t, msgEditNoChanges, submit.responses[0].Content)
	})

	t.Run("blank fields leave everything unchanged", func(t *testing.T) {
		store := searchStore([]*domain.Quote{current})
		svc := newTestService(store)
		click := &fakeClick{customID: "edit:7"}
		submit := &fakeSubmit{values: map[string]string{
			editQuotationField: "   ",
			editAuthorField:    "",
		}}
		in := &fakeInteraction{
			options: map[string]string{"search_string": "original"},
			click:   click,
			form:    submit,
		}

		require.NoError(t, svc.Edit(context.Background(), in))
		require.Len(t, submit.responses, 1)
		assert.Equal(t, msgEditNoChanges, submit.responses[0].Content)
	})

	t.Run("author-only update", func(t *testing.T) {
		store := searchStore([]*domain.Quote{current})
		var gotUpdate ports.QuoteUpdate
		store.updateByID = func(ctx context.Context, guildID string, id int64, update ports.QuoteUpdate) (*domain.Quote, error) {
			gotUpdate = update
			return &domain.Quote{ID: 7, Quotation: "original text", Author: "Leo", SaidAt: current.SaidAt}, nil
		}
		svc := newTestService(store)
		click := &fakeClick{customID: "edit:7"}
		submit := &fakeSubmit{values: map[string]string{
			editQuotationField: "original text",
			editAuthorField:    "Leo",
		}}
		in := &fakeInteraction{
			options: map[string]string{"search_string": "original"},
			click:   click,
			form:    submit,
		}

		require.NoError(t, svc.Edit(context.Background(), in))
		assert.Nil(t, gotUpdate.Quotation)
		require.NotNil(t, gotUpdate.Author)
		assert.Equal(t, "Leo", *gotUpdate.Author)
	})

	t.Run("selection window expires", func(t *testing.T) {
		svc := newTestService(searchStore([]*domain.Quote{current}))
		in := &fakeInteraction{
			options:  map[string]string{"search_string": "original"},
			clickErr: domain.NewTimeoutError("edit selection"),
		}

		err := svc.Edit(context.Background(), in)

		require.Error(t, err)
		assert.True(t, domain.IsTimeout(err))
		assert.Equal(t,
			"A quote was not chosen within 15 minutes, so I cancelled the interaction.",
			in.lastEdit().Content)
		assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.WorkflowTimeouts.WithLabelValues("edit_select")))
	})

	t.Run("form window expires", func(t *testing.T) {
		svc := newTestService(searchStore([]*domain.Quote{current}))
		click := &fakeClick{customID: "edit:7"}
		in := &fakeInteraction{
			options: map[string]string{"search_string": "original"},
			click:   click,
			formErr: domain.NewTimeoutError("edit form"),
		}

		err := svc.Edit(context.Background(), in)

		require.Error(t, err)
		assert.True(t, domain.IsTimeout(err))
		assert.Equal(t,
			"A quote was not chosen within 2 minutes, so I cancelled the interaction.",
			in.lastEdit().Content)
		assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.WorkflowTimeouts.WithLabelValues("edit_submit")))
	})

	t.Run("row vanished before the update", func(t *testing.T) {
		store := searchStore([]*domain.Quote{current})
		store.updateByID = func(ctx context.Context, guildID string, id int64, update ports.QuoteUpdate) (*domain.Quote, error) {
			return nil, domain.NewNotFoundError("quote", "7")
		}
		svc := newTestService(store)
		click := &fakeClick{customID: "edit:7"}
		submit := &fakeSubmit{values: map[string]string{
			editQuotationField: "different",
			editAuthorField:    "Tati",
		}}
		in := &fakeInteraction{
			options: map[string]string{"search_string": "original"},
			click:   click,
			form:    submit,
		}

		err := svc.Edit(context.Background(), in)

		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
		require.Len(t, submit.responses, 1)
		assert.Equal(t, msgEditNothing, submit.responses[0].Content)
	})
}

func TestWaitPhrase(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "minute-long window stays in seconds", d: 60 * time.Second, want: "60 seconds"},
		{name: "sub-minute", d: 45 * time.Second, want: "45 seconds"},
		{name: "one second", d: time.Second, want: "1 second"},
		{name: "two minutes", d: 2 * time.Minute, want: "2 minutes"},
		{name: "fifteen minutes", d: 15 * time.Minute, want: "15 minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, waitPhrase(tt.d))
		})
	}
}
