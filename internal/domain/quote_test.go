package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFormatQuote(t *testing.T) {
	saidAt := date(2021, time.August, 15)

	tests := []struct {
		name        string
		quote       Quote
		includeDate bool
		expected    string
	}{
		{
			name:        "plain quotation is wrapped",
			quote:       Quote{Quotation: "hello there", Author: "Obi-Wan", SaidAt: saidAt},
			includeDate: false,
			expected:    `"hello there" - Obi-Wan`,
		},
		{
			name:        "with date suffix",
			quote:       Quote{Quotation: "hello there", Author: "Obi-Wan", SaidAt: saidAt},
			includeDate: true,
			expected:    `"hello there" - Obi-Wan (Aug 15, 2021)`,
		},
		{
			name:        "already wrapped in straight quotes is not re-wrapped",
			quote:       Quote{Quotation: `"hello there"`, Author: "Obi-Wan", SaidAt: saidAt},
			includeDate: false,
			expected:    `"hello there" - Obi-Wan`,
		},
		{
			name:        "already wrapped in curly quotes is not re-wrapped",
			quote:       Quote{Quotation: "“hello there”", Author: "Obi-Wan", SaidAt: saidAt},
			includeDate: false,
			expected:    "“hello there” - Obi-Wan",
		},
		{
			name:        "leading glyph only still gets closing mark",
			quote:       Quote{Quotation: `"half open`, Author: "A", SaidAt: saidAt},
			includeDate: false,
			expected:    `"half open" - A`,
		},
		{
			name:        "trailing glyph only still gets opening mark",
			quote:       Quote{Quotation: `half closed"`, Author: "A", SaidAt: saidAt},
			includeDate: false,
			expected:    `"half closed" - A`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatQuote(&tt.quote, tt.includeDate))
		})
	}
}

func TestFormatQuote_Idempotent(t *testing.T) {
	plain := Quote{Quotation: "a quote", Author: "someone", SaidAt: date(2020, time.January, 2)}
	wrapped := Quote{Quotation: `"a quote"`, Author: "someone", SaidAt: plain.SaidAt}

	// A quotation already carrying its marks formats identically to the
	// bare text; the marks are never doubled.
	assert.Equal(t, FormatQuote(&plain, false), FormatQuote(&wrapped, false))
}

func TestParseSaidDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{name: "slash four digit year", input: "08/15/2021", expected: date(2021, time.August, 15)},
		{name: "slash no leading zeros", input: "8/15/2021", expected: date(2021, time.August, 15)},
		{name: "hyphen two digit year", input: "8-15-21", expected: date(2021, time.August, 15)},
		{name: "hyphen four digit year", input: "12-1-2019", expected: date(2019, time.December, 1)},
		{name: "impossible month", input: "13/40/2021", wantErr: true},
		{name: "impossible day", input: "2/30/2021", wantErr: true},
		{name: "garbage", input: "yesterday", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSaidDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatSaidDate(t *testing.T) {
	assert.Equal(t, "Aug 15, 2021", FormatSaidDate(date(2021, time.August, 15)))
	assert.Equal(t, "Jan 2, 2006", FormatSaidDate(date(2006, time.January, 2)))
}

type stubResolver struct {
	members  map[string]string
	roles    map[string]string
	channels map[string]string
	err      error
}

func (s *stubResolver) ResolveMember(_ context.Context, _, id string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if name, ok := s.members[id]; ok {
		return name, nil
	}
	return "", NewNotFoundError("member", id)
}

func (s *stubResolver) ResolveRole(_ context.Context, _, id string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if name, ok := s.roles[id]; ok {
		return name, nil
	}
	return "", NewNotFoundError("role", id)
}

func (s *stubResolver) ResolveChannel(_ context.Context, _, id string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if name, ok := s.channels[id]; ok {
		return name, nil
	}
	return "", NewNotFoundError("channel", id)
}

func TestResolveMentions(t *testing.T) {
	resolver := &stubResolver{
		members:  map[string]string{"111": "alice"},
		roles:    map[string]string{"222": "mods"},
		channels: map[string]string{"333": "general"},
	}

	tests := []struct {
		name     string
		author   string
		expected string
	}{
		{name: "plain name untouched", author: "Obi-Wan", expected: "Obi-Wan"},
		{name: "member mention", author: "<@111>", expected: "@alice"},
		{name: "nickname member mention", author: "<@!111>", expected: "@alice"},
		{name: "role mention", author: "<@&222>", expected: "@mods"},
		{name: "channel mention", author: "<#333>", expected: "#general"},
		{name: "mixed text and mention", author: "per <@111> always", expected: "per @alice always"},
		{name: "departed member", author: "<@999>", expected: "Unknown User"},
		{name: "multiple mentions", author: "<@111> and <@&222>", expected: "@alice and @mods"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveMentions(context.Background(), tt.author, "guild-1", resolver)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveMentions_LookupFailure(t *testing.T) {
	resolver := &stubResolver{err: errors.New("gateway down")}

	got := ResolveMentions(context.Background(), "<@111> said it", "guild-1", resolver)

	assert.Equal(t, "Unknown User(s)", got)
}

func TestContainsMention(t *testing.T) {
	assert.True(t, ContainsMention("<@111>"))
	assert.True(t, ContainsMention("so says <@!42>"))
	assert.True(t, ContainsMention("<@&7>"))
	assert.True(t, ContainsMention("<#9>"))
	assert.False(t, ContainsMention("Obi-Wan"))
	assert.False(t, ContainsMention("<@not-a-mention>"))
}
