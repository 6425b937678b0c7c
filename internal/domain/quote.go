// Package domain contains the core business entities and rules for the
// quote bot. Domain errors represent business-level failures, NOT gateway
// errors; they are infrastructure-agnostic and are mapped to user-facing
// replies by the adapters.
package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Quote is a single attributed quotation owned by one guild.
type Quote struct {
	// ID is assigned by the store on insert.
	ID int64

	// Quotation is the quoted text as authored, without normalization.
	Quotation string

	// Author is a free-form name or a raw mention token.
	Author string

	// SaidAt is the calendar day the quote was said. Time of day is not
	// meaningful and is always midnight UTC.
	SaidAt time.Time

	// GuildID scopes the quote to its owning guild.
	GuildID string
}

// AuthorCount is one leaderboard row.
type AuthorCount struct {
	Author string
	Count  int64
}

// quoteGlyphs are the characters recognized as existing quotation marks.
// A quotation already starting and ending with one is not re-wrapped.
const quoteGlyphs = `"“”`

// saidDateLayouts are the accepted textual date formats, tried in order.
var saidDateLayouts = []string{"1/2/2006", "1-2-2006", "1/2/06", "1-2-06"}

var (
	mentionToken = regexp.MustCompile(`<@[!&]?[0-9]+>|<#[0-9]+>`)
	roleToken    = regexp.MustCompile(`^<@&([0-9]+)>$`)
	channelToken = regexp.MustCompile(`^<#([0-9]+)>$`)
	digits       = regexp.MustCompile(`[0-9]+`)
)

// NameResolver resolves platform identifiers to display names. Implementations
// query the messaging gateway; ErrNotFound is returned when the target no
// longer exists in the guild.
type NameResolver interface {
	ResolveMember(ctx context.Context, guildID, userID string) (string, error)
	ResolveRole(ctx context.Context, guildID, roleID string) (string, error)
	ResolveChannel(ctx context.Context, guildID, channelID string) (string, error)
}

// FormatQuote renders a quote as display text. The quotation is wrapped in
// quotation marks unless it already begins and ends with one, followed by the
// attribution and, when includeDate is set, the said date.
func FormatQuote(q *Quote, includeDate bool) string {
	var b strings.Builder

	if strings.ContainsRune(quoteGlyphs, firstRune(q.Quotation)) {
		b.WriteString(q.Quotation)
	} else {
		b.WriteByte('"')
		b.WriteString(q.Quotation)
	}
	if !strings.ContainsRune(quoteGlyphs, lastRune(q.Quotation)) {
		b.WriteByte('"')
	}

	b.WriteString(" - ")
	b.WriteString(q.Author)

	if includeDate {
		b.WriteString(" (")
		b.WriteString(FormatSaidDate(q.SaidAt))
		b.WriteByte(')')
	}

	return b.String()
}

// FormatQuoteResolved is FormatQuote with the author's mention tokens replaced
// by resolved display names. Used for file export, where raw tokens would be
// meaningless outside the platform client.
func FormatQuoteResolved(ctx context.Context, q *Quote, includeDate bool, r NameResolver) string {
	resolved := *q
	resolved.Author = ResolveMentions(ctx, q.Author, q.GuildID, r)
	return FormatQuote(&resolved, includeDate)
}

// FormatSaidDate renders a said date as a human-readable day.
func FormatSaidDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// ParseSaidDate parses a textual said date in month/day/year form, using
// either slashes or hyphens, with a two- or four-digit year. The date must be
// a real calendar day.
func ParseSaidDate(s string) (time.Time, error) {
	for _, layout := range saidDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, NewValidationError("date", "the date is invalid; use MM/DD/YYYY or MM-DD-YYYY format")
}

// ContainsMention reports whether s contains at least one mention token.
func ContainsMention(s string) bool {
	return mentionToken.MatchString(s)
}

// ResolveMentions replaces every mention token in author with the referenced
// display name. A token whose target no longer exists becomes "Unknown User".
// If any lookup fails outright the whole field degrades to "Unknown User(s)".
func ResolveMentions(ctx context.Context, author, guildID string, r NameResolver) string {
	var failed error
	out := mentionToken.ReplaceAllStringFunc(author, func(token string) string {
		name, err := resolveToken(ctx, token, guildID, r)
		if err != nil {
			if IsNotFound(err) {
				return "Unknown User"
			}
			failed = err
			return token
		}
		return name
	})
	if failed != nil {
		return "Unknown User(s)"
	}
	return out
}

func resolveToken(ctx context.Context, token, guildID string, r NameResolver) (string, error) {
	switch {
	case roleToken.MatchString(token):
		name, err := r.ResolveRole(ctx, guildID, digits.FindString(token))
		if err != nil {
			return "", err
		}
		return "@" + name, nil
	case channelToken.MatchString(token):
		name, err := r.ResolveChannel(ctx, guildID, digits.FindString(token))
		if err != nil {
			return "", err
		}
		return "#" + name, nil
	default:
		name, err := r.ResolveMember(ctx, guildID, digits.FindString(token))
		if err != nil {
			return "", err
		}
		return "@" + name, nil
	}
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

// String implements fmt.Stringer for logging.
func (q *Quote) String() string {
	return fmt.Sprintf("quote %d by %s", q.ID, q.Author)
}
