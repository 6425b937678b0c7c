package app

import (
	"context"
	"strconv"
	"strings"

	"quotebot/internal/domain"
)

// exportCSV renders quotes as CSV with an ID,Quote,Author,Date header. Every
// field is double-quoted with inner quotes doubled, matching the format the
// bot has always exported; encoding/csv quotes only when necessary and would
// change the bytes.
func exportCSV(quotes []*domain.Quote) string {
	var b strings.Builder
	b.WriteString("ID,Quote,Author,Date\n")

	for _, q := range quotes {
		b.WriteString(csvField(strconv.FormatInt(q.ID, 10)))
		b.WriteByte(',')
		b.WriteString(csvField(q.Quotation))
		b.WriteByte(',')
		b.WriteString(csvField(q.Author))
		b.WriteByte(',')
		b.WriteString(csvField(q.SaidAt.Format("2006-01-02")))
		b.WriteByte('\n')
	}

	return b.String()
}

func csvField(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// exportText renders one formatted quote per line with author mention tokens
// resolved to display names, since raw tokens mean nothing outside the
// client.
func exportText(ctx context.Context, quotes []*domain.Quote, r domain.NameResolver) string {
	var b strings.Builder
	for _, q := range quotes {
		b.WriteString(domain.FormatQuoteResolved(ctx, q, true, r))
		b.WriteByte('\n')
	}

	return b.String()
}
