package app

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"quotebot/internal/ports"
)

// Recap chunking and selection parameters.
const (
	recapChunkLength     = 1900
	recapMinMessages     = 5
	recapTopUsers        = 3
	recapTopKeywords     = 8
	recapTopLinks        = 3
	recapScoringKeywords = 12
	recapHighlights      = 5
)

var (
	recapLink    = regexp.MustCompile(`https?://\S+`)
	recapMention = regexp.MustCompile(`<@!?[0-9]+>|<#[0-9]+>`)
	recapEmoji   = regexp.MustCompile(`<a?:\w+:[0-9]+>`)
	recapStrip   = regexp.MustCompile(`[^\p{L}\p{N}\s']`)
)

// recapStopWords is broader than the word-cloud set; recap summarizes chat,
// which leans on fillers quotations rarely contain.
var recapStopWords = map[string]struct{}{
	"and": {}, "are": {}, "but": {}, "for": {}, "from": {}, "has": {},
	"have": {}, "her": {}, "his": {}, "into": {}, "its": {}, "just": {},
	"not": {}, "our": {}, "she": {}, "than": {}, "that": {}, "the": {},
	"their": {}, "them": {}, "then": {}, "there": {}, "these": {},
	"they": {}, "this": {}, "too": {}, "was": {}, "were": {}, "what": {},
	"when": {}, "where": {}, "who": {}, "why": {}, "will": {}, "with": {},
	"you": {}, "your": {}, "yours": {}, "yeah": {}, "dont": {},
	"cant": {}, "didnt": {}, "doesnt": {}, "wont": {}, "lol": {},
	"lmao": {},
}

// Recap summarizes recent conversation in the invoking channel: activity
// stats, dominant keywords, shared links, and a handful of extractive
// highlights scored by keyword density.
func (s *Service) Recap(ctx context.Context, in ports.Interaction) error {
	limit := s.recap.DefaultMessages
	if v, ok := in.IntOption("messages"); ok {
		limit = int(v)
	}
	if limit > s.recap.MaxMessages {
		limit = s.recap.MaxMessages
	}
	if limit < s.recap.MinMessages {
		limit = s.recap.MinMessages
	}

	var since time.Time
	if hours, ok := in.IntOption("hours"); ok && hours > 0 {
		if hours > int64(s.recap.MaxHours) {
			hours = int64(s.recap.MaxHours)
		}
		since = s.now().Add(-time.Duration(hours) * time.Hour)
	}

	if err := in.Defer(ctx, false); err != nil {
		return err
	}

	history, err := in.History(ctx, limit, since)
	if err != nil {
		return s.edit(ctx, in, err, ports.Message{Content: msgHistoryError})
	}

	messages := make([]ports.ChannelMessage, 0, len(history))
	for _, m := range history {
		if m.Bot || strings.TrimSpace(m.Content) == "" {
			continue
		}
		if !since.IsZero() && m.SentAt.Before(since) {
			continue
		}
		messages = append(messages, m)
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].SentAt.Before(messages[j].SentAt)
	})

	if len(messages) < recapMinMessages {
		return in.Edit(ctx, ports.Message{Content: msgRecapTooFew})
	}

	recap := buildRecap(in.ChannelID(), messages)

	chunks := chunkText(recap, recapChunkLength)
	if err := in.Edit(ctx, ports.Message{Content: chunks[0]}); err != nil {
		return err
	}
	for _, chunk := range chunks[1:] {
		if err := in.Followup(ctx, ports.Message{Content: chunk}); err != nil {
			return err
		}
	}

	return nil
}

// buildRecap assembles the recap text from chronologically ordered messages.
func buildRecap(channelID string, messages []ports.ChannelMessage) string {
	var (
		users    tally
		keywords tally
		links    tally
	)
	tokensByMessage := make([][]string, len(messages))

	for i, m := range messages {
		users.add(m.AuthorID)

		for _, link := range recapLink.FindAllString(m.Content, -1) {
			links.add(link)
		}

		toks := recapTokenize(m.Content)
		tokensByMessage[i] = toks
		for _, t := range toks {
			keywords.add(t)
		}
	}

	topUsers := make([]string, 0, recapTopUsers)
	for _, e := range users.top(recapTopUsers) {
		topUsers = append(topUsers, fmt.Sprintf("<@%s> (%d)", e.key, e.count))
	}

	topKeywords := make([]string, 0, recapTopKeywords)
	for _, e := range keywords.top(recapTopKeywords) {
		topKeywords = append(topKeywords, fmt.Sprintf("%s(%d)", e.key, e.count))
	}

	topLinks := make([]string, 0, recapTopLinks)
	for _, e := range links.top(recapTopLinks) {
		topLinks = append(topLinks, fmt.Sprintf("%s (%d)", e.key, e.count))
	}

	scoringSet := make(map[string]struct{}, recapScoringKeywords)
	for _, e := range keywords.top(recapScoringKeywords) {
		scoringSet[e.key] = struct{}{}
	}

	type scored struct {
		msg   ports.ChannelMessage
		score int
	}
	candidates := make([]scored, len(messages))
	for i, m := range messages {
		score := 0
		for _, t := range tokensByMessage[i] {
			if _, hit := scoringSet[t]; hit {
				score++
			}
		}
		// Links tend to be what the channel was actually talking about,
		// and medium-length messages read best as highlights.
		if recapLink.MatchString(m.Content) {
			score += 2
		}
		if n := utf8.RuneCountInString(m.Content); n > 40 && n < 300 {
			score += 2
		}
		candidates[i] = scored{msg: m, score: score}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	highlights := make([]string, 0, recapHighlights)
	for _, c := range candidates {
		if len(highlights) == recapHighlights {
			break
		}
		highlights = append(highlights, fmt.Sprintf("• **%s**: %s", c.msg.AuthorName, truncateRunes(c.msg.Content, 180)))
	}

	themes := "N/A"
	if len(topKeywords) > 0 {
		themes = strings.Join(topKeywords, ", ")
	}
	active := "N/A"
	if len(topUsers) > 0 {
		active = strings.Join(topUsers, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\U0001f9fe **Channel Recap** (<#%s>)\n", channelID)
	fmt.Fprintf(&b, "**Window:** %s → %s\n", formatRecapTime(messages[0].SentAt), formatRecapTime(messages[len(messages)-1].SentAt))
	fmt.Fprintf(&b, "**Messages summarized:** %d\n\n", len(messages))
	fmt.Fprintf(&b, "**Main themes:** %s\n", themes)
	fmt.Fprintf(&b, "**Most active:** %s\n\n", active)
	b.WriteString("**Highlights**\n")
	b.WriteString(strings.Join(highlights, "\n"))
	if len(topLinks) > 0 {
		b.WriteString("\n\n**Links mentioned:**\n")
		for i, link := range topLinks {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("• " + link)
		}
	}

	return b.String()
}

// recapTokenize lower-cases and strips links, mentions, custom emoji, and
// punctuation, then keeps tokens of three or more runes that are not recap
// stop words.
func recapTokenize(content string) []string {
	cleaned := recapLink.ReplaceAllString(content, " ")
	cleaned = recapMention.ReplaceAllString(cleaned, " ")
	cleaned = recapEmoji.ReplaceAllString(cleaned, " ")
	cleaned = recapStrip.ReplaceAllString(cleaned, " ")
	cleaned = strings.ToLower(cleaned)

	var tokens []string
	for _, field := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(field) < 3 {
			continue
		}
		if _, stop := recapStopWords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}

	return tokens
}

// tally counts string keys while remembering first-encountered order, so
// top() breaks frequency ties deterministically.
type tally struct {
	counts map[string]int
	order  []string
}

type tallyEntry struct {
	key   string
	count int
}

func (t *tally) add(key string) {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, seen := t.counts[key]; !seen {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

func (t *tally) top(n int) []tallyEntry {
	entries := make([]tallyEntry, 0, len(t.order))
	for _, key := range t.order {
		entries = append(entries, tallyEntry{key: key, count: t.counts[key]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})

	if len(entries) > n {
		entries = entries[:n]
	}

	return entries
}

// truncateRunes shortens s to at most limit runes, ellipsizing when cut.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	return string(runes[:limit-3]) + "…"
}

// chunkText splits text into pieces of at most limit bytes. Discord rejects
// messages over 2000 characters; 1900 leaves headroom for markdown the
// client adds around followups.
func chunkText(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	remaining := text
	for len(remaining) > limit {
		cut := limit
		// Back off to a rune boundary.
		for cut > 0 && !utf8.RuneStart(remaining[cut]) {
			cut--
		}
		chunks = append(chunks, remaining[:cut])
		remaining = remaining[cut:]
	}
	if len(remaining) > 0 {
		chunks = append(chunks, remaining)
	}

	return chunks
}

// formatRecapTime renders a message timestamp for the recap window line.
func formatRecapTime(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}
