package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Default submission limits, used when configuration does not override them.
const (
	DefaultMaxQuotationLength = 1500
	DefaultMaxAuthorLength    = 200
)

// QuoteLimits bounds new quote submissions.
type QuoteLimits struct {
	MaxQuotationLength int
	MaxAuthorLength    int
}

// DefaultQuoteLimits returns the standard submission limits.
func DefaultQuoteLimits() QuoteLimits {
	return QuoteLimits{
		MaxQuotationLength: DefaultMaxQuotationLength,
		MaxAuthorLength:    DefaultMaxAuthorLength,
	}
}

var (
	// dateShape is a loose structural check only. Calendar validity is
	// checked by ParseSaidDate at insert time.
	dateShape = regexp.MustCompile(`^[0-9]{1,2}[-/][0-9]{1,2}[-/][0-9]{2,4}$`)

	httpLink = regexp.MustCompile(`(?i)https?://`)
)

// ValidateNewQuote checks a new quote submission against the limits. All
// violations are collected and returned together rather than short-circuiting
// on the first, so the user sees every problem at once. A nil return means
// the submission is acceptable.
func ValidateNewQuote(quotation, author, date string, limits QuoteLimits) []error {
	var violations []error

	if n := utf8.RuneCountInString(quotation); n > limits.MaxQuotationLength {
		violations = append(violations, NewValidationError("quote",
			fmt.Sprintf("Your quote of length %d characters exceeds the maximum allowed length of %d characters.", n, limits.MaxQuotationLength)))
	}

	if n := utf8.RuneCountInString(author); n > limits.MaxAuthorLength {
		violations = append(violations, NewValidationError("author",
			fmt.Sprintf("Your author of length %d characters exceeds the maximum allowed length of %d characters.", n, limits.MaxAuthorLength)))
	}

	if httpLink.MatchString(quotation) {
		violations = append(violations, NewValidationError("quote",
			"Quotes with links are disallowed."))
	}

	if date = strings.TrimSpace(date); date != "" && !dateShape.MatchString(date) {
		violations = append(violations, NewValidationError("date",
			"Your provided date has incorrect formatting. Use MM/DD/YYYY or MM-DD-YYYY (e.g. 08/15/2021 or 8-15-21)"))
	}

	return violations
}

// ViolationText joins violations into one user-facing block, one bulleted
// violation per line.
func ViolationText(violations []error) string {
	var b strings.Builder
	for _, v := range violations {
		b.WriteString("- ")

		var ve *ValidationError
		if errors.As(v, &ve) {
			b.WriteString(ve.Message)
		} else {
			b.WriteString(v.Error())
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}
