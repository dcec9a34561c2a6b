// Package chat holds client-side message validation and classification.
// The backend applies its own moderation; this layer only keeps obviously
// bad input from being sent at all.
package chat

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxMessageLength is the longest chat message the client will send.
const MaxMessageLength = 100

// Mask replaces every blocked term occurrence.
const Mask = "***"

// DefaultBlockedTerms is the moderation list the original deployment shipped
// with (politics, porn, violence, gambling, drugs).
var DefaultBlockedTerms = []string{"政治", "色情", "暴力", "赌博", "毒品"}

var (
	ErrEmptyContent = errors.New("message content cannot be empty")
	ErrTooLong      = errors.New("message cannot exceed 100 characters")
	ErrBlockedTerm  = errors.New("message contains a blocked term")
)

var linkPattern = regexp.MustCompile(`https?://\S+`)

// ValidateMessage rejects empty, over-long, or blocked-term content.
func ValidateMessage(content string) error {
	return ValidateMessageWith(content, DefaultBlockedTerms)
}

// ValidateMessageWith is ValidateMessage against a custom term list.
func ValidateMessageWith(content string, blocked []string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return ErrTooLong
	}
	lower := strings.ToLower(content)
	for _, term := range blocked {
		if strings.Contains(lower, strings.ToLower(term)) {
			return ErrBlockedTerm
		}
	}
	return nil
}

// FilterSensitiveWords replaces every blocked term occurrence with the mask,
// case-insensitively.
func FilterSensitiveWords(content string) string {
	return FilterSensitiveWordsWith(content, DefaultBlockedTerms)
}

// FilterSensitiveWordsWith is FilterSensitiveWords against a custom list.
func FilterSensitiveWordsWith(content string, blocked []string) string {
	for _, term := range blocked {
		if term == "" {
			continue
		}
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term))
		content = re.ReplaceAllString(content, Mask)
	}
	return content
}

// DetectContentType classifies a message body for rendering purposes.
func DetectContentType(content string) string {
	if startsWithEmoji(content) {
		return "emoji"
	}
	if strings.Contains(content, "[系统]") || strings.Contains(content, "[system]") {
		return "system"
	}
	if linkPattern.MatchString(content) {
		return "link"
	}
	return "text"
}

// startsWithEmoji reports whether the first rune falls in the common emoji
// and symbol blocks.
func startsWithEmoji(content string) bool {
	r, _ := utf8.DecodeRuneInString(content)
	switch {
	case r >= 0x1F600 && r <= 0x1F64F, // emoticons
		r >= 0x1F300 && r <= 0x1F5FF, // symbols & pictographs
		r >= 0x1F680 && r <= 0x1F6FF, // transport
		r >= 0x1F1E0 && r <= 0x1F1FF, // regional indicators
		r >= 0x2600 && r <= 0x26FF, // misc symbols
		r >= 0x2700 && r <= 0x27BF: // dingbats
		return true
	}
	return false
}

// FormatTime renders a timestamp the way the chat panel displays it.
func FormatTime(t time.Time) string {
	return t.Local().Format("15:04")
}
