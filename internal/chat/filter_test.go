package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMessage(t *testing.T) {
	t.Run("rejects empty content", func(t *testing.T) {
		assert.ErrorIs(t, ValidateMessage(""), ErrEmptyContent)
		assert.ErrorIs(t, ValidateMessage("   \t  "), ErrEmptyContent)
	})

	t.Run("rejects content over 100 characters", func(t *testing.T) {
		assert.ErrorIs(t, ValidateMessage(strings.Repeat("a", 101)), ErrTooLong)
		assert.NoError(t, ValidateMessage(strings.Repeat("a", 100)))
	})

	t.Run("counts runes, not bytes", func(t *testing.T) {
		// 100 CJK runes are 300 bytes but still within the limit.
		assert.NoError(t, ValidateMessage(strings.Repeat("好", 100)))
		assert.ErrorIs(t, ValidateMessage(strings.Repeat("好", 101)), ErrTooLong)
	})

	t.Run("rejects every default blocked term", func(t *testing.T) {
		for _, term := range DefaultBlockedTerms {
			assert.ErrorIs(t, ValidateMessage("前缀"+term+"后缀"), ErrBlockedTerm, term)
		}
	})

	t.Run("blocked term match is case-insensitive", func(t *testing.T) {
		err := ValidateMessageWith("say BADWORD now", []string{"badword"})
		assert.ErrorIs(t, err, ErrBlockedTerm)
	})

	t.Run("accepts ordinary content", func(t *testing.T) {
		assert.NoError(t, ValidateMessage("hello there"))
	})
}

func TestFilterSensitiveWords(t *testing.T) {
	t.Run("masks every occurrence", func(t *testing.T) {
		got := FilterSensitiveWordsWith("x bad y bad z", []string{"bad"})
		assert.Equal(t, "x *** y *** z", got)
	})

	t.Run("masks case-insensitively", func(t *testing.T) {
		got := FilterSensitiveWordsWith("Bad BAD bad", []string{"bad"})
		assert.Equal(t, "*** *** ***", got)
	})

	t.Run("masks default terms", func(t *testing.T) {
		for _, term := range DefaultBlockedTerms {
			got := FilterSensitiveWords("a" + term + "b")
			assert.Equal(t, "a***b", got, term)
		}
	})

	t.Run("leaves clean content alone", func(t *testing.T) {
		assert.Equal(t, "clean text", FilterSensitiveWords("clean text"))
	})
}

func TestDetectContentType(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"hello", "text"},
		{"😀 nice hand", "emoji"},
		{"☀ sunny", "emoji"},
		{"see https://example.com/rules", "link"},
		{"[系统] game starting", "system"},
		{"[system] game starting", "system"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectContentType(tc.content), tc.content)
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 5, 1, 15, 4, 30, 0, time.Local)
	require.Equal(t, "15:04", FormatTime(ts))
}
