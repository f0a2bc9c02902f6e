package services

import (
	"strings"
	"unicode"

	"spacetraveling/pkg/models"
)

// WordsPerMinute is the reading speed used by EstimateReadingTime.
const WordsPerMinute = 200

// EstimateReadingTime returns whole minutes, rounded up, to read sections.
//
// A heading runs straight into its first paragraph, paragraphs are joined by
// a space and so are sections. Words are runs of letters or digits. No words
// means zero minutes; any words mean at least one.
func EstimateReadingTime(sections []models.ContentSection) int {
	words := CountWords(readingText(sections))
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// CountWords counts maximal runs of Unicode letters and digits.
func CountWords(text string) int {
	return len(strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
}

func readingText(sections []models.ContentSection) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.Heading)
		b.WriteString(strings.Join(s.Paragraphs, " "))
	}
	return b.String()
}
