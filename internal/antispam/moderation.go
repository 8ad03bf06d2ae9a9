package antispam

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxModeratedLength matches the longest review comment; anything longer is flagged outright.
const maxModeratedLength = 1000

// wordStart stands in for \b, which RE2 only understands for ASCII.
const wordStart = `(?:^|[^\p{L}\p{N}_])`

var profanityPatterns = []*regexp.Regexp{
	regexp.MustCompile(wordStart + `(?:бля|ёб|еб|пизд|хуй|хуя|хуе|хуи|сука|сучк|мудак|мудил|дебил|долбо|залуп|говн|срать|сран|жоп|ёпт)`),
	regexp.MustCompile(wordStart + `нах(?:$|[^\p{L}\p{N}_])`),
	regexp.MustCompile(wordStart + `(?:fuck|shit|bitch|asshole|dick|pussy|cunt|motherfucker|damn|ass)`),
	regexp.MustCompile(wordStart + `(?:б+л+я+|п+и+з+д+|х+у+й+|е+б+а+|с+у+к+а+)`),
	regexp.MustCompile(`(?:f+u+c+k+|s+h+i+t+|b+i+t+c+h+)`),
}

var leetReplacer = strings.NewReplacer(
	"0", "о",
	"@", "а",
	"3", "е",
	"1", "и",
	"4", "а",
	"5", "s",
	"$", "s",
	"6", "б",
	"8", "в",
	"!", "i",
	"7", "t",
	"9", "g",
	"&", "и",
)

var separatorReplacer = strings.NewReplacer(
	".", "", "_", "", "-", "", "*", "", "#", "", "~", "", "^", "", "<", "", ">", "",
)

// ContainsProfanity reports whether a review comment should be refused. It never mutes anyone.
func ContainsProfanity(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if utf8.RuneCountInString(text) > maxModeratedLength {
		return true
	}

	normalized := NormalizeText(text)
	for _, pattern := range profanityPatterns {
		if pattern.MatchString(normalized) {
			return true
		}
	}
	return false
}

// NormalizeText undoes common obfuscation: case, leet-speak digits, separator punctuation
// and stretched letters.
func NormalizeText(text string) string {
	normalized := strings.ToLower(text)
	normalized = leetReplacer.Replace(normalized)
	normalized = separatorReplacer.Replace(normalized)
	return collapseRuns(normalized)
}

// collapseRuns shortens every run of four or more identical runes to two.
func collapseRuns(text string) string {
	runes := []rune(text)
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		n := j - i
		if n >= 4 {
			n = 2
		}
		for k := 0; k < n; k++ {
			sb.WriteRune(runes[i])
		}
		i = j
	}
	return sb.String()
}
