package extract

import "strings"

// digitWords converts spelled-out digits left behind by speech-to-text.
var digitWords = strings.NewReplacer(
	"zero", "0",
	"one", "1",
	"two", "2",
	"three", "3",
	"four", "4",
	"five", "5",
	"six", "6",
	"seven", "7",
	"eight", "8",
	"nine", "9",
)

// NormalizeSpoken converts spoken artifacts into digital form so UPI ids and
// phone numbers dictated over a call still match: digit words become digits,
// " at " becomes "@" and " dot " becomes ".". The result is lower-cased.
func NormalizeSpoken(text string) string {
	text = strings.ToLower(text)
	text = digitWords.Replace(text)
	text = strings.ReplaceAll(text, " at ", "@")
	text = strings.ReplaceAll(text, " dot ", ".")
	return text
}
