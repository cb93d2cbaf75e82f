package reply

import (
	"regexp"
	"strings"
)

// contractions are expanded before speech synthesis; the TTS voice
// renders expanded forms far more clearly than clipped ones.
var contractions = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)don't`), "do not"},
	{regexp.MustCompile(`(?i)can't`), "cannot"},
	{regexp.MustCompile(`(?i)won't`), "will not"},
	{regexp.MustCompile(`(?i)shouldn't`), "should not"},
	{regexp.MustCompile(`(?i)wouldn't`), "would not"},
	{regexp.MustCompile(`(?i)couldn't`), "could not"},
	{regexp.MustCompile(`(?i)isn't`), "is not"},
	{regexp.MustCompile(`(?i)aren't`), "are not"},
	{regexp.MustCompile(`(?i)wasn't`), "was not"},
	{regexp.MustCompile(`(?i)weren't`), "were not"},
	{regexp.MustCompile(`(?i)hasn't`), "has not"},
	{regexp.MustCompile(`(?i)haven't`), "have not"},
	{regexp.MustCompile(`(?i)hadn't`), "had not"},
	{regexp.MustCompile(`(?i)doesn't`), "does not"},
	{regexp.MustCompile(`(?i)didn't`), "did not"},
	{regexp.MustCompile(`(?i)I'm`), "I am"},
	{regexp.MustCompile(`(?i)you're`), "you are"},
	{regexp.MustCompile(`(?i)we're`), "we are"},
	{regexp.MustCompile(`(?i)they're`), "they are"},
	{regexp.MustCompile(`(?i)he's`), "he is"},
	{regexp.MustCompile(`(?i)she's`), "she is"},
	{regexp.MustCompile(`(?i)it's`), "it is"},
	{regexp.MustCompile(`(?i)that's`), "that is"},
	{regexp.MustCompile(`(?i)there's`), "there is"},
	{regexp.MustCompile(`(?i)here's`), "here is"},
	{regexp.MustCompile(`(?i)what's`), "what is"},
	{regexp.MustCompile(`(?i)where's`), "where is"},
	{regexp.MustCompile(`(?i)who's`), "who is"},
	{regexp.MustCompile(`(?i)how's`), "how is"},
	{regexp.MustCompile(`(?i)I'll`), "I will"},
	{regexp.MustCompile(`(?i)you'll`), "you will"},
	{regexp.MustCompile(`(?i)he'll`), "he will"},
	{regexp.MustCompile(`(?i)she'll`), "she will"},
	{regexp.MustCompile(`(?i)we'll`), "we will"},
	{regexp.MustCompile(`(?i)they'll`), "they will"},
	{regexp.MustCompile(`(?i)I've`), "I have"},
	{regexp.MustCompile(`(?i)you've`), "you have"},
	{regexp.MustCompile(`(?i)we've`), "we have"},
	{regexp.MustCompile(`(?i)they've`), "they have"},
	{regexp.MustCompile(`(?i)I'd`), "I would"},
	{regexp.MustCompile(`(?i)you'd`), "you would"},
	{regexp.MustCompile(`(?i)he'd`), "he would"},
	{regexp.MustCompile(`(?i)she'd`), "she would"},
	{regexp.MustCompile(`(?i)we'd`), "we would"},
	{regexp.MustCompile(`(?i)they'd`), "they would"},
}

var typographic = strings.NewReplacer(
	"‘", "", // left single quote
	"’", "", // right single quote
	"‚", "", // low single quote
	"“", "", // left double quote
	"”", "", // right double quote
	"„", "", // low double quote
	"…", "...",
	"–", "-",
	"—", " - ",
)

// SanitizeForSpeech normalizes utterance text for TTS: contractions
// expanded, typographic punctuation flattened to ASCII, whitespace
// collapsed.
func SanitizeForSpeech(text string) string {
	for _, c := range contractions {
		text = c.re.ReplaceAllString(text, c.replacement)
	}
	text = typographic.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}
