package moderation

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// Verdict is the local filter's answer for one piece of normalized text.
type Verdict struct {
	Safe   bool   `json:"safe"`
	Reason string `json:"reason"`
}

const (
	ReasonSafe           = "safe"
	ReasonContactInfo    = "contains probable personal contact information"
	ReasonExternalRef    = "contains disallowed external contact reference"
	ReasonCrisisLanguage = "contains crisis or unsafe emotional language"
	ReasonStressFraming  = "frames stress as positive, which is unsafe messaging"
)

type rule struct {
	re     *regexp2.Regexp
	reason string
}

// Ordered rule list; first match wins. Patterns run against normalized
// text, so they only need to cover lowercase ASCII forms.
var rules = []rule{
	{regexp2.MustCompile(`\d{7,}`, regexp2.None), ReasonContactInfo},
	{regexp2.MustCompile(`(instagram|snap|discord|tik ?tok|@|\.com)`, regexp2.None), ReasonExternalRef},
	{regexp2.MustCompile(`(suicide|kill myself|end it|there.?s no point|nothing matters|hopeless|depressed|anxious|sad|hurting)`, regexp2.None), ReasonCrisisLanguage},
}

var positiveFraming = []string{"good", "great", "positive", "helpful", "useful", "beneficial"}

// Evaluate runs the deterministic offline rules. It is the mandatory first
// line of defense: it must keep working when the arbiter is down, and an
// unsafe verdict here short-circuits the arbiter call entirely.
func Evaluate(normalized string) Verdict {
	for _, r := range rules {
		if matched, _ := r.re.MatchString(normalized); matched {
			return Verdict{Safe: false, Reason: r.reason}
		}
	}

	if strings.Contains(normalized, "stress") {
		for _, w := range positiveFraming {
			if strings.Contains(normalized, w) {
				return Verdict{Safe: false, Reason: ReasonStressFraming}
			}
		}
	}

	return Verdict{Safe: true, Reason: ReasonSafe}
}
