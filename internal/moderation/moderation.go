package moderation

import (
	"fmt"
	"regexp"

	"github.com/kitbuilder587/gemini-go/internal/redact"
)

type Category string

const (
	CategoryCybercrime   Category = "cybercrime"
	CategoryIllegality   Category = "illegality"
	CategoryViolence     Category = "violence"
	CategoryWeaponsDrugs Category = "weapons_drugs"
)

type rule struct {
	category Category
	pattern  *regexp.Regexp
}

// паттерны якорятся только на начало слова: "hacking" и "attacked" тоже ловятся
var rules = []rule{
	{CategoryCybercrime, regexp.MustCompile(`(?i)\b(hack|exploit|malware|virus|trojan|ransomware)`)},
	{CategoryIllegality, regexp.MustCompile(`(?i)\b(illegal|unlawful|criminal)`)},
	{CategoryViolence, regexp.MustCompile(`(?i)\b(violence|kill|harm|attack)`)},
	{CategoryWeaponsDrugs, regexp.MustCompile(`(?i)\b(drug|weapon|nuclear)`)},
}

type Finding struct {
	Category Category
	Pattern  string
	Matches  int
}

func (f Finding) String() string {
	return fmt.Sprintf("detected potentially harmful pattern %s (%s)", f.Pattern, f.Category)
}

type Filter struct {
	rules []rule
}

func New() *Filter {
	return &Filter{rules: rules}
}

// Moderate заменяет каждое совпадение на [REDACTED]. Одна находка на сработавший паттерн.
func (f *Filter) Moderate(text string) (string, []Finding) {
	var findings []Finding

	for _, r := range f.rules {
		n := len(r.pattern.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		text = r.pattern.ReplaceAllLiteralString(text, redact.Token)
		findings = append(findings, Finding{
			Category: r.category,
			Pattern:  r.pattern.String(),
			Matches:  n,
		})
	}

	return text, findings
}
