package analysis

import "strings"

// Inferred gender labels. The question marks are part of the label: the
// inference is a name-suffix guess.
const (
	GenderFemale  = "Female?"
	GenderMale    = "Male?"
	GenderUnknown = "Unknown"
)

// GenderCaveat is attached to any table aggregated over InferGender.
const GenderCaveat = "gender is guessed from first-name suffixes and is not ground truth"

var genderRules = []struct {
	label    string
	suffixes []string
}{
	{GenderFemale, []string{"a", "i", "ee", "ita", "ika", "shi", "ni", "thi"}},
	{GenderMale, []string{"k", "n", "t", "v", "r", "esh", "an", "it", "al"}},
}

// InferGender guesses a coarse gender label from the first token of name.
func InferGender(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return GenderUnknown
	}
	first := strings.ToLower(fields[0])
	for _, rule := range genderRules {
		for _, suf := range rule.suffixes {
			if strings.HasSuffix(first, suf) {
				return rule.label
			}
		}
	}
	return GenderUnknown
}
