package engine

import (
	"regexp"
	"strings"

	"github.com/ptrgiang/automation-studio/internal/model"
)

var placeholderPattern = regexp.MustCompile(`\{batch:(\w+)\}`)

// Substitute replaces {batch:column} tokens in text with values from row.
// Tokens whose column is absent from the row are left verbatim. The input is
// never modified, so the same template can be reused across batch rows.
func Substitute(text string, row model.Row) string {
	if row == nil || !strings.Contains(text, "{batch:") {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		column := placeholderPattern.FindStringSubmatch(token)[1]
		if value, ok := row[column]; ok {
			return value
		}
		return token
	})
}

// HasPlaceholders reports whether any enabled step carries a {batch:column}
// token in a substitutable field.
func HasPlaceholders(steps []model.Step) bool {
	for _, step := range steps {
		if !step.Enabled {
			continue
		}
		switch p := step.Params.(type) {
		case model.TypeParams:
			if placeholderPattern.MatchString(p.Text) {
				return true
			}
		case model.SetValueParams:
			if placeholderPattern.MatchString(p.Value) {
				return true
			}
		}
	}
	return false
}
