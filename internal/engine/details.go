package engine

import (
	"fmt"
	"strings"

	"github.com/ptrgiang/automation-studio/internal/model"
)

// describeStep formats a short human-readable parameter summary for progress
// text, with placeholders already substituted. Logic never depends on it.
func describeStep(step model.Step, row model.Row) string {
	switch p := step.Params.(type) {
	case model.ClickParams:
		if p.UseCurrentPosition {
			return "at current position"
		}
		return fmt.Sprintf("at (%d, %d)", p.X, p.Y)
	case model.DeleteParams:
		return fmt.Sprintf("(%s)", p.Method)
	case model.TypeParams:
		return fmt.Sprintf("%q", truncate(Substitute(p.Text, row), 40))
	case model.KeyPressParams:
		return strings.ToUpper(p.Key)
	case model.SetValueParams:
		return fmt.Sprintf("= %q", truncate(Substitute(p.Value, row), 30))
	case model.ScrollParams:
		if p.ScrollType == model.ScrollAmount {
			return fmt.Sprintf("%d pixels", p.Amount)
		}
		return fmt.Sprintf("to %s", p.ScrollType)
	case model.WaitParams:
		if p.WaitType == model.WaitImage {
			return fmt.Sprintf("for %s", p.ImageName)
		}
		return fmt.Sprintf("%gs", p.Duration)
	case model.FindImageParams:
		return p.ImageName
	case model.MoveMouseParams:
		return fmt.Sprintf("%s %dpx", p.Direction, p.Distance)
	}
	return ""
}

func stepLabel(step model.Step) string {
	return strings.ToUpper(string(step.Type))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
