package model

import (
	"encoding/json"
	"fmt"
)

// ActionType identifies the operation an action record performs.
type ActionType string

const (
	ActionClick     ActionType = "click"
	ActionDelete    ActionType = "delete"
	ActionTypeText  ActionType = "type"
	ActionKeyPress  ActionType = "key_press"
	ActionSetValue  ActionType = "set_value"
	ActionScroll    ActionType = "scroll"
	ActionWait      ActionType = "wait"
	ActionFindImage ActionType = "find_image"
	ActionMoveMouse ActionType = "move_mouse"
)

// DeleteMethod selects how existing field contents are cleared.
type DeleteMethod string

const (
	DeleteCtrlA       DeleteMethod = "ctrl_a"
	DeleteBackspace   DeleteMethod = "backspace"
	DeleteTripleClick DeleteMethod = "triple_click"
)

// ScrollType selects between a fixed scroll amount and scrolling to an extreme.
type ScrollType string

const (
	ScrollAmount ScrollType = "amount"
	ScrollTop    ScrollType = "top"
	ScrollBottom ScrollType = "bottom"
)

// WaitType selects between a fixed duration wait and waiting for an image.
type WaitType string

const (
	WaitDuration WaitType = "duration"
	WaitImage    WaitType = "image"
)

// Direction is a relative mouse movement direction.
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Defaults applied when a field is absent from a record. Records written by
// older versions of the editor omit most of these, so decoding fills them in
// instead of erroring.
const (
	DefaultWaitAfter     = 0.5
	DefaultTypeInterval  = 0.1
	DefaultKey           = "enter"
	DefaultWaitSeconds   = 1.0
	DefaultImageTimeout  = 30.0
	DefaultCheckInterval = 0.5
	DefaultConfidence    = 0.8
)

// Row is one batch iteration's substitution context, column name to value.
// Rows are read-only to the engine.
type Row map[string]string

// Params carries the variant-specific fields of one action type. All
// implementations are flat value types, so copying a Step copies its params.
type Params interface {
	Kind() ActionType
}

// ClickParams moves the pointer and issues a press-release.
type ClickParams struct {
	X                  int
	Y                  int
	UseCurrentPosition bool
}

func (ClickParams) Kind() ActionType { return ActionClick }

// DeleteParams clears the focused field via the chosen method.
type DeleteParams struct {
	Method DeleteMethod
}

func (DeleteParams) Kind() ActionType { return ActionDelete }

// TypeParams streams text to the focused target. Text may contain
// {batch:column} placeholders.
type TypeParams struct {
	Text     string
	Interval float64 // seconds per character
}

func (TypeParams) Kind() ActionType { return ActionTypeText }

// KeyPressParams issues a single named key press.
type KeyPressParams struct {
	Key string
}

func (KeyPressParams) Kind() ActionType { return ActionKeyPress }

// SetValueParams is the click + delete + type composite. Value may contain
// {batch:column} placeholders.
type SetValueParams struct {
	X                  int
	Y                  int
	UseCurrentPosition bool
	Value              string
	Method             DeleteMethod
}

func (SetValueParams) Kind() ActionType { return ActionSetValue }

// ScrollParams scrolls by a signed amount (negative scrolls down) or to an
// extreme via repeated Home/End presses.
type ScrollParams struct {
	ScrollType ScrollType
	Amount     int
}

func (ScrollParams) Kind() ActionType { return ActionScroll }

// WaitParams sleeps for a duration or polls the screen for an image.
type WaitParams struct {
	WaitType      WaitType
	Duration      float64 // seconds, duration mode
	ImagePath     string
	ImageName     string
	Timeout       float64 // seconds, image mode
	CheckInterval float64 // seconds, image mode
	Confidence    float64
}

func (WaitParams) Kind() ActionType { return ActionWait }

// FindImageParams locates an image on screen, moves the pointer to its
// center and optionally clicks. Absence is a run-fatal error.
type FindImageParams struct {
	ImagePath  string
	ImageName  string
	Confidence float64
	ClickAfter bool
}

func (FindImageParams) Kind() ActionType { return ActionFindImage }

// MoveMouseParams moves the pointer relative to its current position.
type MoveMouseParams struct {
	Direction Direction
	Distance  int
}

func (MoveMouseParams) Kind() ActionType { return ActionMoveMouse }

// Step is one executable record of a workflow: the action variant plus the
// envelope fields shared by every type.
type Step struct {
	Type        ActionType
	Enabled     bool
	WaitAfter   float64 // seconds slept after the action completes
	Description string
	Params      Params
}

// CloneSteps returns an independent copy of a step sequence. Params are flat
// value types, so a slice copy is a deep copy; batch runs clone the template
// once per row so substitution never sees a mutated sequence.
func CloneSteps(steps []Step) []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// stepJSON is the flat wire shape shared with the editor. Pointer fields
// distinguish "absent" from explicit zero values.
type stepJSON struct {
	Type               ActionType   `json:"type"`
	Enabled            *bool        `json:"enabled,omitempty"`
	WaitAfter          *float64     `json:"wait_after,omitempty"`
	Description        string       `json:"description,omitempty"`
	X                  int          `json:"x,omitempty"`
	Y                  int          `json:"y,omitempty"`
	UseCurrentPosition bool         `json:"use_current_position,omitempty"`
	Method             DeleteMethod `json:"method,omitempty"`
	Text               string       `json:"text,omitempty"`
	Interval           *float64     `json:"interval,omitempty"`
	Key                string       `json:"key,omitempty"`
	Value              string       `json:"value,omitempty"`
	ScrollType         ScrollType   `json:"scroll_type,omitempty"`
	Amount             int          `json:"amount,omitempty"`
	WaitType           WaitType     `json:"wait_type,omitempty"`
	Duration           *float64     `json:"duration,omitempty"`
	ImagePath          string       `json:"image_path,omitempty"`
	ImageName          string       `json:"image_name,omitempty"`
	Timeout            *float64     `json:"timeout,omitempty"`
	CheckInterval      *float64     `json:"check_interval,omitempty"`
	Confidence         *float64     `json:"confidence,omitempty"`
	ClickAfter         bool         `json:"click_after,omitempty"`
	Direction          Direction    `json:"direction,omitempty"`
	Distance           int          `json:"distance,omitempty"`
}

// UnmarshalJSON decodes the flat editor shape into the typed variant,
// applying the documented defaults for absent fields.
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw stepJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Type = raw.Type
	s.Description = raw.Description
	s.Enabled = true
	if raw.Enabled != nil {
		s.Enabled = *raw.Enabled
	}
	s.WaitAfter = DefaultWaitAfter
	if raw.WaitAfter != nil {
		s.WaitAfter = *raw.WaitAfter
	}

	switch raw.Type {
	case ActionClick:
		s.Params = ClickParams{X: raw.X, Y: raw.Y, UseCurrentPosition: raw.UseCurrentPosition}
	case ActionDelete:
		s.Params = DeleteParams{Method: defaultMethod(raw.Method)}
	case ActionTypeText:
		s.Params = TypeParams{Text: raw.Text, Interval: floatOr(raw.Interval, DefaultTypeInterval)}
	case ActionKeyPress:
		key := raw.Key
		if key == "" {
			key = DefaultKey
		}
		s.Params = KeyPressParams{Key: key}
	case ActionSetValue:
		s.Params = SetValueParams{
			X: raw.X, Y: raw.Y, UseCurrentPosition: raw.UseCurrentPosition,
			Value: raw.Value, Method: defaultMethod(raw.Method),
		}
	case ActionScroll:
		st := raw.ScrollType
		if st == "" {
			st = ScrollAmount
		}
		s.Params = ScrollParams{ScrollType: st, Amount: raw.Amount}
	case ActionWait:
		wt := raw.WaitType
		if wt == "" {
			wt = WaitDuration
		}
		s.Params = WaitParams{
			WaitType:      wt,
			Duration:      floatOr(raw.Duration, DefaultWaitSeconds),
			ImagePath:     raw.ImagePath,
			ImageName:     raw.ImageName,
			Timeout:       floatOr(raw.Timeout, DefaultImageTimeout),
			CheckInterval: floatOr(raw.CheckInterval, DefaultCheckInterval),
			Confidence:    floatOr(raw.Confidence, DefaultConfidence),
		}
	case ActionFindImage:
		s.Params = FindImageParams{
			ImagePath:  raw.ImagePath,
			ImageName:  raw.ImageName,
			Confidence: floatOr(raw.Confidence, DefaultConfidence),
			ClickAfter: raw.ClickAfter,
		}
	case ActionMoveMouse:
		s.Params = MoveMouseParams{Direction: raw.Direction, Distance: raw.Distance}
	default:
		return fmt.Errorf("unknown action type %q", raw.Type)
	}
	return nil
}

// MarshalJSON writes the flat editor shape back out.
func (s Step) MarshalJSON() ([]byte, error) {
	raw := stepJSON{
		Type:        s.Type,
		Description: s.Description,
	}
	enabled := s.Enabled
	raw.Enabled = &enabled
	waitAfter := s.WaitAfter
	raw.WaitAfter = &waitAfter

	switch p := s.Params.(type) {
	case ClickParams:
		raw.X, raw.Y, raw.UseCurrentPosition = p.X, p.Y, p.UseCurrentPosition
	case DeleteParams:
		raw.Method = p.Method
	case TypeParams:
		raw.Text = p.Text
		raw.Interval = &p.Interval
	case KeyPressParams:
		raw.Key = p.Key
	case SetValueParams:
		raw.X, raw.Y, raw.UseCurrentPosition = p.X, p.Y, p.UseCurrentPosition
		raw.Value, raw.Method = p.Value, p.Method
	case ScrollParams:
		raw.ScrollType, raw.Amount = p.ScrollType, p.Amount
	case WaitParams:
		raw.WaitType = p.WaitType
		raw.Duration = &p.Duration
		raw.ImagePath, raw.ImageName = p.ImagePath, p.ImageName
		raw.Timeout = &p.Timeout
		raw.CheckInterval = &p.CheckInterval
		raw.Confidence = &p.Confidence
	case FindImageParams:
		raw.ImagePath, raw.ImageName = p.ImagePath, p.ImageName
		raw.Confidence = &p.Confidence
		raw.ClickAfter = p.ClickAfter
	case MoveMouseParams:
		raw.Direction, raw.Distance = p.Direction, p.Distance
	default:
		return nil, fmt.Errorf("step %q has no params", s.Type)
	}
	return json.Marshal(raw)
}

func defaultMethod(m DeleteMethod) DeleteMethod {
	if m == "" {
		return DeleteCtrlA
	}
	return m
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
