package model

import (
	"errors"
	"fmt"
)

// Level is a single ordinal preference value. Valid levels are 1, 2 and 3.
type Level int

const (
	LevelLow    Level = 1
	LevelMedium Level = 2
	LevelHigh   Level = 3
)

// Valid reports whether l is one of the three declared levels.
func (l Level) Valid() bool {
	return l >= LevelLow && l <= LevelHigh
}

// Axis identifies one of the five preference sliders.
type Axis int

const (
	AxisEffort Axis = iota
	AxisSkill
	AxisCalorie
	AxisProtein
	AxisSpice
)

// Axes lists every preference axis in display order.
var Axes = []Axis{AxisEffort, AxisSkill, AxisCalorie, AxisProtein, AxisSpice}

// String returns the wire name of the axis.
func (a Axis) String() string {
	switch a {
	case AxisEffort:
		return "effort_level"
	case AxisSkill:
		return "skill_level"
	case AxisCalorie:
		return "calorie_consciousness"
	case AxisProtein:
		return "protein_preference"
	case AxisSpice:
		return "spice_level"
	default:
		return "unknown"
	}
}

var ErrLevelOutOfRange = errors.New("preference level out of range")

var displayLabels = map[Axis][3]string{
	AxisEffort:  {"Quick & Easy", "Moderate", "Intricate"},
	AxisSkill:   {"Beginner", "Intermediate", "Advanced"},
	AxisCalorie: {"Low-Calorie", "Moderate", "High-Calorie"},
	AxisProtein: {"Low-Protein", "Moderate", "High-Protein"},
	AxisSpice:   {"Not Spicy", "Mild", "Hot"},
}

var promptLabels = map[Axis][3]string{
	AxisEffort:  {"quick & easy", "moderate effort", "intricate dish"},
	AxisSkill:   {"beginner-friendly", "intermediate", "advanced"},
	AxisCalorie: {"low-calorie", "moderate calories", "high-calorie"},
	AxisProtein: {"low-protein", "moderate protein", "high-protein"},
	AxisSpice:   {"not spicy", "mildly spicy", "very spicy"},
}

// UserPreferences steers recipe generation along five independent axes.
type UserPreferences struct {
	EffortLevel          Level `json:"effort_level"`
	SkillLevel           Level `json:"skill_level"`
	CalorieConsciousness Level `json:"calorie_consciousness"`
	ProteinPreference    Level `json:"protein_preference"`
	SpiceLevel           Level `json:"spice_level"`
}

// DefaultPreferences returns the middle level on every axis.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		EffortLevel:          LevelMedium,
		SkillLevel:           LevelMedium,
		CalorieConsciousness: LevelMedium,
		ProteinPreference:    LevelMedium,
		SpiceLevel:           LevelMedium,
	}
}

// Get returns the level for an axis.
func (p UserPreferences) Get(axis Axis) Level {
	switch axis {
	case AxisEffort:
		return p.EffortLevel
	case AxisSkill:
		return p.SkillLevel
	case AxisCalorie:
		return p.CalorieConsciousness
	case AxisProtein:
		return p.ProteinPreference
	case AxisSpice:
		return p.SpiceLevel
	default:
		panic(fmt.Sprintf("model: unknown preference axis %d", axis))
	}
}

// With returns a copy of p with the given axis set to level.
func (p UserPreferences) With(axis Axis, level Level) UserPreferences {
	switch axis {
	case AxisEffort:
		p.EffortLevel = level
	case AxisSkill:
		p.SkillLevel = level
	case AxisCalorie:
		p.CalorieConsciousness = level
	case AxisProtein:
		p.ProteinPreference = level
	case AxisSpice:
		p.SpiceLevel = level
	default:
		panic(fmt.Sprintf("model: unknown preference axis %d", axis))
	}
	return p
}

// Validate returns ErrLevelOutOfRange naming the first axis outside 1..3.
func (p UserPreferences) Validate() error {
	for _, axis := range Axes {
		if !p.Get(axis).Valid() {
			return fmt.Errorf("%w: %s=%d", ErrLevelOutOfRange, axis, p.Get(axis))
		}
	}
	return nil
}

// DisplayText returns the short label for the axis value. Calling it with an
// out-of-range level is a programming error and panics.
func (p UserPreferences) DisplayText(axis Axis) string {
	return label(displayLabels, axis, p.Get(axis))
}

// PromptText renders the preferences as the multi-line description handed to
// the recipe generator.
func (p UserPreferences) PromptText() string {
	return fmt.Sprintf("Effort: %s\nSkill: %s\nCalories: %s\nProtein: %s\nSpice: %s",
		label(promptLabels, AxisEffort, p.EffortLevel),
		label(promptLabels, AxisSkill, p.SkillLevel),
		label(promptLabels, AxisCalorie, p.CalorieConsciousness),
		label(promptLabels, AxisProtein, p.ProteinPreference),
		label(promptLabels, AxisSpice, p.SpiceLevel),
	)
}

func label(table map[Axis][3]string, axis Axis, level Level) string {
	if !level.Valid() {
		panic(fmt.Sprintf("model: %s level %d outside 1..3", axis, level))
	}
	return table[axis][level-1]
}
