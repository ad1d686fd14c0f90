package domain

import (
	"slices"
	"time"
)

// GoalCategory agrupa los tags detectados por la tabla de patrones.
type GoalCategory string

const (
	GoalCategoryDistance   GoalCategory = "distance"
	GoalCategoryTime       GoalCategory = "time"
	GoalCategoryTerrain    GoalCategory = "terrain"
	GoalCategoryCourse     GoalCategory = "course"
	GoalCategoryExperience GoalCategory = "experience"
	GoalCategorySpecial    GoalCategory = "special"
)

// ExperienceLevel es el nivel inferido a partir de los tags. Vacio equivale a null.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

type GoalTag struct {
	ID       string       `json:"id"`
	Label    string       `json:"label"`
	Category GoalCategory `json:"category"`
	Icon     string       `json:"icon"`
	Color    string       `json:"color"`
}

// ParsedGoals es el resultado de analizar texto libre. Se recalcula completo en cada analisis.
type ParsedGoals struct {
	Tags               []GoalTag        `json:"tags"`
	PreferredDistances []string         `json:"preferredDistances"`
	PreferredTerrain   []string         `json:"preferredTerrain"`
	TargetTime         *string          `json:"targetTime,omitempty"`
	ExperienceLevel    *ExperienceLevel `json:"experienceLevel"`
	CoursePreferences  []string         `json:"coursePreferences"`
	SpecialGoals       []string         `json:"specialGoals"`
}

// EmptyParsedGoals devuelve un resultado sin tags con todas las listas vacias (no nil).
func EmptyParsedGoals() ParsedGoals {
	return ParsedGoals{
		Tags:               []GoalTag{},
		PreferredDistances: []string{},
		PreferredTerrain:   []string{},
		CoursePreferences:  []string{},
		SpecialGoals:       []string{},
	}
}

// HasTag indica si el tag con ese id fue detectado.
func (p ParsedGoals) HasTag(id string) bool {
	for _, t := range p.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// HasSpecialGoal indica si specialGoals contiene el id.
func (p ParsedGoals) HasSpecialGoal(id string) bool {
	return slices.Contains(p.SpecialGoals, id)
}

// HasCoursePreference indica si coursePreferences contiene la clave.
func (p ParsedGoals) HasCoursePreference(key string) bool {
	return slices.Contains(p.CoursePreferences, key)
}

// GoalsState es el estado persistido de metas de un corredor.
// Invariante: ningun id de DismissedTagIDs aparece en ConfirmedTags.
type GoalsState struct {
	RawText         string      `json:"rawText"`
	ParsedGoals     ParsedGoals `json:"parsedGoals"`
	ConfirmedTags   []GoalTag   `json:"confirmedTags"`
	DismissedTagIDs []string    `json:"dismissedTagIds"`
	UpdatedAt       *time.Time  `json:"updatedAt"`
}

// EmptyGoalsState es el estado inicial (primer arranque o luego de un reset).
func EmptyGoalsState() GoalsState {
	return GoalsState{
		ParsedGoals:     EmptyParsedGoals(),
		ConfirmedTags:   []GoalTag{},
		DismissedTagIDs: []string{},
	}
}

// HasGoals es verdadero cuando el corredor confirmo al menos un tag.
func (s GoalsState) HasGoals() bool {
	return len(s.ConfirmedTags) > 0
}
