package domain

import "time"

// Nombres de los seis rasgos del corredor.
const (
	TraitAdventurous = "adventurous"
	TraitCompetitive = "competitive"
	TraitSocial      = "social"
	TraitEndurance   = "endurance"
	TraitExplorer    = "explorer"
	TraitCasual      = "casual"
)

// TraitNames mantiene el orden canonico de los rasgos.
var TraitNames = []string{
	TraitAdventurous,
	TraitCompetitive,
	TraitSocial,
	TraitEndurance,
	TraitExplorer,
	TraitCasual,
}

const (
	TraitMin     = 0
	TraitMax     = 100
	TraitDefault = 50
)

type TraitVector struct {
	Adventurous int `json:"adventurous"` // Trail vs asfalto
	Competitive int `json:"competitive"` // PR vs experiencia
	Social      int `json:"social"`      // Grupo vs solo
	Endurance   int `json:"endurance"`   // Ultra vs velocidad
	Explorer    int `json:"explorer"`    // Viajar vs local
	Casual      int `json:"casual"`      // Diversion vs atleta serio
}

// DefaultTraitVector devuelve el vector neutro (50 en todos los rasgos).
func DefaultTraitVector() TraitVector {
	return TraitVector{
		Adventurous: TraitDefault,
		Competitive: TraitDefault,
		Social:      TraitDefault,
		Endurance:   TraitDefault,
		Explorer:    TraitDefault,
		Casual:      TraitDefault,
	}
}

// Get devuelve el valor del rasgo por nombre; ok=false si el nombre no existe.
func (v TraitVector) Get(name string) (int, bool) {
	switch name {
	case TraitAdventurous:
		return v.Adventurous, true
	case TraitCompetitive:
		return v.Competitive, true
	case TraitSocial:
		return v.Social, true
	case TraitEndurance:
		return v.Endurance, true
	case TraitExplorer:
		return v.Explorer, true
	case TraitCasual:
		return v.Casual, true
	}
	return 0, false
}

// With devuelve una copia con el rasgo actualizado. Nombres desconocidos se ignoran.
func (v TraitVector) With(name string, value int) TraitVector {
	switch name {
	case TraitAdventurous:
		v.Adventurous = value
	case TraitCompetitive:
		v.Competitive = value
	case TraitSocial:
		v.Social = value
	case TraitEndurance:
		v.Endurance = value
	case TraitExplorer:
		v.Explorer = value
	case TraitCasual:
		v.Casual = value
	}
	return v
}

// TraitDelta es un cambio parcial: solo los rasgos presentes se modifican.
type TraitDelta map[string]int

// PersonalityType es uno de los diez arquetipos. Siempre se deriva del TraitVector.
type PersonalityType string

const (
	PersonalityTrailSeeker      PersonalityType = "trail_seeker"
	PersonalityUrbanSpeedster   PersonalityType = "urban_speedster"
	PersonalityBucketLister     PersonalityType = "bucket_lister"
	PersonalityCommunityRunner  PersonalityType = "community_runner"
	PersonalityUltraCurious     PersonalityType = "ultra_curious"
	PersonalityCasualAdventurer PersonalityType = "casual_adventurer"
	PersonalityPRHunter         PersonalityType = "pr_hunter"
	PersonalityScenicExplorer   PersonalityType = "scenic_explorer"
	PersonalityFamilyRunner     PersonalityType = "family_runner"
	PersonalityNewbie           PersonalityType = "newbie"
)

// Claves del vector de afinidad por tipo de carrera.
const (
	Affinity5K          = "5k"
	Affinity10K         = "10k"
	AffinityHalf        = "half"
	AffinityMarathon    = "marathon"
	AffinityUltra       = "ultra"
	AffinityTrail       = "trail"
	AffinityRoad        = "road"
	AffinityThemed      = "themed"
	AffinityDestination = "destination"
	AffinityLocal       = "local"
)

// RaceAffinities mapea cada tipo de carrera a un puntaje 0-100.
type RaceAffinities map[string]int

// PersonalityDescription es la ficha estatica de cada arquetipo.
type PersonalityDescription struct {
	Title            string   `json:"title"`
	Icon             string   `json:"icon"`
	Description      string   `json:"description"`
	RecommendedRaces []string `json:"recommendedRaces"`
}

// RunnerPersonality agrupa el tipo derivado con sus rasgos y afinidades.
type RunnerPersonality struct {
	PrimaryType    PersonalityType        `json:"primaryType"`
	SecondaryTypes []PersonalityType      `json:"secondaryTypes"`
	Traits         TraitVector            `json:"traits"`
	RaceAffinities RaceAffinities         `json:"raceAffinities"`
	Description    PersonalityDescription `json:"description"`
}

// Trait es la fila persistida de un rasgo de un corredor.
type Trait struct {
	RunnerID  string    `json:"runner_id"`
	Trait     string    `json:"trait"`
	Value     int       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rows expande el vector en una fila por rasgo, en orden canonico.
func (v TraitVector) Rows(runnerID string, now time.Time) []Trait {
	rows := make([]Trait, 0, len(TraitNames))
	for _, name := range TraitNames {
		value, _ := v.Get(name)
		rows = append(rows, Trait{RunnerID: runnerID, Trait: name, Value: value, UpdatedAt: now})
	}
	return rows
}

// TraitVectorFromRows arma el vector desde filas persistidas. Los rasgos ausentes quedan en 50.
func TraitVectorFromRows(rows []Trait) TraitVector {
	v := DefaultTraitVector()
	for _, r := range rows {
		v = v.With(r.Trait, r.Value)
	}
	return v
}
