package service

import (
	"errors"
	"fmt"
	"math"

	"getabib/internal/domain"
)

var (
	ErrQuizAnswerRepeated = errors.New("quiz question answered twice")
	ErrUnknownQuizOption  = errors.New("unknown quiz question or option")
)

// QuizOption es una respuesta posible con sus deltas de rasgos.
type QuizOption struct {
	Value  string            `json:"value"`
	Label  string            `json:"label"`
	Traits domain.TraitDelta `json:"traits"`
}

type QuizQuestion struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Options  []QuizOption `json:"options"`
}

// QuizAnswer es una seleccion del corredor. Traits se completa desde QuizQuestions si viene vacio.
type QuizAnswer struct {
	QuestionID  string            `json:"questionId"`
	OptionValue string            `json:"optionValue"`
	Traits      domain.TraitDelta `json:"traits,omitempty"`
}

// QuizQuestions es el cuestionario de onboarding.
var QuizQuestions = []QuizQuestion{
	{
		ID:       "terrain",
		Question: "Your ideal running surface?",
		Options: []QuizOption{
			{Value: "road", Label: "Smooth pavement", Traits: domain.TraitDelta{domain.TraitAdventurous: -10, domain.TraitCompetitive: 10}},
			{Value: "trail", Label: "Dirt trails", Traits: domain.TraitDelta{domain.TraitAdventurous: 20, domain.TraitExplorer: 15}},
			{Value: "mixed", Label: "Mix it up!", Traits: domain.TraitDelta{domain.TraitAdventurous: 10, domain.TraitExplorer: 10}},
		},
	},
	{
		ID:       "motivation",
		Question: "What gets you to the start line?",
		Options: []QuizOption{
			{Value: "pr", Label: "Chasing a PR", Traits: domain.TraitDelta{domain.TraitCompetitive: 25, domain.TraitCasual: -15}},
			{Value: "experience", Label: "The experience", Traits: domain.TraitDelta{domain.TraitSocial: 15, domain.TraitCasual: 10}},
			{Value: "challenge", Label: "The challenge", Traits: domain.TraitDelta{domain.TraitAdventurous: 15, domain.TraitEndurance: 10}},
			{Value: "social", Label: "Running with friends", Traits: domain.TraitDelta{domain.TraitSocial: 25, domain.TraitCompetitive: -10}},
		},
	},
	{
		ID:       "distance",
		Question: "Your sweet spot distance?",
		Options: []QuizOption{
			{Value: "5k", Label: "5K - Quick & fun", Traits: domain.TraitDelta{domain.TraitCasual: 10, domain.TraitEndurance: -10}},
			{Value: "10k", Label: "10K - Just right", Traits: domain.TraitDelta{domain.TraitCompetitive: 5}},
			{Value: "half", Label: "Half Marathon - The classic", Traits: domain.TraitDelta{domain.TraitEndurance: 10}},
			{Value: "marathon", Label: "Marathon - Go big", Traits: domain.TraitDelta{domain.TraitEndurance: 20, domain.TraitCompetitive: 10}},
			{Value: "ultra", Label: "Ultra - No limits", Traits: domain.TraitDelta{domain.TraitEndurance: 30, domain.TraitAdventurous: 20}},
		},
	},
	{
		ID:       "travel",
		Question: "Would you travel for an amazing race?",
		Options: []QuizOption{
			{Value: "local", Label: "Keep it local", Traits: domain.TraitDelta{domain.TraitExplorer: -15}},
			{Value: "regional", Label: "A few hours drive", Traits: domain.TraitDelta{domain.TraitExplorer: 5}},
			{Value: "destination", Label: "Absolutely! Race-cations are the best", Traits: domain.TraitDelta{domain.TraitExplorer: 25}},
		},
	},
	{
		ID:       "crowd",
		Question: "Race day crowd preference?",
		Options: []QuizOption{
			{Value: "big", Label: "Big energy, big crowds", Traits: domain.TraitDelta{domain.TraitSocial: 15, domain.TraitCompetitive: 10}},
			{Value: "small", Label: "Intimate, community feel", Traits: domain.TraitDelta{domain.TraitSocial: 5, domain.TraitCasual: 10}},
			{Value: "solo", Label: "Just me and the course", Traits: domain.TraitDelta{domain.TraitSocial: -10, domain.TraitAdventurous: 10}},
		},
	},
	{
		ID:       "priority",
		Question: "Most important race feature?",
		Options: []QuizOption{
			{Value: "scenery", Label: "Beautiful scenery", Traits: domain.TraitDelta{domain.TraitAdventurous: 10, domain.TraitExplorer: 15}},
			{Value: "organization", Label: "Well organized", Traits: domain.TraitDelta{domain.TraitCompetitive: 10}},
			{Value: "swag", Label: "Great swag & medal", Traits: domain.TraitDelta{domain.TraitCasual: 10, domain.TraitSocial: 5}},
			{Value: "course", Label: "Fast course for PRs", Traits: domain.TraitDelta{domain.TraitCompetitive: 20, domain.TraitCasual: -10}},
			{Value: "party", Label: "Post-race party", Traits: domain.TraitDelta{domain.TraitSocial: 20, domain.TraitCasual: 15}},
		},
	},
}

// FindQuizOption devuelve la opcion declarada para la pregunta.
func FindQuizOption(questionID, optionValue string) (QuizOption, bool) {
	for _, q := range QuizQuestions {
		if q.ID != questionID {
			continue
		}
		for _, o := range q.Options {
			if o.Value == optionValue {
				return o, true
			}
		}
	}
	return QuizOption{}, false
}

func clampTrait(v int) int {
	if v < domain.TraitMin {
		return domain.TraitMin
	}
	if v > domain.TraitMax {
		return domain.TraitMax
	}
	return v
}

// ApplyQuizAnswer suma cada delta al rasgo correspondiente y recorta a [0,100].
// Los rasgos ausentes del delta (o con nombre desconocido) no cambian.
func ApplyQuizAnswer(traits domain.TraitVector, delta domain.TraitDelta) domain.TraitVector {
	for _, name := range domain.TraitNames {
		change, ok := delta[name]
		if !ok {
			continue
		}
		current, _ := traits.Get(name)
		traits = traits.With(name, clampTrait(current+change))
	}
	return traits
}

// ApplyQuizAnswers aplica las respuestas en orden, una sola vez por pregunta.
func ApplyQuizAnswers(traits domain.TraitVector, answers []QuizAnswer) (domain.TraitVector, error) {
	seen := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup {
			return traits, fmt.Errorf("%w: %s", ErrQuizAnswerRepeated, a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}

		delta := a.Traits
		if len(delta) == 0 {
			opt, ok := FindQuizOption(a.QuestionID, a.OptionValue)
			if !ok {
				return traits, fmt.Errorf("%w: %s=%s", ErrUnknownQuizOption, a.QuestionID, a.OptionValue)
			}
			delta = opt.Traits
		}
		traits = ApplyQuizAnswer(traits, delta)
	}
	return traits, nil
}

type personalityRule struct {
	matches func(t domain.TraitVector) bool
	result  domain.PersonalityType
}

// personalityRules se evalua en orden; la primera regla que matchea gana.
var personalityRules = []personalityRule{
	{func(t domain.TraitVector) bool { return t.Adventurous > 70 && t.Endurance > 60 }, domain.PersonalityTrailSeeker},
	{func(t domain.TraitVector) bool { return t.Competitive > 70 && t.Adventurous < 40 }, domain.PersonalityPRHunter},
	{func(t domain.TraitVector) bool { return t.Explorer > 70 }, domain.PersonalityBucketLister},
	{func(t domain.TraitVector) bool { return t.Social > 70 && t.Casual > 50 }, domain.PersonalityCommunityRunner},
	{func(t domain.TraitVector) bool { return t.Endurance > 80 }, domain.PersonalityUltraCurious},
	{func(t domain.TraitVector) bool { return t.Casual > 70 && t.Social > 50 }, domain.PersonalityCasualAdventurer},
	{func(t domain.TraitVector) bool { return t.Adventurous > 60 && t.Explorer > 50 }, domain.PersonalityScenicExplorer},
	{func(t domain.TraitVector) bool { return t.Competitive > 60 && t.Adventurous < 50 }, domain.PersonalityUrbanSpeedster},
	{func(t domain.TraitVector) bool { return t.Casual > 60 && t.Social > 40 }, domain.PersonalityFamilyRunner},
}

// CalculatePersonalityType es total: si ninguna regla aplica devuelve newbie.
func CalculatePersonalityType(traits domain.TraitVector) domain.PersonalityType {
	for _, rule := range personalityRules {
		if rule.matches(traits) {
			return rule.result
		}
	}
	return domain.PersonalityNewbie
}

func affinity(v float64) int {
	return clampTrait(int(math.Round(v)))
}

// CalculateRaceAffinities aplica las combinaciones lineales fijas por tipo de carrera.
func CalculateRaceAffinities(traits domain.TraitVector) domain.RaceAffinities {
	adv := float64(traits.Adventurous)
	comp := float64(traits.Competitive)
	soc := float64(traits.Social)
	end := float64(traits.Endurance)
	exp := float64(traits.Explorer)
	cas := float64(traits.Casual)

	return domain.RaceAffinities{
		domain.Affinity5K:          affinity(50 + cas*0.3 - end*0.2),
		domain.Affinity10K:         affinity(50 + comp*0.2),
		domain.AffinityHalf:        affinity(50 + end*0.2 + comp*0.1),
		domain.AffinityMarathon:    affinity(50 + end*0.3 + comp*0.2),
		domain.AffinityUltra:       affinity(30 + end*0.4 + adv*0.3),
		domain.AffinityTrail:       affinity(30 + adv*0.5 + exp*0.2),
		domain.AffinityRoad:        affinity(50 + comp*0.3 - adv*0.1),
		domain.AffinityThemed:      affinity(40 + cas*0.4 + soc*0.2),
		domain.AffinityDestination: affinity(30 + exp*0.5 + adv*0.2),
		domain.AffinityLocal:       affinity(50 + soc*0.3 - exp*0.2),
	}
}

var personalityDescriptions = map[domain.PersonalityType]domain.PersonalityDescription{
	domain.PersonalityTrailSeeker: {
		Title:            "Trail Seeker",
		Icon:             "evergreen_tree",
		Description:      "You crave dirt under your feet and views that make the climb worth it. Technical terrain? Bring it on.",
		RecommendedRaces: []string{"Ultra marathons", "Trail races", "Mountain runs", "Adventure races"},
	},
	domain.PersonalityUrbanSpeedster: {
		Title:            "Urban Speedster",
		Icon:             "cityscape",
		Description:      "Fast courses, city vibes, and convenient logistics. You know every PR-friendly race in town.",
		RecommendedRaces: []string{"City marathons", "Fast 5Ks", "Downtown 10Ks", "Turkey trots"},
	},
	domain.PersonalityBucketLister: {
		Title:            "Bucket Lister",
		Icon:             "airplane",
		Description:      "Running is your passport. You're collecting bibs from iconic races around the world.",
		RecommendedRaces: []string{"World Marathon Majors", "Iconic destination races", "International events"},
	},
	domain.PersonalityCommunityRunner: {
		Title:            "Community Runner",
		Icon:             "handshake",
		Description:      "It's about the people, not the pace. You love local races and the running community.",
		RecommendedRaces: []string{"Local 5Ks", "Charity runs", "Park runs", "Community events"},
	},
	domain.PersonalityUltraCurious: {
		Title:            "Ultra Curious",
		Icon:             "lion",
		Description:      "Distance is just a number, and you want to see how far you can go. 50K? 100 miles? Let's find out.",
		RecommendedRaces: []string{"50Ks", "100-milers", "Multi-day events", "Endurance challenges"},
	},
	domain.PersonalityCasualAdventurer: {
		Title:            "Casual Adventurer",
		Icon:             "balloon",
		Description:      "Running should be fun! You're here for color runs, costume races, and good vibes.",
		RecommendedRaces: []string{"Color runs", "Themed races", "Fun runs", "Obstacle courses"},
	},
	domain.PersonalityPRHunter: {
		Title:            "PR Hunter",
		Icon:             "stopwatch",
		Description:      "Every race is a chance to beat your best. Flat, fast, and net downhill? Yes please.",
		RecommendedRaces: []string{"BQ-qualifying marathons", "Fast half marathons", "Downhill courses"},
	},
	domain.PersonalityScenicExplorer: {
		Title:            "Scenic Explorer",
		Icon:             "national_park",
		Description:      "Who cares about the clock when the views are this good? You run for the experience.",
		RecommendedRaces: []string{"Coastal runs", "National park races", "Wine country races", "Island races"},
	},
	domain.PersonalityFamilyRunner: {
		Title:            "Family Runner",
		Icon:             "family",
		Description:      "Running is a family affair. You look for races everyone can enjoy together.",
		RecommendedRaces: []string{"Family-friendly 5Ks", "Kids runs", "Stroller-friendly races", "Holiday fun runs"},
	},
	domain.PersonalityNewbie: {
		Title:            "Rising Runner",
		Icon:             "seedling",
		Description:      "Every expert was once a beginner. You're just getting started on an amazing journey!",
		RecommendedRaces: []string{"Couch to 5K races", "Beginner-friendly events", "Supportive community runs"},
	},
}

// PersonalityDescriptionFor devuelve la ficha del arquetipo; tipos desconocidos usan la de newbie.
func PersonalityDescriptionFor(t domain.PersonalityType) domain.PersonalityDescription {
	if d, ok := personalityDescriptions[t]; ok {
		return d
	}
	return personalityDescriptions[domain.PersonalityNewbie]
}

// BuildPersonality deriva tipo, afinidades y descripcion desde el vector actual.
func BuildPersonality(traits domain.TraitVector) domain.RunnerPersonality {
	primary := CalculatePersonalityType(traits)
	return domain.RunnerPersonality{
		PrimaryType:    primary,
		SecondaryTypes: []domain.PersonalityType{},
		Traits:         traits,
		RaceAffinities: CalculateRaceAffinities(traits),
		Description:    PersonalityDescriptionFor(primary),
	}
}
