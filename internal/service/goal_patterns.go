package service

import (
	"github.com/dlclark/regexp2"

	"getabib/internal/domain"
)

// GoalPattern es una regla declarativa: si cualquier matcher encuentra el texto, se emite Tag.
// Key es la clave que se guarda en preferredDistances / preferredTerrain / coursePreferences.
type GoalPattern struct {
	Key      string
	Matchers []*regexp2.Regexp
	Tag      domain.GoalTag
}

// Matches indica si algun matcher aparece en el texto.
func (p GoalPattern) Matches(text string) bool {
	for _, m := range p.Matchers {
		ok, err := m.MatchString(text)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// targetTimeTagPrefix marca los tags de tiempo que fijan targetTime.
const targetTimeTagPrefix = "sub-"

func patterns(exprs ...string) []*regexp2.Regexp {
	out := make([]*regexp2.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp2.MustCompile(e, regexp2.IgnoreCase|regexp2.ECMAScript))
	}
	return out
}

// GoalPatterns es la tabla fija de reglas. El orden es significativo: define el orden de
// los tags y el desempate de targetTime (la ultima regla de tiempo que matchea gana).
var GoalPatterns = []GoalPattern{
	// Boston Qualifier
	{
		Key: "bq",
		Matchers: patterns(
			`\b(bq|boston qualif|qualify for boston|boston marathon|boston goal)\b`,
			`\bqualify\b.*\b(boston|baa)\b`,
		),
		Tag: domain.GoalTag{ID: "bq", Label: "BQ Goal", Category: domain.GoalCategorySpecial, Icon: "star", Color: "#F59E0B"},
	},

	// Primeras carreras
	{
		Key: "firstMarathon",
		Matchers: patterns(
			`\b(first|1st)\s*(full\s*)?marathon\b`,
			`\bnever\s*(run|done|completed)\s*a?\s*marathon\b`,
		),
		Tag: domain.GoalTag{ID: "first-marathon", Label: "First Marathon", Category: domain.GoalCategorySpecial, Icon: "ribbon", Color: "#8B5CF6"},
	},
	{
		Key: "firstHalf",
		Matchers: patterns(
			`\b(first|1st)\s*half\s*marathon\b`,
			`\bnever\s*(run|done|completed)\s*a?\s*half\b`,
		),
		Tag: domain.GoalTag{ID: "first-half", Label: "First Half Marathon", Category: domain.GoalCategorySpecial, Icon: "ribbon", Color: "#8B5CF6"},
	},
	{
		Key: "firstRace",
		Matchers: patterns(
			`\b(first|1st)\s*(ever\s*)?(race|5k|10k|run)\b`,
			`\bbeginner\b`,
			`\bnew\s*(to\s*)?running\b`,
			`\bjust\s*start(ed|ing)\b`,
		),
		Tag: domain.GoalTag{ID: "first-race", Label: "First Race", Category: domain.GoalCategoryExperience, Icon: "heart", Color: "#EC4899"},
	},

	// PR / velocidad
	{
		Key: "pr",
		Matchers: patterns(
			`\b(pr|personal record|personal best|pb|new record)\b`,
			`\bfaster\b`,
			`\bimprove\s*(my\s*)?(time|pace)\b`,
			`\bspeed\b`,
		),
		Tag: domain.GoalTag{ID: "pr-goal", Label: "PR Attempt", Category: domain.GoalCategoryTime, Icon: "timer", Color: "#EF4444"},
	},

	// Objetivos de tiempo
	{
		Key: "subThree",
		Matchers: patterns(
			`\bsub[\s-]?3(:00)?\s*(hour|hr|marathon)?\b`,
			`\bunder\s*3\s*(hour|hr)\b`,
			`\b(break|beat)\s*3\s*(hour|hr)\b`,
		),
		Tag: domain.GoalTag{ID: "sub-3", Label: "Sub-3:00 Marathon", Category: domain.GoalCategoryTime, Icon: "flash", Color: "#EF4444"},
	},
	{
		Key: "subThreeThirty",
		Matchers: patterns(
			`\bsub[\s-]?3:30\b`,
			`\bunder\s*3[\s:]30\b`,
			`\b(break|beat)\s*3[\s:]30\b`,
		),
		Tag: domain.GoalTag{ID: "sub-330", Label: "Sub-3:30 Marathon", Category: domain.GoalCategoryTime, Icon: "flash", Color: "#F97316"},
	},
	{
		Key: "subFour",
		Matchers: patterns(
			`\bsub[\s-]?4(:00)?\s*(hour|hr|marathon)?\b`,
			`\bunder\s*4\s*(hour|hr)\b`,
			`\b(break|beat)\s*4\s*(hour|hr)\b`,
		),
		Tag: domain.GoalTag{ID: "sub-4", Label: "Sub-4:00 Marathon", Category: domain.GoalCategoryTime, Icon: "flash", Color: "#F59E0B"},
	},
	{
		Key: "subTwo",
		Matchers: patterns(
			`\bsub[\s-]?2(:00)?\s*(hour|hr)?\s*(half)?\b`,
			`\bunder\s*2\s*(hour|hr)?\s*(half)?\b`,
		),
		Tag: domain.GoalTag{ID: "sub-2-half", Label: "Sub-2:00 Half", Category: domain.GoalCategoryTime, Icon: "flash", Color: "#F97316"},
	},

	// Distancias
	{
		Key: "marathon",
		Matchers: patterns(
			`\bmarathon\b`,
			`\b26\.2\b`,
			`\bfull\s*marathon\b`,
		),
		Tag: domain.GoalTag{ID: "pref-marathon", Label: "Marathon", Category: domain.GoalCategoryDistance, Icon: "trophy", Color: "#00C9A7"},
	},
	{
		Key: "halfMarathon",
		Matchers: patterns(
			`\bhalf\s*marathon\b`,
			`\b13\.1\b`,
			`\bhalf\b(?!.*time)`,
		),
		Tag: domain.GoalTag{ID: "pref-half", Label: "Half Marathon", Category: domain.GoalCategoryDistance, Icon: "medal", Color: "#00C9A7"},
	},
	{
		Key: "ultra",
		Matchers: patterns(
			`\bultra\b`,
			`\b50k\b`,
			`\b50\s*mile\b`,
			`\b100k\b`,
			`\b100\s*mile\b`,
			`\bendurance\b`,
		),
		Tag: domain.GoalTag{ID: "pref-ultra", Label: "Ultra Running", Category: domain.GoalCategoryDistance, Icon: "flame", Color: "#DC2626"},
	},
	{
		Key:      "fiveK",
		Matchers: patterns(`\b5k\b`, `\bfive\s*k\b`),
		Tag:      domain.GoalTag{ID: "pref-5k", Label: "5K", Category: domain.GoalCategoryDistance, Icon: "walk", Color: "#00C9A7"},
	},
	{
		Key:      "tenK",
		Matchers: patterns(`\b10k\b`, `\bten\s*k\b`),
		Tag:      domain.GoalTag{ID: "pref-10k", Label: "10K", Category: domain.GoalCategoryDistance, Icon: "fitness", Color: "#00C9A7"},
	},

	// Terreno
	{
		Key: "trail",
		Matchers: patterns(
			`\btrail\b`,
			`\bmountain\b`,
			`\boff[\s-]?road\b`,
			`\bsingle[\s-]?track\b`,
			`\bwild(erness)?\b`,
		),
		Tag: domain.GoalTag{ID: "pref-trail", Label: "Trail Running", Category: domain.GoalCategoryTerrain, Icon: "leaf", Color: "#16A34A"},
	},
	{
		Key: "road",
		Matchers: patterns(
			`\broad\s*(race|running)\b`,
			`\bcity\s*run\b`,
			`\bpavement\b`,
		),
		Tag: domain.GoalTag{ID: "pref-road", Label: "Road Racing", Category: domain.GoalCategoryTerrain, Icon: "car", Color: "#6366F1"},
	},

	// Recorrido
	{
		Key: "hilly",
		Matchers: patterns(
			`\bhilly?\b`,
			`\belev(ation)?\b`,
			`\bclimb(ing)?\b`,
			`\bascent\b`,
			`\bmountain(ous)?\b`,
		),
		Tag: domain.GoalTag{ID: "pref-hilly", Label: "Hilly Courses", Category: domain.GoalCategoryCourse, Icon: "trending-up", Color: "#D97706"},
	},
	{
		Key: "flat",
		Matchers: patterns(
			`\bflat\b`,
			`\bfast\s*(course|race)?\b`,
			`\bno\s*hills?\b`,
		),
		Tag: domain.GoalTag{ID: "pref-flat", Label: "Flat & Fast", Category: domain.GoalCategoryCourse, Icon: "arrow-forward", Color: "#0EA5E9"},
	},
	{
		Key: "scenic",
		Matchers: patterns(
			`\bscenic\b`,
			`\bbeautiful\b`,
			`\bview(s)?\b`,
			`\bnature\b`,
			`\bocean\b`,
			`\bbeach\b`,
			`\bcoast(al)?\b`,
			`\blake\b`,
		),
		Tag: domain.GoalTag{ID: "pref-scenic", Label: "Scenic Routes", Category: domain.GoalCategoryCourse, Icon: "image", Color: "#14B8A6"},
	},

	// Metas especiales
	{
		Key: "streak",
		Matchers: patterns(
			`\bstreak\b`,
			`\b(run\s*)?every\s*(month|week)\b`,
			`\bmultiple\s*races\b`,
			`\brace\s*series\b`,
		),
		Tag: domain.GoalTag{ID: "streak", Label: "Race Streak", Category: domain.GoalCategorySpecial, Icon: "calendar", Color: "#8B5CF6"},
	},
	{
		Key: "charity",
		Matchers: patterns(
			`\bcharity\b`,
			`\bfundrais(e|ing)\b`,
			`\bcause\b`,
		),
		Tag: domain.GoalTag{ID: "charity", Label: "Charity Runs", Category: domain.GoalCategorySpecial, Icon: "heart", Color: "#EC4899"},
	},
	{
		Key: "bucketList",
		Matchers: patterns(
			`\bbucket\s*list\b`,
			`\bdream\s*race\b`,
			`\bonce\s*in\s*a\s*lifetime\b`,
			`\biconic\b`,
			`\bmajor(s)?\b`,
			`\bworld\s*marathon\b`,
		),
		Tag: domain.GoalTag{ID: "bucket-list", Label: "Bucket List Races", Category: domain.GoalCategorySpecial, Icon: "globe", Color: "#6366F1"},
	},
}

// GoalTagByID busca el tag declarado en la tabla. Se usa para confirmar tags manualmente.
func GoalTagByID(id string) (domain.GoalTag, bool) {
	for _, p := range GoalPatterns {
		if p.Tag.ID == id {
			return p.Tag, true
		}
	}
	return domain.GoalTag{}, false
}
