package roadmap

import (
	"fmt"

	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

type topic struct {
	skill       skill.Skill
	name        string
	description string
}

// stageTopics lists each stage's six topics in roadmap order. The point id
// is lp-<stage>-<position>.
var stageTopics = [skill.MaxStage][6]topic{
	// Stage 1: Foundations (A1.1)
	{
		{skill.Listening, "Pinyin & Tones", "Identify 4 tones and neutral tone."},
		{skill.Grammar, "Word Order", "Subject-Verb-Object (SVO) basics."},
		{skill.Vocabulary, "Greetings", "Survival vocabulary and self-intro."},
		{skill.Writing, "Strokes", "8 basic strokes and sequence."},
		{skill.Speaking, "Self-Introduction", "Speaking clearly about your name, age, and nationality."},
		{skill.Reading, "Basic Characters", "Recognizing numbers 1-100 and basic radicals."},
	},
	// Stage 2: Daily Language (A1.2)
	{
		{skill.Vocabulary, "School & Hobbies", "Daily life, classroom items, meals."},
		{skill.Grammar, "Measure Words", "个, 本, 张, 辆, 件 basics."},
		{skill.Speaking, "Daily Routine", "Simple descriptions of your day."},
		{skill.Reading, "Short Passages", "Reading 80-100 character paragraphs."},
		{skill.Writing, "Simple Sentences", "Constructing complete SVO sentences using common verbs."},
		{skill.Listening, "Classroom Instructions", "Understanding teacher commands in Mandarin."},
	},
	// Stage 3: Context Communication (A2)
	{
		{skill.Listening, "Short Dialogues", "Everyday scenarios: shopping, travel."},
		{skill.Speaking, "Directions", "Locations and transportation terms."},
		{skill.Grammar, "Comparatives", "Comparison with 比, 一样, 没有."},
		{skill.Writing, "Narrative", "150-character compositions about events."},
		{skill.Vocabulary, "Shopping", "Currency, price negotiation, and clothing items."},
		{skill.Reading, "Public Signs", "Understanding signs in subways, malls, and streets."},
	},
	// Stage 4: Range Expansion (B1)
	{
		{skill.Reading, "Context Clues", "Skimming for gist in articles."},
		{skill.Grammar, "Ba/Bei Structures", "Advanced object manipulation (把/被)."},
		{skill.Listening, "Main Points", "Key word extraction from longer audio."},
		{skill.Vocabulary, "Environment", "Pollution, recycling, and technology."},
		{skill.Writing, "Letter Writing", "Writing informal letters to friends about holidays."},
		{skill.Speaking, "Past Events", "Narrating a story using proper time markers."},
	},
	// Stage 5: Accuracy & Style (B1+)
	{
		{skill.Writing, "Register & Style", "Formal vs informal (Email vs Text)."},
		{skill.Grammar, "Complex Conjunctions", "尽管...但是..., 不但...而且..."},
		{skill.Speaking, "Debate", "Expressing contrasting opinions."},
		{skill.Reading, "Paraphrasing", "Recognizing reworded synonyms in text."},
		{skill.Vocabulary, "Media", "Vocabulary for news, social media, and advertising."},
		{skill.Listening, "Radio Programs", "Extracting specific details from fast-paced audio."},
	},
	// Stage 6: Mastery (B2, IGCSE readiness)
	{
		{skill.Reading, "Authentic Texts", "Full IGCSE past paper reading texts."},
		{skill.Writing, "Long Composition", "250-300 character balanced essays."},
		{skill.Listening, "Exam Strategies", "Predictive listening and inference."},
		{skill.Vocabulary, "Stylistic Variety", "Idioms and high-level connectors."},
		{skill.Speaking, "Topic Presentation", "5-minute sustained talk on a chosen topic."},
		{skill.Grammar, "Advanced Particles", "Nuanced use of 了, 着, 过 in complex contexts."},
	},
}

// Syllabus returns a fresh copy of the 36-point roadmap. Stage 1 starts
// unlocked, every later stage locked, all scores zero.
func Syllabus() []LearningPoint {
	points := make([]LearningPoint, 0, skill.MaxStage*6)
	for i, topics := range stageTopics {
		stage := i + 1
		status := StatusLocked
		if stage == skill.MinStage {
			status = StatusUnlocked
		}
		for j, t := range topics {
			points = append(points, LearningPoint{
				ID:          pointID(stage, j+1),
				Stage:       stage,
				Skill:       t.skill,
				Topic:       t.name,
				Description: t.description,
				Status:      status,
			})
		}
	}
	return points
}

func pointID(stage, n int) string {
	return fmt.Sprintf("lp-%d-%d", stage, n)
}
