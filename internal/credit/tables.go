package credit

// WordInfo is one surviving token after tokenization, with an optional
// frequency rank (spec §9: "the tokenizer returns [(word, optional
// frequency_rank)]").
type WordInfo struct {
	Word             string
	FrequencyRank    int
	HasFrequencyRank bool
}

// LanguageTable holds the language-specific word sets the distributor
// consults. These are data, not code (spec §9) — deployments swap tables per
// language without touching the classification logic.
type LanguageTable struct {
	// BasicWords are filtered out entirely during tokenization (e.g.
	// articles with no independent credit value).
	BasicWords map[string]bool
	// StructuralWords are pronouns, conjunctions, and deictics: always
	// classified STRUCTURAL regardless of learner CEFR.
	StructuralWords map[string]bool
	// FrequencyRanks optionally supplies a word's corpus-frequency rank,
	// used by the B2+ structural-word-by-frequency rule.
	FrequencyRanks map[string]int
}

// Tables is a language code to LanguageTable lookup.
type Tables map[string]LanguageTable

// DefaultTables returns a small reference set of language tables covering
// the languages exercised by this repo's worked examples and tests. A real
// deployment supplies richer tables (spec §9 calls these "language-specific
// tables, not code").
func DefaultTables() Tables {
	return Tables{
		"ru": {
			BasicWords: map[string]bool{},
			StructuralWords: map[string]bool{
				"я": true, "ты": true, "он": true, "она": true, "оно": true,
				"мы": true, "вы": true, "они": true,
				"мой": true, "моя": true, "моё": true, "мои": true,
				"твой": true, "твоя": true, "твоё": true,
				"этот": true, "эта": true, "это": true, "эти": true,
				"тот": true, "та": true, "то": true, "те": true,
				"и": true, "а": true, "но": true, "или": true, "что": true,
			},
			FrequencyRanks: map[string]int{},
		},
		"en": {
			BasicWords: map[string]bool{
				"a": true, "an": true, "the": true,
			},
			StructuralWords: map[string]bool{
				"i": true, "you": true, "he": true, "she": true, "it": true,
				"we": true, "they": true,
				"my": true, "your": true, "his": true, "her": true, "its": true,
				"our": true, "their": true,
				"this": true, "that": true, "these": true, "those": true,
				"and": true, "but": true, "or": true,
			},
			FrequencyRanks: map[string]int{},
		},
	}
}
