package credit

import "strings"

// Tokenizer turns a sentence into the surviving words the distributor will
// classify. A deliberate simplification (spec §4.3, §9): lowercase, strip
// `.` and `,`, split on whitespace, drop the language's basic-word set. A
// production system plugs a morphological analyzer behind this interface.
type Tokenizer interface {
	Tokenize(sentence string, table LanguageTable) []WordInfo
}

// BasicTokenizer is the reference Tokenizer implementation described by the
// spec: no stemming, no morphology, just case-folding, punctuation-stripping
// and a basic-word filter.
type BasicTokenizer struct{}

func (BasicTokenizer) Tokenize(sentence string, table LanguageTable) []WordInfo {
	lowered := strings.ToLower(sentence)
	replacer := strings.NewReplacer(".", "", ",", "")
	lowered = replacer.Replace(lowered)

	var out []WordInfo
	for _, word := range strings.Fields(lowered) {
		if table.BasicWords[word] {
			continue
		}
		rank, hasRank := table.FrequencyRanks[word]
		out = append(out, WordInfo{
			Word:             word,
			FrequencyRank:    rank,
			HasFrequencyRank: hasRank,
		})
	}
	return out
}
