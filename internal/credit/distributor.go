package credit

import (
	"strings"

	"github.com/heartmarshall/myenglish-backend/internal/domain"
)

// CreditEntry directs the Scheduler to apply one (possibly adjusted) rating
// to one word's memory state.
type CreditEntry struct {
	Word           string
	CreditType     domain.CreditType
	Multiplier     float64
	AdjustedRating domain.ReviewGrade
}

var baseMultiplier = map[domain.CreditType]float64{
	domain.CreditPrimary:    1.0,
	domain.CreditSupporting: 0.6,
	domain.CreditStructural: 0.2,
	domain.CreditIgnored:    0,
}

// Distribute classifies every surviving word of sentence relative to target,
// applies the rating-conditioned multiplier adjustment, and returns the
// credit entries the Scheduler should apply. Returns
// domain.ErrMissingPrimaryCredit if target does not survive tokenization —
// the distributor's one invariant (spec §4.3).
func Distribute(tables Tables, tokenizer Tokenizer, language, sentence, target string, rating domain.ReviewGrade, cefr domain.CEFR) ([]CreditEntry, error) {
	table := tables[language]
	words := tokenizer.Tokenize(sentence, table)
	target = strings.ToLower(target)

	entries := make([]CreditEntry, 0, len(words))
	sawPrimary := false

	for _, w := range words {
		creditType := classify(w, target, cefr, table)
		mult := adjustedMultiplier(creditType, rating)
		if mult <= 0 {
			continue
		}
		entries = append(entries, CreditEntry{
			Word:           w.Word,
			CreditType:     creditType,
			Multiplier:     mult,
			AdjustedRating: adjustedRating(creditType, rating),
		})
		if creditType == domain.CreditPrimary {
			sawPrimary = true
		}
	}

	if !sawPrimary {
		return nil, domain.ErrMissingPrimaryCredit
	}
	return entries, nil
}

func classify(w WordInfo, target string, cefr domain.CEFR, table LanguageTable) domain.CreditType {
	if w.Word == target {
		return domain.CreditPrimary
	}
	if table.StructuralWords[w.Word] {
		return domain.CreditStructural
	}
	if cefr.Theta() >= domain.B2.Theta() && w.HasFrequencyRank && w.FrequencyRank <= 100 {
		return domain.CreditStructural
	}
	return domain.CreditSupporting
}

func adjustedMultiplier(creditType domain.CreditType, rating domain.ReviewGrade) float64 {
	mult := baseMultiplier[creditType]

	switch rating {
	case domain.ReviewGradeAgain:
		switch creditType {
		case domain.CreditStructural:
			mult = 0
		case domain.CreditSupporting:
			mult *= 0.3
		}
	case domain.ReviewGradeEasy:
		if creditType == domain.CreditSupporting {
			mult *= 1.2
		}
	}

	if mult < 0 {
		mult = 0
	}
	if mult > 1 {
		mult = 1
	}
	return mult
}

// adjustedRating downgrades an EASY rating to GOOD for every non-primary
// credit (spec §4.3: "an EASY on the primary becomes GOOD on supporting
// words" — read here as every word the primary shares credit with, whether
// classified SUPPORTING or STRUCTURAL).
func adjustedRating(creditType domain.CreditType, rating domain.ReviewGrade) domain.ReviewGrade {
	if creditType == domain.CreditPrimary {
		return rating
	}
	if rating == domain.ReviewGradeEasy {
		return domain.ReviewGradeGood
	}
	return rating
}
