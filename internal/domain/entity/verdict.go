package entity

// Verdict is the sentiment classification derived from an aggregate score.
type Verdict string

const (
	VerdictBullish Verdict = "Bullish"
	VerdictBearish Verdict = "Bearish"
	VerdictNeutral Verdict = "Neutral"
)

// VerdictFromScore classifies by sign: >0 Bullish, <0 Bearish, 0 Neutral.
func VerdictFromScore(score int) Verdict {
	switch {
	case score > 0:
		return VerdictBullish
	case score < 0:
		return VerdictBearish
	default:
		return VerdictNeutral
	}
}

// Summary folds a set of scored articles for one symbol into a single verdict.
type Summary struct {
	Verdict      Verdict
	TotalScore   int
	ArticleCount int
}
