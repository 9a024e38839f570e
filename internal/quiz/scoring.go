package quiz

// Answers maps question ids to responses on the 1..5 scale.
type Answers map[int]int

// RawScore is the weighted offset total per dimension.
type RawScore map[Dimension]int

// NormalizedScore is the raw score rescaled to [0,10].
type NormalizedScore map[Dimension]float64

// Result is the outcome of scoring one set of answers.
type Result struct {
	Type   TypeKey
	Raw    RawScore
	Scores NormalizedScore
}

func clamp[T int | float64](v, lo, hi T) T {
	return max(lo, min(hi, v))
}

// Score maps answers to a type and per-dimension scores. Missing answers
// contribute nothing and out-of-range responses are clamped, so any input
// is accepted.
func Score(bank *Bank, answers Answers) Result {
	raw := make(RawScore, len(Dimensions))
	for _, d := range Dimensions {
		raw[d] = 0
	}

	for _, q := range bank.questions {
		resp, ok := answers[q.ID]
		if !ok {
			continue
		}
		offset := clamp(resp, MinResponse, MaxResponse) - MinResponse
		for d := range q.Weights {
			raw[d] += offset * q.weight(d)
		}
	}

	scores := normalize(bank, raw)
	return Result{
		Type:   classify(scores),
		Raw:    raw,
		Scores: scores,
	}
}

func normalize(bank *Bank, raw RawScore) NormalizedScore {
	out := make(NormalizedScore, len(Dimensions))
	for _, d := range Dimensions {
		out[d] = clamp(float64(raw[d])/float64(bank.DimMax(d))*10, 0, 10)
	}
	return out
}

func classify(s NormalizedScore) TypeKey {
	var key TypeKey
	for i, pair := range axisPairs {
		if s[pair[0]] < s[pair[1]] {
			key |= 1 << (len(axisPairs) - 1 - i)
		}
	}
	return key
}
