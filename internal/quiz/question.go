package quiz

// Dimension is one of the six personality axes.
type Dimension string

const (
	DimE Dimension = "E"
	DimI Dimension = "I"
	DimL Dimension = "L"
	DimF Dimension = "F"
	DimA Dimension = "A"
	DimC Dimension = "C"
)

// Dimensions lists every dimension in display order.
var Dimensions = [...]Dimension{DimE, DimI, DimL, DimF, DimA, DimC}

// axisPairs holds the three oppositions; the first member wins ties.
var axisPairs = [3][2]Dimension{
	{DimE, DimI},
	{DimL, DimF},
	{DimA, DimC},
}

const (
	MinResponse = 1
	MaxResponse = 5

	maxOffset = MaxResponse - MinResponse
)

// Question is a single Likert-scale statement and the dimensions it feeds.
type Question struct {
	ID      int
	Text    string
	Weights map[Dimension]int
}

// weight returns the multiplier for d. Referenced dimensions without an
// explicit weight count as 1.
func (q Question) weight(d Dimension) int {
	w, ok := q.Weights[d]
	if !ok {
		return 0
	}
	if w <= 0 {
		return 1
	}
	return w
}

// Bank is an immutable, ordered question set.
type Bank struct {
	questions []Question
	dimMax    map[Dimension]int
}

// NewBank builds a bank from questions and precomputes the per-dimension
// maximum raw score.
func NewBank(questions []Question) *Bank {
	qs := make([]Question, len(questions))
	for i, q := range questions {
		weights := make(map[Dimension]int, len(q.Weights))
		for d, w := range q.Weights {
			weights[d] = w
		}
		qs[i] = Question{ID: q.ID, Text: q.Text, Weights: weights}
	}

	dimMax := make(map[Dimension]int, len(Dimensions))
	for _, d := range Dimensions {
		hits := 0
		for _, q := range qs {
			if _, ok := q.Weights[d]; ok {
				hits++
			}
		}
		dimMax[d] = hits * maxOffset
	}

	return &Bank{questions: qs, dimMax: dimMax}
}

var defaultBank = NewBank([]Question{
	{ID: 1, Text: "Rooms full of strangers recharge my energy.", Weights: map[Dimension]int{DimE: 1}},
	{ID: 2, Text: "An unplanned weekend excites me. Improvising is fun.", Weights: map[Dimension]int{DimE: 1, DimA: 1}},
	{ID: 3, Text: "Logical consistency comes before feelings.", Weights: map[Dimension]int{DimL: 1}},
	{ID: 4, Text: "In a conversation I read the mood and faces first.", Weights: map[Dimension]int{DimF: 1, DimC: 1}},
	{ID: 5, Text: "I do my best work when I dive in alone.", Weights: map[Dimension]int{DimI: 1, DimA: 1}},
	{ID: 6, Text: "Shipping fast beats shipping perfect.", Weights: map[Dimension]int{DimE: 1, DimA: 1, DimL: 1}},
	{ID: 7, Text: "I often drop my own opinion to keep others comfortable.", Weights: map[Dimension]int{DimF: 1, DimC: 1}},
	{ID: 8, Text: "Rules and structure make me feel at ease.", Weights: map[Dimension]int{DimC: 1, DimI: 1}},
	{ID: 9, Text: "When conflict comes up I sort it out with data and examples.", Weights: map[Dimension]int{DimL: 1, DimI: 1}},
	{ID: 10, Text: "When a new idea hits, I try it right away.", Weights: map[Dimension]int{DimE: 1, DimA: 1}},
	{ID: 11, Text: "For big choices I ask whether my heart is at peace with it.", Weights: map[Dimension]int{DimF: 1}},
	{ID: 12, Text: "I often end up looking after people and connecting them.", Weights: map[Dimension]int{DimC: 1, DimE: 1}},
})

// DefaultBank returns the twelve-question compass bank.
func DefaultBank() *Bank {
	return defaultBank
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Question returns the question at index in bank order.
func (b *Bank) Question(index int) (Question, bool) {
	if index < 0 || index >= len(b.questions) {
		return Question{}, false
	}
	return b.questions[index], true
}

// Questions returns a copy of the ordered question list.
func (b *Bank) Questions() []Question {
	out := make([]Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// DimMax is the largest raw score d can reach, or 1 when no question
// references d.
func (b *Bank) DimMax(d Dimension) int {
	if m := b.dimMax[d]; m > 0 {
		return m
	}
	return 1
}
