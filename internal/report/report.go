// Package report defines per-answer score records and the final
// aggregation that turns them into an interview performance report.
package report

import "math"

// Category identifies one of the four fixed scoring dimensions.
type Category string

const (
	CategoryContent       Category = "content_score"
	CategoryTechnical     Category = "technical_score"
	CategoryCommunication Category = "communication_score"
	CategoryRelevance     Category = "relevance_score"
)

// Categories is the fixed ordering used for aggregation and for
// weakest-category tie-breaking.
var Categories = []Category{
	CategoryContent,
	CategoryTechnical,
	CategoryCommunication,
	CategoryRelevance,
}

// categoryLabels maps categories to the human-readable phrasing used in
// performance commentary.
var categoryLabels = map[Category]string{
	CategoryContent:       "content quality",
	CategoryTechnical:     "technical depth",
	CategoryCommunication: "communication skills",
	CategoryRelevance:     "answer relevance",
}

// Scores holds the four category scores for a single answer plus the
// derived per-question average. All values are in [0,10].
type Scores struct {
	Content       float64 `json:"content_score"`
	Technical     float64 `json:"technical_score"`
	Communication float64 `json:"communication_score"`
	Relevance     float64 `json:"relevance_score"`
	Overall       float64 `json:"overall_question_score"`
}

// ScoreRecord is the structured evaluation of one answer.
type ScoreRecord struct {
	Question    string   `json:"question"`
	Answer      string   `json:"user_answer"`
	Scores      Scores   `json:"scores"`
	Suggestions []string `json:"improvement_suggestions"`
	Assessment  string   `json:"overall_assessment"`
}

// FinalReport is the aggregated result of a completed interview.
type FinalReport struct {
	OverallScore        float64              `json:"overall_score"`
	CategoryScores      map[Category]float64 `json:"category_scores"`
	PerformanceFeedback []string             `json:"performance_feedback"`
	TotalQuestions      int                  `json:"total_questions"`
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Clamp bounds v to [0,10].
func Clamp(v float64) float64 {
	return math.Min(10, math.Max(0, v))
}

// QuestionAverage returns the per-question average of the four category
// scores, rounded to one decimal.
func QuestionAverage(s Scores) float64 {
	return Round1((s.Content + s.Technical + s.Communication + s.Relevance) / 4)
}

func categoryValue(s Scores, c Category) float64 {
	switch c {
	case CategoryContent:
		return s.Content
	case CategoryTechnical:
		return s.Technical
	case CategoryCommunication:
		return s.Communication
	default:
		return s.Relevance
	}
}

// Aggregate combines per-answer records into a final report. The overall
// score is the mean of the four category averages (not a flat mean over
// all raw scores), each stage rounded to one decimal.
func Aggregate(records []ScoreRecord) FinalReport {
	if len(records) == 0 {
		return FinalReport{
			OverallScore:        0.0,
			CategoryScores:      map[Category]float64{},
			PerformanceFeedback: []string{"No feedback available"},
			TotalQuestions:      0,
		}
	}

	categoryScores := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		var sum float64
		for _, r := range records {
			sum += categoryValue(r.Scores, c)
		}
		categoryScores[c] = Round1(sum / float64(len(records)))
	}

	var total float64
	for _, c := range Categories {
		total += categoryScores[c]
	}
	overall := Round1(total / float64(len(Categories)))

	return FinalReport{
		OverallScore:        overall,
		CategoryScores:      categoryScores,
		PerformanceFeedback: performanceFeedback(overall, categoryScores),
		TotalQuestions:      len(records),
	}
}

// performanceFeedback returns the tier sentence for the overall score
// and, when the weakest category averages below 7, a sentence naming it.
// Ties between categories resolve to the first in the fixed ordering.
func performanceFeedback(overall float64, categoryScores map[Category]float64) []string {
	var feedback []string

	switch {
	case overall >= 9:
		feedback = append(feedback, "Outstanding performance! You demonstrate excellent expertise and communication skills.")
	case overall >= 8:
		feedback = append(feedback, "Strong performance with well-developed skills across all areas.")
	case overall >= 7:
		feedback = append(feedback, "Good performance with solid fundamentals and some standout areas.")
	case overall >= 6:
		feedback = append(feedback, "Satisfactory performance with clear areas for improvement.")
	default:
		feedback = append(feedback, "Needs significant improvement in multiple areas.")
	}

	weakest := Categories[0]
	for _, c := range Categories[1:] {
		if categoryScores[c] < categoryScores[weakest] {
			weakest = c
		}
	}
	if categoryScores[weakest] < 7 {
		feedback = append(feedback, "Focus on improving your "+categoryLabels[weakest]+".")
	}

	return feedback
}
