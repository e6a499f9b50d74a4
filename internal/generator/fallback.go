package generator

import (
	"strings"

	"github.com/kalambet/intervu/internal/report"
)

// questionCatalog maps normalized (lower-cased) role names to template
// question lists used when the external generator is unavailable.
var questionCatalog = map[string][]string{
	"devops engineer": {
		"Explain your experience with CI/CD pipeline implementation",
		"How do you handle infrastructure as code?",
		"Describe a production incident and how you resolved it",
		"What monitoring and alerting tools have you used?",
		"How do you ensure security in DevOps practices?",
		"Explain your experience with container orchestration",
		"Describe your approach to capacity planning",
		"How do you manage configuration across multiple environments?",
		"What's your experience with cloud platforms?",
		"How do you implement disaster recovery strategies?",
	},
	"data engineer": {
		"Describe your experience with data pipeline architecture",
		"How do you ensure data quality and validation?",
		"Explain your ETL/ELT process design",
		"What's your experience with big data technologies?",
		"How do you handle data modeling and schema design?",
		"Describe your experience with data warehousing solutions",
		"How do you optimize query performance?",
		"What's your approach to data governance?",
		"Explain your experience with real-time data processing",
		"How do you handle data security and compliance?",
	},
	"data analyst": {
		"Describe your data analysis process from raw data to insights",
		"What statistical methods do you commonly use?",
		"How do you ensure data accuracy in your reports?",
		"What visualization tools are you proficient with?",
		"Describe a complex analysis project you completed",
		"How do you handle missing or incomplete data?",
		"What's your experience with SQL and database querying?",
		"How do you communicate findings to non-technical stakeholders?",
		"Describe your experience with A/B testing analysis",
		"What metrics do you use to measure business impact?",
	},
	"software engineer": {
		"Explain your system design approach for scalable applications",
		"How do you write maintainable and testable code?",
		"Describe your experience with different programming paradigms",
		"What's your approach to code reviews and technical feedback?",
		"How do you handle technical debt?",
		"Describe a challenging debugging experience",
		"What's your experience with microservices architecture?",
		"How do you ensure application security?",
		"Describe your testing strategy across different levels",
		"How do you stay updated with technology trends?",
	},
	"data scientist": {
		"Describe your end-to-end machine learning project experience",
		"How do you validate and evaluate model performance?",
		"What's your approach to feature engineering?",
		"Explain your experience with different ML algorithms",
		"How do you handle imbalanced datasets?",
		"Describe your model deployment and monitoring process",
		"What's your experience with deep learning frameworks?",
		"How do you communicate model results to business stakeholders?",
		"What metrics do you use for model success?",
		"How do you ensure model fairness and ethics?",
	},
}

// genericCatalog is used for roles not present in questionCatalog.
var genericCatalog = []string{
	"Tell me about your experience and background",
	"What are your key strengths?",
	"Why are you interested in this position?",
	"Describe a challenging project you worked on",
	"How do you handle tight deadlines?",
	"What are your career goals?",
	"How do you approach problem-solving?",
	"Describe your experience working in teams",
	"How do you handle constructive criticism?",
	"What motivates you in your work?",
}

// technicalKeywords are the domain terms the fallback scorer counts.
var technicalKeywords = []string{
	"system", "design", "algorithm", "framework", "database",
	"api", "microservices", "pipeline", "infrastructure", "model",
}

var fallbackSuggestions = []string{
	"Provide more specific examples from your experience",
	"Use the STAR method (Situation, Task, Action, Result) to structure your answer",
	"Include quantitative results or metrics when possible",
	"Explain the technical concepts more clearly",
}

const fallbackAssessment = "Good answer with room for improvement in providing specific examples and technical details."

// FallbackQuestions returns exactly count template questions for the
// role. The role match is case-insensitive and exact; unknown roles get
// the generic catalog. Catalogs shorter than count are repeated
// cyclically before truncation.
func FallbackQuestions(role string, count int) []string {
	catalog, ok := questionCatalog[strings.ToLower(role)]
	if !ok {
		catalog = genericCatalog
	}

	questions := make([]string, 0, count)
	for len(questions) < count {
		questions = append(questions, catalog...)
	}
	return questions[:count]
}

// FallbackScore produces a deterministic ScoreRecord from the answer
// text alone. It is intentionally coarse; it exists to keep the
// pipeline live when the external generator misbehaves.
func FallbackScore(question, answer string) report.ScoreRecord {
	words := float64(len(strings.Fields(answer)))

	var keywordHits float64
	lower := strings.ToLower(answer)
	for _, term := range technicalKeywords {
		if strings.Contains(lower, term) {
			keywordHits++
		}
	}

	scores := report.Scores{
		Content:       report.Clamp(words/20 + 5),
		Technical:     report.Clamp(keywordHits*2 + 4),
		Communication: report.Clamp(max(4, words/25+5)),
		Relevance:     7.0,
	}
	scores.Overall = report.QuestionAverage(scores)

	return report.ScoreRecord{
		Question:    question,
		Answer:      answer,
		Scores:      scores,
		Suggestions: append([]string(nil), fallbackSuggestions...),
		Assessment:  fallbackAssessment,
	}
}
