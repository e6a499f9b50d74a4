package generator

import (
	"fmt"
	"strings"
)

const questionSystemPrompt = "You are an expert interview coach specializing in technical roles. Your output must be ONLY a single valid JSON array of question strings. Do not include any other text, prose, or markdown."

const scoringSystemPrompt = "You are an expert interview coach providing constructive feedback. Your output must be ONLY a single valid JSON object. Do not include any other text, prose, or markdown."

// buildQuestionPrompt constructs chat messages asking for count
// interview questions for a role at a level. jobContext, when present,
// is a job description the questions should be tailored to.
func buildQuestionPrompt(role, level, jobContext string, count int) []Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, `Generate %d professional interview questions for a %s %s position.
Questions should cover:
- Technical skills and knowledge
- Behavioral and situational scenarios
- Problem-solving approaches
- Industry-specific challenges
- Leadership and collaboration (for senior levels)

Make questions specific, actionable, and relevant to real-world scenarios.
Return only the questions as a JSON list of strings.`, count, level, role)

	if jobContext != "" {
		fmt.Fprintf(&sb, "\n\n[Job Description]\n%s", jobContext)
	}

	return []Message{
		{Role: "system", Content: questionSystemPrompt},
		{Role: "user", Content: sb.String()},
	}
}

// buildScoringPrompt constructs chat messages asking for a structured
// evaluation of one answer.
func buildScoringPrompt(question, answer, role, level string) []Message {
	prompt := fmt.Sprintf(`Analyze this interview response and provide detailed feedback.

Job Role: %s (%s level)
Question: %s
Candidate Answer: %s

Score the answer on:
- content_score (0-10): how well the answer addresses the question
- technical_score (0-10): technical accuracy and depth
- communication_score (0-10): clarity, structure, and concision
- relevance_score (0-10): relevance to the specific role

Also provide 3-5 specific improvement suggestions and an overall assessment.

Return a JSON object with keys: content_score, technical_score, communication_score, relevance_score, improvement_suggestions (list of strings), overall_assessment (string).`,
		role, level, question, answer)

	return []Message{
		{Role: "system", Content: scoringSystemPrompt},
		{Role: "user", Content: prompt},
	}
}
