package main

import (
	"fmt"
	"os"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

// Status and progress messages go to stderr; interview content
// (questions, scores, reports) goes to stdout so it survives piping.

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

// printQuestion shows one interview question with its 1-based position.
func printQuestion(number, total int, text string) {
	heading := fmt.Sprintf("Question %d of %d:", number, total)
	fmt.Printf("\n%s %s\n", colorize(colorBold, heading), text)
}

// printAnswerScores shows the per-answer score line: the question
// average first, then the four category scores.
func printAnswerScores(s answerScores) {
	fmt.Printf("\n%s %.1f  (content %.1f, technical %.1f, communication %.1f, relevance %.1f)\n",
		colorize(colorBold, "Score:"), s.Overall, s.Content, s.Technical, s.Communication, s.Relevance)
}

func printSuggestions(suggestions []string) {
	for _, s := range suggestions {
		fmt.Printf("  - %s\n", s)
	}
}

// shortID abbreviates a session id for list output. IDs are normally
// UUIDs, but nothing guarantees a minimum length.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
