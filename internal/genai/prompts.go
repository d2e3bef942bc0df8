package genai

import (
	"encoding/json"
	"fmt"
)

// Prompt builders. All prompts demand a single JSON object, spelled out last
// so it is the final thing the model sees, and run at temperature 0.

const generationSchema = `Respond with ONLY this JSON — no explanation, no markdown:
{
  "questions": [{"question": "...", "options": ["...", "...", "...", "..."], "answer": "..." or null}],
  "requiresLanguageChoice": true or false,
  "resolvedLanguage": "en" | "hi" | "mixed" | "unknown"
}`

// buildExtractPrompt asks the model to lift existing questions out of text.
// Without a preferred language it also runs language detection: significant
// presence of both English and Hindi must set requiresLanguageChoice.
func buildExtractPrompt(text string, preferred Language) string {
	if preferred != "" {
		return fmt.Sprintf(`You are an expert at extracting multiple-choice questions from text.
The text may contain questions in English, Hindi, or both.

INPUT TEXT:
%s

The user prefers the language %q. Extract questions only in that language.
Set "resolvedLanguage" to %q and "requiresLanguageChoice" to false.
Every question must have exactly 4 options. If options or the answer are
missing in the source, generate reasonable ones. Set "answer" to null only
when you cannot determine it.

%s`, text, preferred, preferred, generationSchema)
	}

	return fmt.Sprintf(`You are an expert at extracting multiple-choice questions from text.
The text may contain questions in English, Hindi, or both.

INPUT TEXT:
%s

Analyze the languages present:
- If significant content exists in BOTH English and Hindi, set
  "requiresLanguageChoice" to true, "resolvedLanguage" to "mixed", and return
  an empty "questions" array.
- If one language dominates, set "requiresLanguageChoice" to false,
  "resolvedLanguage" to that language, and extract its questions.
- If no questions are found or the language is neither, set
  "requiresLanguageChoice" to false, "resolvedLanguage" to "unknown", and
  return an empty "questions" array.

Every extracted question must have exactly 4 options. If options or the
answer are missing in the source, generate reasonable ones. Set "answer" to
null only when you cannot determine it.

%s`, text, generationSchema)
}

// buildSyllabusPrompt asks for fresh questions covering syllabus content.
func buildSyllabusPrompt(in GenerateInput) string {
	return fmt.Sprintf(`You are an expert curriculum designer and question generator.
Generate multiple-choice questions that cover the syllabus below.

SYLLABUS:
%s

Number of questions: %d
Difficulty: %s
%s
For each question: exactly 4 distinct options, clearly indicate the correct
answer in "answer", stay within the syllabus scope.

%s`, in.SyllabusText, in.NumQuestions, in.Difficulty, languageClause(in.PreferredLanguage), generationSchema)
}

// buildTopicPrompt asks for fresh questions about a free-text topic.
func buildTopicPrompt(in GenerateInput) string {
	return fmt.Sprintf(`You are an expert curriculum designer and question generator.
Generate multiple-choice questions about the topic below.

TOPIC: %s

Number of questions: %d
Difficulty: %s
%s
For each question: exactly 4 distinct options, clearly indicate the correct
answer in "answer", keep questions relevant to the topic and suitable for a
general audience unless the topic implies otherwise.

%s`, in.Topic, in.NumQuestions, in.Difficulty, languageClause(in.PreferredLanguage), generationSchema)
}

func languageClause(preferred Language) string {
	if preferred != "" {
		return fmt.Sprintf(`Generate all questions in the language %q. Set "resolvedLanguage" to %q
and "requiresLanguageChoice" to false.
`, preferred, preferred)
	}
	return `Generate questions in English by default ("resolvedLanguage": "en",
"requiresLanguageChoice": false), unless the content strongly implies another
language — if it mixes English and Hindi substantially, set
"requiresLanguageChoice" to true and "resolvedLanguage" to "mixed".
`
}

// buildScorePrompt asks the model to adjudicate the correct answer for each
// question. Questions with a stored answer are confirmed or corrected;
// questions without one are decided from scratch.
func buildScorePrompt(items []ScoreItem) (string, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are grading a multiple-choice test. For every question below, decide
which of its 4 options is the correct answer.

- If "answer" is present, verify it; correct it only if it is clearly wrong.
- If "answer" is null, determine the correct option yourself.
- "correctAnswer" must be the exact text of one of the question's options.
- Return one result per question, in the same order as the input.

QUESTIONS:
%s

Respond with ONLY this JSON — no explanation, no markdown:
{"results": [{"correctAnswer": "..."}]}`, payload), nil
}
