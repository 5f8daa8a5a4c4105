package service

import (
	"fmt"
	"strings"

	"studyhub/internal/domain"
)

const promptTemplate = `You are an expert educator creating a quiz for students.

Generate exactly %d quiz questions %s

Difficulty: %s
Allowed question types: %s
%s
Formatting rules:
1. "multiple-choice" questions must have exactly 4 options labeled "A", "B", "C" and "D", and "answer" must be one of those labels.
2. "true-false" questions must have exactly 2 options: "A" is "True" and "B" is "False". "answer" must be "A" or "B".
3. "fill-in-the-blank" questions must have an empty "options" object ({}) and "answer" must be the missing word or phrase.
4. Every question needs a short "explanation" of why the answer is correct.
5. "type" must be one of the allowed question types and "difficulty" must be "%s".

Respond ONLY with a JSON array and no other text. Each element must have this shape:
[
  {
    "question": "Which gas do plants absorb during photosynthesis?",
    "options": {"A": "Oxygen", "B": "Carbon dioxide", "C": "Nitrogen", "D": "Hydrogen"},
    "answer": "B",
    "explanation": "Plants take in carbon dioxide and release oxygen.",
    "type": "multiple-choice",
    "difficulty": "easy"
  }
]`

// BuildPrompt renders the generation prompt. content is the already processed source material.
func BuildPrompt(req *domain.GenerationRequest, content string) string {
	var context string
	if content != "" {
		context = fmt.Sprintf("based on the following content (topic: %q):\n\n\"\"\"\n%s\n\"\"\"", req.Topic, content)
	} else {
		context = fmt.Sprintf("about the topic %q.", req.Topic)
	}

	types := make([]string, 0, len(req.QuestionTypes))
	for _, t := range req.QuestionTypes {
		types = append(types, string(t))
	}

	var language string
	if req.Language != "" {
		language = fmt.Sprintf("Write every question, option and explanation in %s.\n", req.Language)
	}

	return fmt.Sprintf(promptTemplate,
		req.NumQuestions,
		context,
		req.Difficulty,
		strings.Join(types, ", "),
		language,
		req.Difficulty,
	)
}
