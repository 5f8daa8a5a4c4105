package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"studyhub/internal/domain"
)

// DefaultExplanation fills in questions the model left unexplained.
const DefaultExplanation = "No explanation provided."

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// rawQuestion is the loosely typed shape the model is asked to produce.
type rawQuestion struct {
	Question    string          `json:"question"`
	Options     json.RawMessage `json:"options"`
	Answer      interface{}     `json:"answer"`
	Explanation string          `json:"explanation"`
	Type        string          `json:"type"`
	Difficulty  string          `json:"difficulty"`
}

// stripThinking removes a <think>...</think> block some reasoning models prepend.
func stripThinking(s string) string {
	start := strings.Index(s, "<think>")
	if start == -1 {
		return s
	}
	end := strings.Index(s, "</think>")
	if end == -1 || end < start {
		return s
	}
	return s[:start] + s[end+len("</think>"):]
}

// ParseModelResponse extracts the first JSON array from raw and decodes it.
func ParseModelResponse(raw string) ([]rawQuestion, error) {
	cleaned := strings.TrimSpace(stripThinking(raw))
	if cleaned == "" {
		return nil, domain.NewError(domain.CodeEmptyModelResponse, "Model returned an empty response", domain.ErrEmptyModelResponse)
	}

	match := jsonArrayPattern.FindString(cleaned)
	if match == "" {
		return nil, domain.NewResponseParseError("no JSON array found in model response", nil)
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(match), &items); err != nil {
		return nil, domain.NewResponseParseError("model response is not a valid JSON array", err)
	}
	if len(items) == 0 {
		return nil, domain.NewResponseParseError("model returned an empty question array", nil)
	}

	questions := make([]rawQuestion, 0, len(items))
	for i, item := range items {
		var q rawQuestion
		if err := json.Unmarshal(item, &q); err != nil {
			return nil, domain.NewResponseParseError(fmt.Sprintf("question %d is not a JSON object", i+1), err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// NormalizeQuestions forces parsed questions into the fixed question shape.
func NormalizeQuestions(raw []rawQuestion, req *domain.GenerationRequest) []domain.GeneratedQuestion {
	defaultType := domain.QuestionTypeMultipleChoice
	if len(req.QuestionTypes) > 0 {
		defaultType = req.QuestionTypes[0]
	}

	out := make([]domain.GeneratedQuestion, 0, len(raw))
	for _, r := range raw {
		qType := domain.QuestionType(strings.ToLower(strings.TrimSpace(r.Type)))
		if !qType.IsValid() {
			qType = defaultType
		}

		difficulty := domain.Difficulty(strings.ToLower(strings.TrimSpace(r.Difficulty)))
		if !difficulty.IsValid() {
			difficulty = req.Difficulty
		}

		explanation := strings.TrimSpace(r.Explanation)
		if explanation == "" {
			explanation = DefaultExplanation
		}

		out = append(out, domain.GeneratedQuestion{
			Question:    strings.TrimSpace(r.Question),
			Options:     normalizeOptions(qType, r.Options),
			Answer:      normalizeAnswer(qType, r.Answer),
			Explanation: explanation,
			Type:        qType,
			Difficulty:  difficulty,
		})
	}
	return out
}

func emptyOptions() map[string]string {
	options := make(map[string]string, len(domain.OptionLabels))
	for _, label := range domain.OptionLabels {
		options[label] = ""
	}
	return options
}

func normalizeOptions(qType domain.QuestionType, raw json.RawMessage) map[string]string {
	options := emptyOptions()
	switch qType {
	case domain.QuestionTypeTrueFalse:
		options["A"] = "True"
		options["B"] = "False"
		return options
	case domain.QuestionTypeFillInBlank:
		return options
	}

	// Models return either {"A": "..."} or a plain list.
	var byLabel map[string]interface{}
	if err := json.Unmarshal(raw, &byLabel); err == nil {
		for _, label := range domain.OptionLabels {
			if v, ok := byLabel[label]; ok {
				options[label] = stringify(v)
			} else if v, ok := byLabel[strings.ToLower(label)]; ok {
				options[label] = stringify(v)
			}
		}
		return options
	}
	var list []interface{}
	if err := json.Unmarshal(raw, &list); err == nil {
		for i, v := range list {
			if i >= len(domain.OptionLabels) {
				break
			}
			options[domain.OptionLabels[i]] = stringify(v)
		}
	}
	return options
}

func normalizeAnswer(qType domain.QuestionType, raw interface{}) string {
	answer := stringify(raw)
	if qType == domain.QuestionTypeFillInBlank {
		return answer
	}

	answer = strings.ToUpper(answer)
	if qType == domain.QuestionTypeTrueFalse {
		switch answer {
		case "TRUE":
			return "A"
		case "FALSE":
			return "B"
		}
	}
	for _, label := range domain.OptionLabels {
		if answer == label {
			return answer
		}
	}
	return "A"
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
