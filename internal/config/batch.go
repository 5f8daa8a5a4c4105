package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// BatchRequest is one entry of a batch file.
type BatchRequest struct {
	Topic         string   `mapstructure:"topic"`
	Difficulty    string   `mapstructure:"difficulty"`
	NumQuestions  int      `mapstructure:"num_questions"`
	QuestionTypes []string `mapstructure:"question_types"`
	Content       string   `mapstructure:"content"`
	Language      string   `mapstructure:"language"`
}

// LoadBatchRequests reads the "requests" list from a YAML or JSON batch file.
func LoadBatchRequests(path string) ([]BatchRequest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read batch file %s: %w", path, err)
	}

	var requests []BatchRequest
	if err := v.UnmarshalKey("requests", &requests); err != nil {
		return nil, fmt.Errorf("failed to decode batch requests: %w", err)
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("batch file %s lists no requests", path)
	}
	return requests, nil
}
