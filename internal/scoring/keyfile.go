package scoring

import (
	"encoding/json"
	"errors"
	"strings"
)

// MaxKeyFileBytes caps uploaded answer-key files.
const MaxKeyFileBytes = 1 << 20

// Key file parse errors.
var (
	ErrKeyFileEmpty   = errors.New("answer key file contains no answers")
	ErrKeyFileInvalid = errors.New("answer key file could not be parsed")
	ErrKeyFileTooBig  = errors.New("answer key file exceeds the size limit")
)

// ParseKeyFile parses an uploaded answer key. Two formats are accepted:
//   - JSON: an array of strings
//   - plain text: one answer per line, order-aligned with the questions
//
// Blank lines are skipped in the plain-text format. The JSON format is tried
// whenever the payload looks like a JSON array so that .txt uploads holding
// JSON still parse.
func ParseKeyFile(data []byte) ([]string, error) {
	if len(data) > MaxKeyFileBytes {
		return nil, ErrKeyFileTooBig
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, ErrKeyFileEmpty
	}

	if strings.HasPrefix(trimmed, "[") {
		var answers []string
		if err := json.Unmarshal([]byte(trimmed), &answers); err != nil {
			return nil, ErrKeyFileInvalid
		}
		if len(answers) == 0 {
			return nil, ErrKeyFileEmpty
		}
		return answers, nil
	}

	var answers []string
	for _, line := range strings.Split(trimmed, "\n") {
		if ans := strings.TrimSpace(line); ans != "" {
			answers = append(answers, ans)
		}
	}
	if len(answers) == 0 {
		return nil, ErrKeyFileEmpty
	}
	return answers, nil
}
