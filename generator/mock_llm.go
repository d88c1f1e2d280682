package generator

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM is a placeholder for local debugging; it never calls a model.
// The reply shape follows the system instruction it is given.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	topic := "post"
	for _, line := range strings.Split(prompt.User, "\n") {
		if v, ok := strings.CutPrefix(line, "Topic: "); ok {
			topic = strings.TrimSpace(v)
		}
	}
	switch {
	case strings.Contains(prompt.System, "hashtag"):
		tag := strings.ReplaceAll(strings.ToLower(topic), " ", "")
		return fmt.Sprintf("#%s #%slife #daily #trending", tag, tag), nil
	case strings.Contains(prompt.System, "caption"):
		return fmt.Sprintf("All about %s today.\nCan't get enough of %s.", topic, topic), nil
	default:
		return fmt.Sprintf("  A Fresh Take on %s  ", topic), nil
	}
}
