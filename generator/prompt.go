package generator

import "fmt"

// Prompt is the message pair sent to the model for one stage.
type Prompt struct {
	System string
	User   string
}

// Instructions are the per-stage system instructions.
type Instructions struct {
	Title    string
	Captions string
	Hashtags string
}

// DefaultInstructions returns the built-in wording for every stage.
func DefaultInstructions() Instructions {
	return Instructions{
		Title:    "Generate an engaging, short social media post title based on the topic and tone. Output only the title.",
		Captions: "Generate 2-3 casual and engaging social media captions for the given topic and tone.",
		Hashtags: "Generate 10 relevant and trending hashtags for the given topic and niche. Do not include # symbols.",
	}
}

// withDefaults fills empty stages from DefaultInstructions.
func (in Instructions) withDefaults() Instructions {
	def := DefaultInstructions()
	if in.Title == "" {
		in.Title = def.Title
	}
	if in.Captions == "" {
		in.Captions = def.Captions
	}
	if in.Hashtags == "" {
		in.Hashtags = def.Hashtags
	}
	return in
}

func BuildTitlePrompt(in Instructions, topic string, tone Tone) Prompt {
	return Prompt{System: in.Title, User: fmt.Sprintf("Topic: %s\nTone: %s", topic, tone)}
}

func BuildCaptionsPrompt(in Instructions, topic string, tone Tone) Prompt {
	return Prompt{System: in.Captions, User: fmt.Sprintf("Topic: %s\nTone: %s", topic, tone)}
}

func BuildHashtagsPrompt(in Instructions, topic string, niche Niche) Prompt {
	return Prompt{System: in.Hashtags, User: fmt.Sprintf("Topic: %s\nNiche: %s", topic, niche)}
}
