package generator

import (
	"errors"
	"fmt"
)

// ErrInvalidOption is returned when a form value is not one of the offered options.
var ErrInvalidOption = errors.New("invalid option")

// Tone of the generated copy.
type Tone string

const (
	ToneCasual    Tone = "Casual"
	ToneFunny     Tone = "Funny"
	ToneEmotional Tone = "Emotional"
	ToneInspiring Tone = "Inspiring"
)

// Niche the hashtags are aimed at.
type Niche string

const (
	NicheFood      Niche = "Food"
	NicheTravel    Niche = "Travel"
	NicheFitness   Niche = "Fitness"
	NicheEducation Niche = "Education"
	NicheOther     Niche = "Other"
)

// Platform is attached by the caller; the agent never looks at it.
type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformTwitter   Platform = "Twitter"
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformYouTube   Platform = "YouTube"
	PlatformFacebook  Platform = "Facebook"
	PlatformOther     Platform = "Other"
)

// Tones lists the tones offered in the UI, in display order.
func Tones() []Tone {
	return []Tone{ToneCasual, ToneFunny, ToneEmotional, ToneInspiring}
}

// Niches lists the niches offered in the UI, in display order.
func Niches() []Niche {
	return []Niche{NicheFood, NicheTravel, NicheFitness, NicheEducation, NicheOther}
}

// Platforms lists the platforms offered in the UI, in display order.
func Platforms() []Platform {
	return []Platform{PlatformInstagram, PlatformTwitter, PlatformLinkedIn, PlatformYouTube, PlatformFacebook, PlatformOther}
}

func ParseTone(s string) (Tone, error) {
	return parseOption("tone", s, Tones())
}

func ParseNiche(s string) (Niche, error) {
	return parseOption("niche", s, Niches())
}

func ParsePlatform(s string) (Platform, error) {
	return parseOption("platform", s, Platforms())
}

func parseOption[T ~string](field, s string, options []T) (T, error) {
	for _, o := range options {
		if string(o) == s {
			return o, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s %q: %w", field, s, ErrInvalidOption)
}

// Record is one generation result as shown in the UI and kept in history.
type Record struct {
	Platform Platform `json:"platform"`
	Topic    string   `json:"topic"`
	Tone     Tone     `json:"tone"`
	Niche    Niche    `json:"niche"`
	Title    string   `json:"title"`
	Captions []string `json:"captions"`
	Hashtags []string `json:"hashtags"`
}
