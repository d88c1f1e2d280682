package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	tone, err := ParseTone("Funny")
	require.NoError(t, err)
	assert.Equal(t, ToneFunny, tone)

	niche, err := ParseNiche("Education")
	require.NoError(t, err)
	assert.Equal(t, NicheEducation, niche)

	platform, err := ParsePlatform("LinkedIn")
	require.NoError(t, err)
	assert.Equal(t, PlatformLinkedIn, platform)

	_, err = ParseTone("funny")
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = ParseNiche("")
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = ParsePlatform("MySpace")
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.Contains(t, err.Error(), "MySpace")
}

func TestOptionLists(t *testing.T) {
	assert.Len(t, Tones(), 4)
	assert.Len(t, Niches(), 5)
	assert.Len(t, Platforms(), 6)
}

func TestPromptText(t *testing.T) {
	in := DefaultInstructions()
	assert.Equal(t, "Topic: coffee\nTone: Casual", BuildTitlePrompt(in, "coffee", ToneCasual).User)
	assert.Equal(t, "Topic: coffee\nTone: Casual", BuildCaptionsPrompt(in, "coffee", ToneCasual).User)
	assert.Equal(t, "Topic: coffee\nNiche: Food", BuildHashtagsPrompt(in, "coffee", NicheFood).User)
	assert.Equal(t, in.Hashtags, BuildHashtagsPrompt(in, "coffee", NicheFood).System)
}
