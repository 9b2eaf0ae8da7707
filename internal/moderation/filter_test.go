package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_DigitRun(t *testing.T) {
	cases := []string{
		"call me at 5551234567",
		"my number is 1234567",
		"text5551234567now",
	}
	for _, in := range cases {
		v := Evaluate(Normalize(in))
		assert.False(t, v.Safe, "%q should be unsafe", in)
		assert.Equal(t, ReasonContactInfo, v.Reason)
	}

	v := Evaluate(Normalize("123456 is only six digits"))
	assert.True(t, v.Safe)
}

func TestEvaluate_DigitRun_FullwidthDigits(t *testing.T) {
	v := Evaluate(Normalize("ｃａｌｌ ｍｅ ５５５１２３４５６７"))
	assert.False(t, v.Safe)
	assert.Equal(t, ReasonContactInfo, v.Reason)
}

func TestEvaluate_ExternalContactReference(t *testing.T) {
	cases := []string{
		"find me on Instagram",
		"add my Snap",
		"join my discord server",
		"i'm on TikTok",
		"i'm on tik tok",
		"email me @ my address",
		"check site.com for more",
	}
	for _, in := range cases {
		v := Evaluate(Normalize(in))
		assert.False(t, v.Safe, "%q should be unsafe", in)
		assert.Equal(t, ReasonExternalRef, v.Reason)
	}
}

func TestEvaluate_CrisisLexicon(t *testing.T) {
	cases := []string{
		"thinking about suicide",
		"i want to kill myself",
		"i feel hopeless",
		"i've been so depressed",
		"feeling anxious and sad",
		"there's no point anymore",
		"nothing matters",
	}
	for _, in := range cases {
		v := Evaluate(Normalize(in))
		assert.False(t, v.Safe, "%q should be unsafe", in)
		assert.Equal(t, ReasonCrisisLanguage, v.Reason)
	}
}

func TestEvaluate_StressFraming(t *testing.T) {
	for _, in := range []string{
		"stress is good for you",
		"a great way to use stress",
		"stress can be so helpful",
		"positive stress exists",
		"stress is useful",
		"stress is beneficial honestly",
	} {
		v := Evaluate(Normalize(in))
		assert.False(t, v.Safe, "%q should be unsafe", in)
		assert.Equal(t, ReasonStressFraming, v.Reason)
	}

	// "stress" alone, without positive framing, is not a filter hit.
	v := Evaluate(Normalize("school stress is a lot right now"))
	assert.True(t, v.Safe)
}

func TestEvaluate_RuleOrderIsDeterministic(t *testing.T) {
	// Earlier rules win even when the stress-framing rule also matches.
	v := Evaluate(Normalize("stress is good, call 5551234567"))
	assert.Equal(t, ReasonContactInfo, v.Reason)

	v = Evaluate(Normalize("stress is good, i feel hopeless"))
	assert.Equal(t, ReasonCrisisLanguage, v.Reason)

	// Contact info outranks the external-reference rule.
	v = Evaluate(Normalize("5551234567 on instagram"))
	assert.Equal(t, ReasonContactInfo, v.Reason)
}

func TestEvaluate_SafeText(t *testing.T) {
	for _, in := range []string{
		"Sending good vibes your way.",
		"You are not alone.",
		"One day at a time.",
	} {
		v := Evaluate(Normalize(in))
		assert.True(t, v.Safe, "%q should be safe", in)
		assert.Equal(t, ReasonSafe, v.Reason)
	}
}
