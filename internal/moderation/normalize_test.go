package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Hello World",
		"ＣＡＬＬ ｍｅ ａｔ １２３４５６７",
		"Straße und ﬁnal",
		"MiXeD CaSe ÅÉÎ",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "normalize must be a fixed point for %q", in)
	}
}

func TestNormalize_FoldsCaseAndWidth(t *testing.T) {
	assert.Equal(t, "instagram", Normalize("ＩＮＳＴＡＧＲＡＭ"))
	assert.Equal(t, "1234567", Normalize("１２３４５６７"))
	assert.Equal(t, "hello", Normalize("HELLO"))
}

func TestNormalize_StableUnderFilterEvaluation(t *testing.T) {
	// Evaluating once- and twice-normalized text must agree.
	inputs := []string{
		"ＣＡＬＬ ５５５１２３４５６７",
		"Feeling HOPELESS today",
		"stress is GREAT",
		"sending kindness",
	}
	for _, in := range inputs {
		v1 := Evaluate(Normalize(in))
		v2 := Evaluate(Normalize(Normalize(in)))
		assert.Equal(t, v1, v2, "verdict must not depend on normalization depth for %q", in)
	}
}
