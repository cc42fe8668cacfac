package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii", "Squid Steak", "squidsteak"},
		{"trailing space", "花枝排 ", "花枝排"},
		{"interior whitespace", "花 枝\t排", "花枝排"},
		{"fullwidth parens", "花枝排（大）", "花枝排(大)"},
		{"cjk brackets", "【限量】花枝排", "[限量]花枝排"},
		{"corner quotes", "「招牌」花枝排", "\"招牌\"花枝排"},
		{"zero width space", "花枝\u200b排", "花枝排"},
		{"bom", "\ufeff花枝排", "花枝排"},
		{"mixed case", "Premium 花枝排 SET", "premium花枝排set"},
		{"empty", "", ""},
		{"whitespace only", " \t\n", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Name(tc.in))
		})
	}
}

func TestNameIdempotent(t *testing.T) {
	inputs := []string{
		"花枝排 ",
		"花枝排（大）",
		"【限量】Premium SET",
		"「a」\u200b B（c）",
	}
	for _, in := range inputs {
		once := Name(in)
		assert.Equal(t, once, Name(once), "normalize must be idempotent for %q", in)
	}
}

func TestEqualUnderVariation(t *testing.T) {
	assert.True(t, Equal("花枝排", "花枝排 "))
	assert.True(t, Equal("花枝排（大）", "花枝排(大)"))
	assert.True(t, Equal("ABC", "a b c"))
	assert.False(t, Equal("花枝排", "花枝丸"))
}
