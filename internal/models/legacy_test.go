package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLegacyLikes(t *testing.T) {
	strptr := func(s string) *string { return &s }

	cases := []struct {
		name string
		raw  *string
		want []string
	}{
		{"nil", nil, []string{}},
		{"empty", strptr(""), []string{}},
		{"whitespace", strptr("   "), []string{}},
		{"json array", strptr(`["user_a","user_b"]`), []string{"user_a", "user_b"}},
		{"json array empty", strptr(`[]`), []string{}},
		{"brace string", strptr(`{user_a, user_b}`), []string{"user_a", "user_b"}},
		{"brace string quoted", strptr(`{"user_a","user_b"}`), []string{"user_a", "user_b"}},
		{"brace string empty", strptr(`{}`), []string{}},
		{"duplicates collapsed", strptr(`["user_a","user_b","user_a"]`), []string{"user_a", "user_b"}},
		{"malformed json", strptr(`["user_a"`), []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLegacyLikes(tc.raw))
		})
	}
}

func TestMergeLikeSets(t *testing.T) {
	merged := MergeLikeSets([]string{"user_a", "user_b"}, []string{"user_b", "user_c"})
	assert.Equal(t, []string{"user_a", "user_b", "user_c"}, merged)

	assert.Empty(t, MergeLikeSets(nil, nil))
	assert.Equal(t, []string{"user_x"}, MergeLikeSets(nil, []string{"user_x"}))
}
