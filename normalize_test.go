/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank", "   \t\n", ""},
		{"accents", "Émilie", "emilie"},
		{"cedilla", "François", "francois"},
		{"collapse", "  A   B ", "a b"},
		{"tabs and newlines", "Jean\t\nPierre", "jean pierre"},
		{"decomposed input", "Le\u0301a", "lea"},
		{"already folded", "maxence", "maxence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"", "Émilie", "  A   B ", "ÇA  va\tBIEN", "Łukasz", "İstanbul", "Ñandú", "ǅemal"} {
		once := normalize(in)
		assert.Equal(t, once, normalize(once), "input %q", in)
	}
}

func TestNormalizeKeepsWordBoundaries(t *testing.T) {
	assert.Equal(t, normalize("Émilie"), normalize("emilie"))
	assert.NotEqual(t, normalize("É é  "), normalize("ee"))
}
