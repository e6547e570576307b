package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEntries(t *testing.T) {
	entries := parseEntries("union-sports-arena-nj=0 5 * * *; bridgewater-ice-arena=30 5 * * *")

	assert.Equal(t, map[string]string{
		"union-sports-arena-nj": "0 5 * * *",
		"bridgewater-ice-arena": "30 5 * * *",
	}, entries)
}

func TestParseEntriesKeepsCommaListsInSpecs(t *testing.T) {
	entries := parseEntries("union-sports-arena-nj=0 5,17 * * *")

	assert.Equal(t, map[string]string{"union-sports-arena-nj": "0 5,17 * * *"}, entries)
}

func TestParseEntriesSkipsMalformedPairs(t *testing.T) {
	entries := parseEntries("no-spec-here;;mennen-sports-arena=@daily")

	assert.Equal(t, map[string]string{"mennen-sports-arena": "@daily"}, entries)
}

func TestParseEntriesEmpty(t *testing.T) {
	assert.Nil(t, parseEntries(""))
	assert.Nil(t, parseEntries(" ; "))
}
