package main

import (
	"regexp"
	"sort"
	"strings"
)

const maxWordFrequencies = 50

// WordFrequency is a derived view: one lowercase token and its occurrence
// count across all stored topic texts. Never persisted, recomputed per
// request.
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// stopWords carries no topical signal and is excluded from the tally.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "it": {}, "that": {}, "this": {},
	"as": {}, "be": {}, "are": {}, "was": {}, "were": {}, "been": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "must": {}, "can": {}, "i": {}, "you": {}, "we": {},
	"they": {}, "he": {}, "she": {}, "my": {}, "your": {}, "our": {},
	"their": {}, "what": {}, "how": {}, "when": {}, "where": {},
	"why": {}, "which": {}, "who": {},
}

var nonWordChars = regexp.MustCompile(`[^a-z0-9\s]`)

// ComputeWordFrequencies tallies tokens across all topic texts and returns at
// most the top 50, ordered by count descending. Ties keep first-seen order so
// the output is deterministic for a given input sequence. Pure function, no
// side effects.
func ComputeWordFrequencies(topics []string) []WordFrequency {
	counts := make(map[string]int)
	var firstSeen []string

	for _, topic := range topics {
		cleaned := nonWordChars.ReplaceAllString(strings.ToLower(topic), "")
		for _, word := range strings.Fields(cleaned) {
			if len(word) <= 2 {
				continue
			}
			if _, skip := stopWords[word]; skip {
				continue
			}
			if _, seen := counts[word]; !seen {
				firstSeen = append(firstSeen, word)
			}
			counts[word]++
		}
	}

	frequencies := make([]WordFrequency, 0, len(firstSeen))
	for _, word := range firstSeen {
		frequencies = append(frequencies, WordFrequency{Word: word, Count: counts[word]})
	}

	sort.SliceStable(frequencies, func(i, j int) bool {
		return frequencies[i].Count > frequencies[j].Count
	})

	if len(frequencies) > maxWordFrequencies {
		frequencies = frequencies[:maxWordFrequencies]
	}

	return frequencies
}
