// Package db keeps the addresses a user gave names to and finds them
// again from a few letters of the name.
package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

const maxMatches = 10

var ErrAddressNotFound = errors.New("no address found")

func getAddressMatches(input string, source FuzzySource) ([]AddressDesc, []int) {
	matches := fuzzy.FindFrom(strings.Replace(input, " ", "_", -1), source)
	result := []AddressDesc{}
	scores := []int{}
	for i := 0; i < maxMatches && i < len(matches); i++ {
		result = append(result, source[matches[i].Index])
		scores = append(scores, matches[i].Score)
	}
	return result, scores
}

// GetAddresses returns up to 10 entries whose name matches input, best
// first, with their scores.
func (self *DefaultAddressDatabase) GetAddresses(input string) ([]AddressDesc, []int) {
	return getAddressMatches(input, NewFuzzySource(self.Data))
}

// GetAddress returns the best match for input. An exact name wins over
// fuzzy matches.
func (self *DefaultAddressDatabase) GetAddress(input string) (AddressDesc, error) {
	source := NewFuzzySource(self.Data)
	for _, entry := range source {
		if strings.EqualFold(entry.Desc, input) {
			return entry, nil
		}
	}
	matches, _ := getAddressMatches(input, source)
	if len(matches) == 0 {
		return AddressDesc{}, fmt.Errorf("'%s': %w", input, ErrAddressNotFound)
	}
	return matches[0], nil
}
