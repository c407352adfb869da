package db

import (
	"fmt"
	"sort"
	"strings"
)

type AddressDesc struct {
	Address string `json:"address"`
	Desc    string `json:"desc"`
}

type FuzzySource []AddressDesc

func (self FuzzySource) Len() int {
	return len(self)
}

func (self FuzzySource) String(i int) string {
	return fmt.Sprintf("%s_%s", strings.Replace(self[i].Desc, " ", "_", -1), self[i].Address)
}

// NewFuzzySource lists addrs sorted by name so ties resolve the same way
// on every run.
func NewFuzzySource(addrs map[string]string) FuzzySource {
	result := FuzzySource{}
	for addr, desc := range addrs {
		result = append(result, AddressDesc{
			Address: addr,
			Desc:    desc,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Desc == result[j].Desc {
			return result[i].Address < result[j].Address
		}
		return result[i].Desc < result[j].Desc
	})
	return result
}
