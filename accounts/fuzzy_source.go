package accounts

import (
	"fmt"
	"sort"
	"strings"
)

type FuzzySource []AccDesc

func (fs FuzzySource) Len() int {
	return len(fs)
}

func (fs FuzzySource) String(i int) string {
	return fmt.Sprintf("%s_%s", fs[i].Address, strings.Replace(fs[i].Desc, " ", "_", -1))
}

func NewFuzzySource(accounts map[string]AccDesc) FuzzySource {
	result := FuzzySource{}
	for _, acc := range accounts {
		result = append(result, acc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Address < result[j].Address })
	return result
}
