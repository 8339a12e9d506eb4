// Package taxonomy loads the optional category seed file. The server only
// uses it for suggestions: transactions may carry any free-form category.
package taxonomy

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"fintrack/internal/core"
)

type seedFile struct {
	Categories map[string][]string `yaml:"categories"`
}

// Taxonomy holds suggested categories per transaction type.
type Taxonomy struct {
	byType map[core.TransactionType][]string
}

// Load reads a seed file of the form:
//
//	categories:
//	  expense: [food, rent, transport]
//	  income: [salary]
//
// Unknown transaction types fail loading; empty and duplicate names are
// dropped.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Taxonomy, error) {
	var raw seedFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode categories file: %w", err)
	}

	tax := &Taxonomy{byType: make(map[core.TransactionType][]string)}
	for key, names := range raw.Categories {
		txType := core.TransactionType(strings.ToLower(strings.TrimSpace(key)))
		if !txType.IsValid() {
			return nil, fmt.Errorf("unknown transaction type %q in categories file", key)
		}

		seen := make(map[string]struct{})
		var out []string
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
		sort.Strings(out)
		tax.byType[txType] = out
	}
	return tax, nil
}

// Categories returns the suggestions for a transaction type, alphabetical.
func (t *Taxonomy) Categories(txType core.TransactionType) []string {
	return append([]string(nil), t.byType[txType]...)
}

// IsKnown reports whether the category is one of the type's suggestions.
func (t *Taxonomy) IsKnown(txType core.TransactionType, category string) bool {
	for _, name := range t.byType[txType] {
		if strings.EqualFold(name, category) {
			return true
		}
	}
	return false
}
