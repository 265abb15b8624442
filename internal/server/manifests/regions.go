package manifests

import (
	"encoding/json"
	"fmt"
	"os"
)

// Region is one genomic interval a restriction label allows htsget to serve.
type Region struct {
	Chromosome string `json:"chromosome"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
}

// defaultRestrictionRegions maps restriction labels to region allow-lists.
// These values are sample configuration data, not verified genomic truth;
// deployments override them with a regions file.
var defaultRestrictionRegions = map[string][]Region{
	"CongenitalHeartDefect": {
		{Chromosome: "chr1", Start: 237042184, End: 237833988},
		{Chromosome: "chr5", Start: 172659112, End: 172674331},
		{Chromosome: "chr8", Start: 11534467, End: 11612723},
		{Chromosome: "chr20", Start: 58839718, End: 58911192},
	},
	"BRCARelated": {
		{Chromosome: "chr13", Start: 32315086, End: 32400268},
		{Chromosome: "chr17", Start: 43044295, End: 43170245},
	},
	"Mitochondrial": {
		{Chromosome: "chrM", Start: 0, End: 16569},
	},
}

// LoadRestrictionRegions returns the label→regions table: the contents of
// path when given, the built-in sample table otherwise.
func LoadRestrictionRegions(path string) (map[string][]Region, error) {
	if path == "" {
		return defaultRestrictionRegions, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %w", err)
	}

	table := make(map[string][]Region)
	if err := json.Unmarshal(b, &table); err != nil {
		return nil, fmt.Errorf("failed to parse regions file: %w", err)
	}
	return table, nil
}
