package samples

import (
	"fmt"
	"strings"

	"tradestats/domain/comparison"
	"tradestats/domain/core"
)

// record is one (group label, raw value) pair read from a source.
type record struct {
	group string
	value string
}

// splitGroups partitions records into the two requested groups. Rows for other
// groups are ignored; rows of the requested groups whose value is missing or
// unparseable are counted in Skipped.
func splitGroups(query comparison.SampleQuery, records []record) (*comparison.SamplePair, error) {
	pair := &comparison.SamplePair{Query: query}

	for _, rec := range records {
		group := strings.TrimSpace(rec.group)
		var dst *[]float64
		switch group {
		case query.GroupA:
			dst = &pair.GroupA
		case query.GroupB:
			dst = &pair.GroupB
		default:
			continue
		}

		v, ok, err := ParseValue(query.ValueColumn, rec.value)
		if err != nil || !ok {
			pair.Skipped++
			continue
		}
		*dst = append(*dst, v)
	}

	if len(pair.GroupA) == 0 {
		return nil, core.NewInvalidInputError("group_a",
			fmt.Sprintf("no numeric %s values where %s = %q", query.ValueColumn, query.GroupColumn, query.GroupA))
	}
	if len(pair.GroupB) == 0 {
		return nil, core.NewInvalidInputError("group_b",
			fmt.Sprintf("no numeric %s values where %s = %q", query.ValueColumn, query.GroupColumn, query.GroupB))
	}
	return pair, nil
}
