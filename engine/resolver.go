package engine

import (
	"fmt"

	"github.com/svyest/svyest/dataset"
	"github.com/svyest/svyest/request"
)

// plan is the resolved execution plan for one request: which levels to
// join, the primary-key chain of the statistic's level, and the
// grouping variables that survived level validation.
type plan struct {
	// levels to join, coarsest first; always the full root path of
	// statLevel.
	levels []dataset.Level

	// statLevel is the finest level the statistic is computed at.
	statLevel dataset.Level

	// denomLevel is the denominator level for ratio aggregates, ""
	// otherwise.
	denomLevel dataset.Level

	// pkey is statLevel's full key-column chain.
	pkey []string

	// by holds the surviving grouping variables, request order.
	by []string

	// dropped holds grouping variables pruned for level mismatch.
	dropped []string
}

// statLevelFor derives the entity level a request's statistic lives at.
func statLevelFor(req request.Request, cat *dataset.Catalog) (dataset.Level, error) {
	if level, ok := req.Agg.CountLevel(); ok {
		return level, nil
	}
	if req.Agg.IsRatio() {
		return dataset.LevelTrip, nil
	}
	v, ok := cat.Lookup(req.AggVar)
	if !ok {
		// Validate runs first, so this is a programming error.
		return "", fmt.Errorf("resolve: agg_var %q not in catalog", req.AggVar)
	}
	return v.Level, nil
}

// resolve builds the execution plan. Grouping variables whose owning
// level is off the statistic's root path are dropped, not fatal: a
// warning naming each dropped variable is returned and execution
// continues with the reduced list.
func resolve(ds *dataset.Dataset, req request.Request) (*plan, []string, error) {
	statLevel, err := statLevelFor(req, ds.Catalog)
	if err != nil {
		return nil, nil, err
	}

	levels := dataset.Chain(statLevel)
	for _, level := range levels {
		if _, ok := ds.Table(level); !ok {
			return nil, nil, fmt.Errorf("resolve: dataset has no %s table, required for %s", level, req.Agg)
		}
	}
	statTable, _ := ds.Table(statLevel)

	p := &plan{
		levels:    levels,
		statLevel: statLevel,
		pkey:      statTable.KeyColumns,
	}
	if denom, ok := req.Agg.DenominatorLevel(); ok {
		p.denomLevel = denom
	}

	var warnings []string
	for _, name := range req.By {
		v, _ := ds.Catalog.Lookup(name)
		if dataset.OnChain(statLevel, v.Level) {
			p.by = append(p.by, name)
		} else {
			p.dropped = append(p.dropped, name)
		}
	}
	if len(p.dropped) > 0 {
		propBy := make(map[string]struct{}, len(req.PropBy))
		for _, name := range req.PropBy {
			propBy[name] = struct{}{}
		}
		for _, name := range p.dropped {
			v, _ := ds.Catalog.Lookup(name)
			warnings = append(warnings, fmt.Sprintf(
				"grouping variable %q dropped: owned by %s level, which %s does not join", name, v.Level, req.Agg))
			if _, inProp := propBy[name]; inProp && req.Prop {
				warnings = append(warnings, fmt.Sprintf(
					"prop_by variable %q dropped with its grouping variable: proportions normalize over the remaining prop_by groups", name))
			}
		}
	}

	return p, warnings, nil
}

// tripGroupSplit partitions the surviving grouping variables of a ratio
// request into the denominator-side groups (household/person level) and
// the trip-level groups, preserving request order.
func (p *plan) tripGroupSplit(cat *dataset.Catalog) (nonTrip, trip []string) {
	for _, name := range p.by {
		v, _ := cat.Lookup(name)
		if v.Level == dataset.LevelTrip {
			trip = append(trip, name)
		} else {
			nonTrip = append(nonTrip, name)
		}
	}
	return nonTrip, trip
}
