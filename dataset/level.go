package dataset

import "fmt"

// Level identifies one entity level of the survey hierarchy.
type Level string

const (
	// LevelHousehold is the root of the hierarchy.
	LevelHousehold Level = "household"

	// LevelPerson is a child of household. Trips hang off persons.
	LevelPerson Level = "person"

	// LevelVehicle is a child of household.
	LevelVehicle Level = "vehicle"

	// LevelTrip is a child of person (and transitively household).
	LevelTrip Level = "trip"
)

// Levels lists all hierarchy levels, coarsest first.
var Levels = []Level{LevelHousehold, LevelPerson, LevelVehicle, LevelTrip}

// Valid reports whether l names a known hierarchy level.
func (l Level) Valid() bool {
	switch l {
	case LevelHousehold, LevelPerson, LevelVehicle, LevelTrip:
		return true
	}
	return false
}

// Parent returns the parent level and true, or ("", false) for the root.
func (l Level) Parent() (Level, bool) {
	switch l {
	case LevelPerson, LevelVehicle:
		return LevelHousehold, true
	case LevelTrip:
		return LevelPerson, true
	}
	return "", false
}

// Chain returns the ancestor path from the root down to l, inclusive.
// Chain(trip) = [household, person, trip]; Chain(household) = [household].
func Chain(l Level) []Level {
	var chain []Level
	for cur, ok := l, l.Valid(); ok; cur, ok = cur.Parent() {
		chain = append([]Level{cur}, chain...)
	}
	return chain
}

// OnChain reports whether candidate lies on the root path of l.
func OnChain(l, candidate Level) bool {
	for _, c := range Chain(l) {
		if c == candidate {
			return true
		}
	}
	return false
}

// ParseLevel converts a string into a Level, rejecting unknown names.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown entity level %q", s)
	}
	return l, nil
}
