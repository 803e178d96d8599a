package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ClubhouseName is the wire encoding of the depot position.
const ClubhouseName = "clubhouse"

// Location is a position on the course: either the clubhouse depot or a
// hole number. The depot counts as position 0 for all distance math, which
// is the only place the two forms ever need to be reconciled.
type Location struct {
	hole int
}

// Clubhouse returns the depot location.
func Clubhouse() Location {
	return Location{hole: 0}
}

// Hole returns the location of the given hole number.
func Hole(n int) Location {
	return Location{hole: n}
}

func (l Location) IsClubhouse() bool { return l.hole == 0 }

// HoleNumber reports the course position, 0 for the clubhouse.
func (l Location) HoleNumber() int { return l.hole }

// DistanceTo is the hole-count distance between two positions.
func (l Location) DistanceTo(other Location) int {
	d := l.hole - other.hole
	if d < 0 {
		return -d
	}
	return d
}

func (l Location) String() string {
	if l.IsClubhouse() {
		return ClubhouseName
	}
	return strconv.Itoa(l.hole)
}

// ParseLocation accepts the legacy wire forms: the string "clubhouse", a
// numeric string, or a bare integer. Hole numbers outside 1..maxHole are
// rejected at this boundary so the core never sees them.
func ParseLocation(v interface{}, maxHole int) (Location, error) {
	switch t := v.(type) {
	case string:
		if strings.EqualFold(t, ClubhouseName) {
			return Clubhouse(), nil
		}
		n, err := strconv.Atoi(t)
		if err != nil {
			return Location{}, fmt.Errorf("invalid location %q", t)
		}
		return ParseLocation(n, maxHole)
	case int:
		if t == 0 {
			return Clubhouse(), nil
		}
		if t < 1 || t > maxHole {
			return Location{}, fmt.Errorf("hole number %d out of course range 1..%d", t, maxHole)
		}
		return Hole(t), nil
	case float64:
		if t != math.Trunc(t) {
			return Location{}, fmt.Errorf("invalid location %v", t)
		}
		return ParseLocation(int(t), maxHole)
	default:
		return Location{}, fmt.Errorf("unsupported location type %T", v)
	}
}

// MarshalJSON keeps the legacy encoding: "clubhouse" or the hole number.
func (l Location) MarshalJSON() ([]byte, error) {
	if l.IsClubhouse() {
		return json.Marshal(ClubhouseName)
	}
	return json.Marshal(l.hole)
}

func (l *Location) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	loc, err := ParseLocation(raw, MaxCourseHoles)
	if err != nil {
		return err
	}
	*l = loc
	return nil
}
