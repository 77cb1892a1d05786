package program

import "fmt"

// The program is a fixed 5-week, 7-day-per-week devotional curriculum.
const (
	Weeks            = 5
	DaysPerWeek      = 7
	TotalDevotionals = Weeks * DaysPerWeek
)

var (
	StartPosition = Position{Week: 1, Day: 1}
	FinalPosition = Position{Week: Weeks, Day: DaysPerWeek}
)

// Position identifies a point in the curriculum. Immutable value;
// the zero value is not a valid Position.
type Position struct {
	Week int `json:"week"`
	Day  int `json:"day"`
}

// OutOfRangeError reports a Position or devotional id outside the program
// bounds being fed to a calculator function. It indicates a caller bug.
type OutOfRangeError struct {
	Value interface{}
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("out of program range: %v", e.Value)
}

// IsValidPosition reports whether (week, day) falls within the program.
func IsValidPosition(week, day int) bool {
	return (1 <= week && week <= Weeks) && (1 <= day && day <= DaysPerWeek)
}

func (p Position) IsValid() bool {
	return IsValidPosition(p.Week, p.Day)
}

func (p Position) String() string {
	return fmt.Sprintf("week %d, day %d", p.Week, p.Day)
}

// DevotionalID maps a Position to its devotional id in [1, 35].
func (p Position) DevotionalID() int {
	return (p.Week-1)*DaysPerWeek + p.Day
}

// PositionFromID is the inverse of Position.DevotionalID.
func PositionFromID(id int) (Position, error) {
	if id < 1 || id > TotalDevotionals {
		return Position{}, &OutOfRangeError{Value: id}
	}
	week := (id + DaysPerWeek - 1) / DaysPerWeek
	return Position{Week: week, Day: id - (week-1)*DaysPerWeek}, nil
}

// Next returns the Position following p in program order.
// The final position (5,7) is terminal: advancing from it yields (5,7) again.
func (p Position) Next() Position {
	if p.Day < DaysPerWeek {
		return Position{Week: p.Week, Day: p.Day + 1}
	}
	if p.Week < Weeks {
		return Position{Week: p.Week + 1, Day: 1}
	}
	return FinalPosition
}

// IsFinal reports whether p is the terminal position.
func (p Position) IsFinal() bool {
	return p == FinalPosition
}

// Compare orders positions week first, then day. It returns a negative
// number, zero or a positive number when a is before, at or after b.
func Compare(a, b Position) int {
	if a.Week != b.Week {
		return a.Week - b.Week
	}
	return a.Day - b.Day
}
