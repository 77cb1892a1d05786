package program

import "testing"

func TestAccessible(t *testing.T) {
	tests := []struct {
		name          string
		item, current Position
		want          bool
	}{
		{"before current", Position{1, 1}, Position{2, 3}, true},
		{"current day is accessible", Position{2, 3}, Position{2, 3}, true},
		{"next day is locked", Position{2, 4}, Position{2, 3}, false},
		{"later week is locked", Position{3, 1}, Position{2, 7}, false},
		{"earlier week, later day", Position{1, 7}, Position{2, 1}, true},
		{"everything open at the end", Position{5, 7}, Position{5, 7}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accessible(tt.item, tt.current); got != tt.want {
				t.Errorf("Accessible(%v, %v) = %v; want %v", tt.item, tt.current, got, tt.want)
			}
		})
	}
}

func TestAccessibleTo(t *testing.T) {
	item := Position{1, 1}
	if AccessibleTo(item, nil) {
		t.Error("AccessibleTo() with nil position should lock everything")
	}
	if AccessibleTo(item, &Position{Week: 0, Day: 9}) {
		t.Error("AccessibleTo() with malformed position should lock everything")
	}
	if !AccessibleTo(item, &Position{Week: 1, Day: 1}) {
		t.Error("AccessibleTo() with valid position should gate normally")
	}
}
