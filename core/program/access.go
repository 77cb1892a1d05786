package program

// Content (videos, devotionals) is strictly gated by linear program sequence:
// no skipping ahead, no re-locking behind.

// Accessible reports whether content at `item` is visible to a user whose
// current position is `current`. Gating is inclusive: the current day's
// content is accessible, as is everything before it.
func Accessible(item, current Position) bool {
	return Compare(item, current) <= 0
}

// AccessibleTo is Accessible guarded against a missing or malformed user
// position: nothing is visible in that case.
func AccessibleTo(item Position, current *Position) bool {
	if current == nil || !current.IsValid() {
		return false
	}
	return Accessible(item, *current)
}
