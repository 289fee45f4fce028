package domain

import "time"

// Window is a named, fixed-length lookback interval applied relative to
// an entity's reference date. A window of w days at reference date r
// covers (r-w, r]: open on the left, closed on the right. The boundary
// convention is applied uniformly across streams and operators.
type Window struct {
	Name string
	Days int
}

// Contains reports whether eventDate falls inside the window anchored
// at referenceDate. A record dated exactly referenceDate-Days is
// excluded; a record dated exactly referenceDate is included.
func (w Window) Contains(eventDate, referenceDate time.Time) bool {
	if eventDate.After(referenceDate) {
		return false
	}
	start := referenceDate.AddDate(0, 0, -w.Days)
	return eventDate.After(start)
}
