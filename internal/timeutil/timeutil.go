package timeutil

import "time"

var almatyLocation = loadLocation()

func loadLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Almaty")
	if err != nil {
		return time.FixedZone("Asia/Almaty", 5*60*60)
	}
	return loc
}

// Now returns the current time in UTC. All persisted timestamps use it.
func Now() time.Time {
	return time.Now().UTC()
}

// InAlmaty converts provided time to Asia/Almaty timezone.
func InAlmaty(t time.Time) time.Time {
	return t.In(almatyLocation)
}

// Display formats t for user-facing messages in the marketplace timezone.
func Display(t time.Time) string {
	return InAlmaty(t).Format("02.01.2006 15:04")
}
