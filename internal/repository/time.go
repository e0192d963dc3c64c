package repository

import "time"

// sortableLayout keeps a fixed-width fraction so that text comparison in
// SQL matches chronological order.
const sortableLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatSortable(t time.Time) string {
	return t.UTC().Format(sortableLayout)
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse(time.RFC3339, raw)
	if err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}
