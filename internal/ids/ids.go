package ids

import "github.com/segmentio/ksuid"

func New() string {
	return ksuid.New().String()
}

// Valid reports whether s parses as a ksuid.
func Valid(s string) bool {
	_, err := ksuid.Parse(s)
	return err == nil
}
