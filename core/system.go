package core

// System is the administrative capability object: privileged operations take
// it explicitly instead of consulting ambient global state.
type System struct {
	Admins  []string
	Version string
}

// IsAdmin check if the user is an admin
func (s *System) IsAdmin(userID string) bool {
	if len(s.Admins) <= 0 {
		return false
	}

	for _, a := range s.Admins {
		if a == userID {
			return true
		}
	}

	return false
}
