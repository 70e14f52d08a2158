package session

// Persisted key layout. Values are plain strings.
const (
	KeyToken          = "userToken"
	KeyName           = "userName"
	KeyProfilePicture = "userProfilePicture"
	KeyFirstName      = "userFirstName"
	KeyLastName       = "userLastName"
	KeyEmail          = "userEmail"
	KeyPhone          = "userPhoneNumber"
	KeyUniversity     = "userUniversity"
	KeyPassword       = "userPassword"
)

// Keys lists every key owned by a session, in a stable order.
var Keys = []string{
	KeyToken,
	KeyName,
	KeyProfilePicture,
	KeyFirstName,
	KeyLastName,
	KeyEmail,
	KeyPhone,
	KeyUniversity,
	KeyPassword,
}

// State is the typed view of a client's session keys. A missing key reads as "".
type State struct {
	Token          string
	Name           string
	ProfilePicture string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	University     string
	// Password holds the argon2id hash, never the plaintext.
	Password string
}

// Authenticated reports whether a token is present. Other fields do not matter.
func (s State) Authenticated() bool { return s.Token != "" }

func StateFrom(values map[string]string) State {
	return State{
		Token:          values[KeyToken],
		Name:           values[KeyName],
		ProfilePicture: values[KeyProfilePicture],
		FirstName:      values[KeyFirstName],
		LastName:       values[KeyLastName],
		Email:          values[KeyEmail],
		Phone:          values[KeyPhone],
		University:     values[KeyUniversity],
		Password:       values[KeyPassword],
	}
}

// Values returns the non-empty fields keyed by their storage key.
func (s State) Values() map[string]string {
	all := map[string]string{
		KeyToken:          s.Token,
		KeyName:           s.Name,
		KeyProfilePicture: s.ProfilePicture,
		KeyFirstName:      s.FirstName,
		KeyLastName:       s.LastName,
		KeyEmail:          s.Email,
		KeyPhone:          s.Phone,
		KeyUniversity:     s.University,
		KeyPassword:       s.Password,
	}
	for k, v := range all {
		if v == "" {
			delete(all, k)
		}
	}
	return all
}

func isKey(k string) bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}
