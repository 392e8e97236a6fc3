package stdio

import (
	"cmp"
	"os/user"
)

// UserProvider names the local peer. The session's user ID comes from here
// since stdio has no credentials to inspect.
type UserProvider interface {
	CurrentUserID() (string, error)
}

// OSUserProvider reports the login name of the process owner, or its uid
// when the name is unknown.
type OSUserProvider struct{}

func (OSUserProvider) CurrentUserID() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return cmp.Or(u.Username, u.Uid), nil
}

type StaticUserProvider string

func (s StaticUserProvider) CurrentUserID() (string, error) { return string(s), nil }
