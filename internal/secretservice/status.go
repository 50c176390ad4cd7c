package secretservice

import (
	"errors"

	"github.com/godbus/dbus/v5"
)

// IsNoSuchObject reports whether err is the daemon saying an object
// path no longer exists, which happens when an item is deleted between
// a search and the follow-up call on its path.
func IsNoSuchObject(err error) bool {
	var dbusErr dbus.Error
	if !errors.As(err, &dbusErr) {
		return false
	}
	switch dbusErr.Name {
	case "org.freedesktop.Secret.Error.NoSuchObject",
		"org.freedesktop.DBus.Error.UnknownObject":
		return true
	}
	return false
}

// Diagnostic renders a Secret Service failure as a human-readable
// message. Some daemons raise D-Bus errors with an empty body; those
// get a generic message rather than an empty diagnostic.
func Diagnostic(err error) string {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		if len(dbusErr.Body) > 0 {
			if msg, ok := dbusErr.Body[0].(string); ok && msg != "" {
				return msg
			}
		}
		if dbusErr.Name != "" {
			return dbusErr.Name
		}
		return "an unknown error occurred"
	}
	if err == nil || err.Error() == "" {
		return "an unknown error occurred"
	}
	return err.Error()
}
