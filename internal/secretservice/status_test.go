package secretservice

import (
	"errors"
	"fmt"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestIsNoSuchObject(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{
			"secret service no-such-object",
			dbus.Error{Name: "org.freedesktop.Secret.Error.NoSuchObject"},
			true,
		},
		{
			"dbus unknown-object",
			dbus.Error{Name: "org.freedesktop.DBus.Error.UnknownObject"},
			true,
		},
		{
			"wrapped",
			fmt.Errorf("get secret: %w", dbus.Error{Name: "org.freedesktop.Secret.Error.NoSuchObject"}),
			true,
		},
		{
			"other dbus error",
			dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown"},
			false,
		},
		{
			"plain error",
			errors.New("boom"),
			false,
		},
		{
			"nil",
			nil,
			false,
		},
	}

	for _, tc := range cases {
		if got := IsNoSuchObject(tc.err); got != tc.want {
			t.Errorf("%s: IsNoSuchObject = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDiagnostic(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			"dbus error with message body",
			dbus.Error{
				Name: "org.freedesktop.DBus.Error.AccessDenied",
				Body: []interface{}{"access denied by policy"},
			},
			"access denied by policy",
		},
		{
			"dbus error empty body falls back to name",
			dbus.Error{Name: "org.freedesktop.DBus.Error.NoReply"},
			"org.freedesktop.DBus.Error.NoReply",
		},
		{
			"dbus error with nothing at all",
			dbus.Error{},
			"an unknown error occurred",
		},
		{
			"plain error",
			errors.New("dial failed"),
			"dial failed",
		},
	}

	for _, tc := range cases {
		if got := Diagnostic(tc.err); got != tc.want {
			t.Errorf("%s: Diagnostic = %q, want %q", tc.name, got, tc.want)
		}
	}
}

// Every diagnostic must be non-empty, whatever the daemon sends back.
func TestDiagnosticNeverEmpty(t *testing.T) {
	errs := []error{
		nil,
		errors.New(""),
		dbus.Error{},
		dbus.Error{Body: []interface{}{""}},
		dbus.Error{Body: []interface{}{42}},
	}
	for i, err := range errs {
		if Diagnostic(err) == "" {
			t.Errorf("case %d: empty diagnostic for %v", i, err)
		}
	}
}

func TestItemAttributes(t *testing.T) {
	attrs := ItemAttributes("myapp", "alice")
	if attrs["service"] != "myapp" || attrs["account"] != "alice" {
		t.Errorf("unexpected attributes: %v", attrs)
	}
	if attrs[schemaAttr] != genericSchema {
		t.Errorf("expected schema attribute %q, got %q", genericSchema, attrs[schemaAttr])
	}
}

func TestServiceAttributesOmitAccount(t *testing.T) {
	attrs := ServiceAttributes("myapp")
	if _, ok := attrs["account"]; ok {
		t.Error("service-only query must not constrain the account")
	}
	if attrs["service"] != "myapp" {
		t.Errorf("unexpected attributes: %v", attrs)
	}
}
