// Package secretservice is a minimal client for the freedesktop.org
// Secret Service API (org.freedesktop.secrets) over the D-Bus session
// bus, as implemented by GNOME Keyring, KWallet and compatible daemons.
//
// It covers exactly what a credential store needs: a plain-algorithm
// session, attribute searches, item creation with replace, secret
// retrieval, deletion, and unlock prompts. Calls block until the daemon
// responds; if the daemon raises an interactive unlock prompt, they
// block until the user completes or dismisses it.
package secretservice

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	busName  = "org.freedesktop.secrets"
	busPath  = "/org/freedesktop/secrets"
	busIface = "org.freedesktop.Secret.Service"

	collectionIface = "org.freedesktop.Secret.Collection"
	itemIface       = "org.freedesktop.Secret.Item"
	promptIface     = "org.freedesktop.Secret.Prompt"

	// The daemon's default collection, whatever its real path.
	defaultCollection = "/org/freedesktop/secrets/aliases/default"

	// Returned in place of a prompt path when no prompt is needed.
	noPrompt = dbus.ObjectPath("/")
)

const (
	// libsecret tags generic items with this schema attribute; carrying
	// it keeps items visible to libsecret-based tools and vice versa.
	schemaAttr    = "xdg:schema"
	genericSchema = "org.freedesktop.Secret.Generic"
)

// ErrPromptDismissed is returned when the user dismisses an unlock
// prompt instead of completing it.
var ErrPromptDismissed = errors.New("secret service: prompt dismissed")

// Secret is the wire representation of a secret value
// (the org.freedesktop.Secret.Service Secret struct).
type Secret struct {
	Session     dbus.ObjectPath
	Parameters  []byte
	Value       []byte
	ContentType string
}

// Client is one connection to the Secret Service daemon with an open
// plain-transfer session. It is scoped to a single store operation:
// Dial, use, Close.
type Client struct {
	conn    *dbus.Conn
	svc     dbus.BusObject
	session dbus.ObjectPath
}

// Dial connects to the session bus and opens a Secret Service session.
// The connection is private so Close tears it down without affecting
// any shared bus connection the process may hold.
func Dial() (*Client, error) {
	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		return nil, fmt.Errorf("secret service: connecting to session bus: %w", err)
	}
	if err := conn.Auth(nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("secret service: bus auth: %w", err)
	}
	if err := conn.Hello(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("secret service: bus hello: %w", err)
	}

	c := &Client{conn: conn, svc: conn.Object(busName, busPath)}

	var discard dbus.Variant
	var session dbus.ObjectPath
	err = c.svc.Call(busIface+".OpenSession", 0, "plain", dbus.MakeVariant("")).Store(&discard, &session)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("secret service: opening session: %w", err)
	}
	c.session = session

	return c, nil
}

// Close releases the bus connection and with it the session.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ItemAttributes builds the attribute set stored on an item keyed by
// (service, account).
func ItemAttributes(service, account string) map[string]string {
	return map[string]string{
		"service":  service,
		"account":  account,
		schemaAttr: genericSchema,
	}
}

// ServiceAttributes builds the attribute set matching every item under
// a service, regardless of account.
func ServiceAttributes(service string) map[string]string {
	return map[string]string{
		"service":  service,
		schemaAttr: genericSchema,
	}
}

// Search returns the paths of all items whose attributes exactly match
// attrs, unlocking any locked matches first. The daemon's result order
// is preserved (unlocked matches first).
func (c *Client) Search(attrs map[string]string) ([]dbus.ObjectPath, error) {
	var unlocked, locked []dbus.ObjectPath
	if err := c.svc.Call(busIface+".SearchItems", 0, attrs).Store(&unlocked, &locked); err != nil {
		return nil, fmt.Errorf("secret service: search: %w", err)
	}
	if len(locked) > 0 {
		freed, err := c.Unlock(locked)
		if err != nil {
			return nil, err
		}
		unlocked = append(unlocked, freed...)
	}
	return unlocked, nil
}

// Unlock unlocks the given objects, walking the daemon's prompt flow
// when one is required.
func (c *Client) Unlock(objects []dbus.ObjectPath) ([]dbus.ObjectPath, error) {
	var unlocked []dbus.ObjectPath
	var prompt dbus.ObjectPath
	if err := c.svc.Call(busIface+".Unlock", 0, objects).Store(&unlocked, &prompt); err != nil {
		return nil, fmt.Errorf("secret service: unlock: %w", err)
	}
	if prompt == noPrompt {
		return unlocked, nil
	}
	result, err := c.prompt(prompt)
	if err != nil {
		return nil, err
	}
	if paths, ok := result.Value().([]dbus.ObjectPath); ok {
		unlocked = append(unlocked, paths...)
	}
	return unlocked, nil
}

// CreateItem stores value in the default collection under the given
// label and attributes. With replace set, an existing item with the
// same attributes is updated in place rather than duplicated.
func (c *Client) CreateItem(label string, attrs map[string]string, value []byte, replace bool) error {
	if _, err := c.Unlock([]dbus.ObjectPath{defaultCollection}); err != nil {
		return err
	}

	props := map[string]dbus.Variant{
		itemIface + ".Label":      dbus.MakeVariant(label),
		itemIface + ".Attributes": dbus.MakeVariant(attrs),
	}
	sec := Secret{
		Session:     c.session,
		Value:       value,
		ContentType: "text/plain; charset=utf8",
	}

	var item, prompt dbus.ObjectPath
	coll := c.conn.Object(busName, defaultCollection)
	if err := coll.Call(collectionIface+".CreateItem", 0, props, sec, replace).Store(&item, &prompt); err != nil {
		return fmt.Errorf("secret service: create item: %w", err)
	}
	if prompt != noPrompt {
		if _, err := c.prompt(prompt); err != nil {
			return err
		}
	}
	return nil
}

// GetSecret returns the secret value of the item at path.
func (c *Client) GetSecret(item dbus.ObjectPath) ([]byte, error) {
	var sec Secret
	if err := c.conn.Object(busName, item).Call(itemIface+".GetSecret", 0, c.session).Store(&sec); err != nil {
		return nil, fmt.Errorf("secret service: get secret: %w", err)
	}
	return sec.Value, nil
}

// GetAttributes returns the attribute set of the item at path.
func (c *Client) GetAttributes(item dbus.ObjectPath) (map[string]string, error) {
	v, err := c.conn.Object(busName, item).GetProperty(itemIface + ".Attributes")
	if err != nil {
		return nil, fmt.Errorf("secret service: read attributes: %w", err)
	}
	attrs, ok := v.Value().(map[string]string)
	if !ok {
		return nil, fmt.Errorf("secret service: unexpected attributes type %T", v.Value())
	}
	return attrs, nil
}

// DeleteItem removes the item at path, walking the prompt flow when the
// daemon requires confirmation.
func (c *Client) DeleteItem(item dbus.ObjectPath) error {
	var prompt dbus.ObjectPath
	if err := c.conn.Object(busName, item).Call(itemIface+".Delete", 0).Store(&prompt); err != nil {
		return fmt.Errorf("secret service: delete item: %w", err)
	}
	if prompt != noPrompt {
		if _, err := c.prompt(prompt); err != nil {
			return err
		}
	}
	return nil
}

// prompt runs the daemon's prompt at path and blocks until the user
// completes or dismisses it, returning the prompt's result variant.
func (c *Client) prompt(path dbus.ObjectPath) (dbus.Variant, error) {
	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(promptIface),
		dbus.WithMatchMember("Completed"),
	}
	if err := c.conn.AddMatchSignal(match...); err != nil {
		return dbus.Variant{}, fmt.Errorf("secret service: subscribing to prompt: %w", err)
	}
	defer c.conn.RemoveMatchSignal(match...)

	signals := make(chan *dbus.Signal, 1)
	c.conn.Signal(signals)
	defer c.conn.RemoveSignal(signals)

	if call := c.conn.Object(busName, path).Call(promptIface+".Prompt", 0, ""); call.Err != nil {
		return dbus.Variant{}, fmt.Errorf("secret service: prompting: %w", call.Err)
	}

	for sig := range signals {
		if sig.Path != path || sig.Name != promptIface+".Completed" || len(sig.Body) < 2 {
			continue
		}
		if dismissed, _ := sig.Body[0].(bool); dismissed {
			return dbus.Variant{}, ErrPromptDismissed
		}
		result, _ := sig.Body[1].(dbus.Variant)
		return result, nil
	}
	return dbus.Variant{}, errors.New("secret service: connection closed while prompting")
}
