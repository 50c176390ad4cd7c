//go:build linux

package credstore

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/benaskins/credstore/internal/secretservice"
)

// SystemStore provides credential storage backed by the freedesktop.org
// Secret Service (GNOME Keyring, KWallet and compatible daemons).
//
// Each operation opens its own session-bus connection and closes it on
// return. If the daemon requires an interactive unlock, the operation
// blocks until the user answers the prompt.
type SystemStore struct{}

// NewSystemStore creates a new Secret Service backed credential store.
func NewSystemStore() *SystemStore {
	return &SystemStore{}
}

// Set stores a secret in the default collection. The replace flag makes
// the daemon update an existing item with the same attributes in place,
// so repeated sets do not accumulate duplicates.
func (s *SystemStore) Set(service, account, secret string) error {
	c, err := secretservice.Dial()
	if err != nil {
		return err
	}
	defer c.Close()

	label := service + "/" + account
	attrs := secretservice.ItemAttributes(service, account)
	if err := c.CreateItem(label, attrs, []byte(secret), true); err != nil {
		return fmt.Errorf("set %s/%s: %s", service, account, secretservice.Diagnostic(err))
	}
	return nil
}

// Get retrieves the secret stored under exactly (service, account).
func (s *SystemStore) Get(service, account string) (string, error) {
	c, err := secretservice.Dial()
	if err != nil {
		return "", err
	}
	defer c.Close()

	items, err := c.Search(secretservice.ItemAttributes(service, account))
	if err != nil {
		return "", fmt.Errorf("get %s/%s: %s", service, account, secretservice.Diagnostic(err))
	}
	if len(items) == 0 {
		return "", fmt.Errorf("%w: %s/%s", ErrNotFound, service, account)
	}

	value, err := c.GetSecret(items[0])
	if err != nil {
		if secretservice.IsNoSuchObject(err) {
			return "", fmt.Errorf("%w: %s/%s", ErrNotFound, service, account)
		}
		return "", fmt.Errorf("get %s/%s: %s", service, account, secretservice.Diagnostic(err))
	}
	return string(value), nil
}

// Delete removes the entry stored under exactly (service, account).
func (s *SystemStore) Delete(service, account string) error {
	c, err := secretservice.Dial()
	if err != nil {
		return err
	}
	defer c.Close()

	items, err := c.Search(secretservice.ItemAttributes(service, account))
	if err != nil {
		return fmt.Errorf("delete %s/%s: %s", service, account, secretservice.Diagnostic(err))
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, service, account)
	}

	if err := c.DeleteItem(items[0]); err != nil {
		if secretservice.IsNoSuchObject(err) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, service, account)
		}
		return fmt.Errorf("delete %s/%s: %s", service, account, secretservice.Diagnostic(err))
	}
	return nil
}

// FindPassword returns the secret of the first item matching service.
// Which item the daemon lists first when several accounts share the
// service is unspecified.
func (s *SystemStore) FindPassword(service string) (string, error) {
	c, err := secretservice.Dial()
	if err != nil {
		return "", err
	}
	defer c.Close()

	items, err := c.Search(secretservice.ServiceAttributes(service))
	if err != nil {
		return "", fmt.Errorf("find %s: %s", service, secretservice.Diagnostic(err))
	}
	if len(items) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, service)
	}

	value, err := c.GetSecret(items[0])
	if err != nil {
		if secretservice.IsNoSuchObject(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, service)
		}
		return "", fmt.Errorf("find %s: %s", service, secretservice.Diagnostic(err))
	}
	return string(value), nil
}

// FindCredentials returns every item matching service, in the daemon's
// enumeration order.
func (s *SystemStore) FindCredentials(service string) ([]Credential, error) {
	c, err := secretservice.Dial()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	items, err := c.Search(secretservice.ServiceAttributes(service))
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %s", service, secretservice.Diagnostic(err))
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, service)
	}

	creds := make([]Credential, 0, len(items))
	for _, item := range items {
		account, value, err := readItem(c, item)
		if err != nil {
			if secretservice.IsNoSuchObject(err) {
				// Deleted between the search and the read.
				continue
			}
			return nil, fmt.Errorf("enumerate %s: %s", service, secretservice.Diagnostic(err))
		}
		creds = append(creds, Credential{Account: account, Secret: string(value)})
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, service)
	}
	return creds, nil
}

func readItem(c *secretservice.Client, item dbus.ObjectPath) (string, []byte, error) {
	attrs, err := c.GetAttributes(item)
	if err != nil {
		return "", nil, err
	}
	value, err := c.GetSecret(item)
	if err != nil {
		return "", nil, err
	}
	return attrs["account"], value, nil
}
