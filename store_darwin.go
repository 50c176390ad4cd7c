//go:build darwin

package credstore

import (
	"errors"
	"fmt"

	gokeychain "github.com/keybase/go-keychain"
)

// SystemStore provides credential storage backed by the macOS Keychain.
//
// Entries are generic passwords in the login Keychain, never synced to
// iCloud and only available while the machine is unlocked.
type SystemStore struct{}

// NewSystemStore creates a new Keychain-backed credential store.
func NewSystemStore() *SystemStore {
	return &SystemStore{}
}

// exactMatch builds a query that matches one (service, account) entry.
func exactMatch(service, account string) gokeychain.Item {
	item := gokeychain.NewItem()
	item.SetSecClass(gokeychain.SecClassGenericPassword)
	item.SetService(service)
	item.SetAccount(account)
	return item
}

// Set stores a secret in the Keychain. It first tries to update an
// existing (service, account) entry; only when the Keychain reports
// no such item does it add a fresh one.
func (s *SystemStore) Set(service, account, secret string) error {
	update := gokeychain.NewItem()
	update.SetData([]byte(secret))

	err := gokeychain.UpdateItem(exactMatch(service, account), update)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gokeychain.ErrorItemNotFound) {
		return fmt.Errorf("keychain update %s/%s: %s", service, account, statusMessage(err))
	}

	item := exactMatch(service, account)
	item.SetLabel(service)
	item.SetData([]byte(secret))
	item.SetSynchronizable(gokeychain.SynchronizableNo)
	item.SetAccessible(gokeychain.AccessibleWhenUnlocked)

	if err := gokeychain.AddItem(item); err != nil {
		return fmt.Errorf("keychain add %s/%s: %s", service, account, statusMessage(err))
	}
	return nil
}

// Get retrieves the secret stored under exactly (service, account).
func (s *SystemStore) Get(service, account string) (string, error) {
	query := exactMatch(service, account)
	query.SetMatchLimit(gokeychain.MatchLimitOne)
	query.SetReturnData(true)

	results, err := gokeychain.QueryItem(query)
	if err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return "", fmt.Errorf("%w: %s/%s", ErrNotFound, service, account)
		}
		return "", fmt.Errorf("keychain get %s/%s: %s", service, account, statusMessage(err))
	}
	if len(results) == 0 {
		return "", fmt.Errorf("%w: %s/%s", ErrNotFound, service, account)
	}
	return string(results[0].Data), nil
}

// Delete removes the entry stored under exactly (service, account).
func (s *SystemStore) Delete(service, account string) error {
	err := gokeychain.DeleteItem(exactMatch(service, account))
	if err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, service, account)
		}
		return fmt.Errorf("keychain delete %s/%s: %s", service, account, statusMessage(err))
	}
	return nil
}

// FindPassword returns the secret of the first entry matching service.
// With multiple accounts under one service, which entry the Keychain
// returns is unspecified.
func (s *SystemStore) FindPassword(service string) (string, error) {
	query := gokeychain.NewItem()
	query.SetSecClass(gokeychain.SecClassGenericPassword)
	query.SetService(service)
	query.SetMatchLimit(gokeychain.MatchLimitOne)
	query.SetReturnData(true)

	results, err := gokeychain.QueryItem(query)
	if err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, service)
		}
		return "", fmt.Errorf("keychain find %s: %s", service, statusMessage(err))
	}
	if len(results) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, service)
	}
	return string(results[0].Data), nil
}

// FindCredentials returns every entry matching service, in Keychain
// enumeration order.
//
// The Keychain will not return secret data for a multi-item match, so
// this runs in two steps: enumerate the matching accounts by attribute,
// then fetch each account's data with a single-item query.
func (s *SystemStore) FindCredentials(service string) ([]Credential, error) {
	query := gokeychain.NewItem()
	query.SetSecClass(gokeychain.SecClassGenericPassword)
	query.SetService(service)
	query.SetMatchLimit(gokeychain.MatchLimitAll)
	query.SetReturnAttributes(true)

	results, err := gokeychain.QueryItem(query)
	if err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, service)
		}
		return nil, fmt.Errorf("keychain enumerate %s: %s", service, statusMessage(err))
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, service)
	}

	creds := make([]Credential, 0, len(results))
	for _, r := range results {
		secret, err := s.Get(service, r.Account)
		if errors.Is(err, ErrNotFound) {
			// Deleted between the enumeration and the data fetch.
			continue
		}
		if err != nil {
			return nil, err
		}
		creds = append(creds, Credential{Account: r.Account, Secret: secret})
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, service)
	}
	return creds, nil
}

// statusMessage renders a Keychain status as a human-readable
// diagnostic. go-keychain errors carry the OSStatus description; an
// error with an empty message falls back to a generic one.
func statusMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "an unknown error occurred"
	}
	return err.Error()
}
