//go:build windows

package credstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danieljoos/wincred"
	"golang.org/x/sys/windows"
)

// SystemStore provides credential storage backed by the Windows
// Credential Manager.
//
// Entries are generic credentials with target name "service/account",
// persisted at enterprise scope so they roam with the user profile
// where the domain allows it.
type SystemStore struct{}

// NewSystemStore creates a new Credential Manager backed store.
func NewSystemStore() *SystemStore {
	return &SystemStore{}
}

// targetName builds the credential target for a (service, account) pair.
func targetName(service, account string) string {
	return service + "/" + account
}

// accountFromTarget extracts the account from a credential target
// stored under service. The account may itself contain slashes, so only
// the service prefix is stripped.
func accountFromTarget(target, service string) (string, bool) {
	return strings.CutPrefix(target, service+"/")
}

// Set stores a secret in the Credential Manager. CredWrite replaces an
// existing credential with the same target, so this is natively an
// upsert.
func (s *SystemStore) Set(service, account, secret string) error {
	cred := wincred.NewGenericCredential(targetName(service, account))
	cred.UserName = account
	cred.CredentialBlob = []byte(secret)
	cred.Persist = wincred.PersistEnterprise

	if err := cred.Write(); err != nil {
		return fmt.Errorf("credential write %s/%s: %s", service, account, errnoMessage(err))
	}
	return nil
}

// Get retrieves the secret stored under exactly (service, account).
func (s *SystemStore) Get(service, account string) (string, error) {
	cred, err := wincred.GetGenericCredential(targetName(service, account))
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%w: %s/%s", ErrNotFound, service, account)
		}
		return "", fmt.Errorf("credential read %s/%s: %s", service, account, errnoMessage(err))
	}
	return string(cred.CredentialBlob), nil
}

// Delete removes the entry stored under exactly (service, account).
func (s *SystemStore) Delete(service, account string) error {
	cred := wincred.NewGenericCredential(targetName(service, account))
	if err := cred.Delete(); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, service, account)
		}
		return fmt.Errorf("credential delete %s/%s: %s", service, account, errnoMessage(err))
	}
	return nil
}

// FindPassword returns the secret of the first credential whose target
// matches "service/*". Enumeration order is whatever CredEnumerate
// returns and is unspecified.
func (s *SystemStore) FindPassword(service string) (string, error) {
	creds, err := wincred.FilteredList(service + "/*")
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, service)
		}
		return "", fmt.Errorf("credential find %s: %s", service, errnoMessage(err))
	}
	if len(creds) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, service)
	}
	return string(creds[0].CredentialBlob), nil
}

// FindCredentials returns every credential whose target matches
// "service/*", in CredEnumerate order.
func (s *SystemStore) FindCredentials(service string) ([]Credential, error) {
	creds, err := wincred.FilteredList(service + "/*")
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, service)
		}
		return nil, fmt.Errorf("credential enumerate %s: %s", service, errnoMessage(err))
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, service)
	}

	out := make([]Credential, 0, len(creds))
	for _, c := range creds {
		account, ok := accountFromTarget(c.TargetName, service)
		if !ok {
			account = c.UserName
		}
		out = append(out, Credential{Account: account, Secret: string(c.CredentialBlob)})
	}
	return out, nil
}

// isNotFound reports whether err is the Credential Manager's "no such
// credential" status. CredEnumerate also reports an empty result set
// this way.
func isNotFound(err error) bool {
	return errors.Is(err, windows.ERROR_NOT_FOUND)
}

// errnoMessage renders a Credential Manager status as a human-readable
// diagnostic. Errno values format themselves through FormatMessage; an
// error without a message falls back to a generic one.
func errnoMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "an unknown error occurred"
	}
	return err.Error()
}
