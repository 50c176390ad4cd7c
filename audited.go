package credstore

import (
	"errors"
	"log/slog"

	"github.com/benaskins/credstore/internal/audit"
)

// AuditedStore wraps a Store and records every operation to an audit
// log. Outcomes are recorded as-is: an ErrNotFound result is logged
// like any other, since absence is an expected outcome rather than a
// malfunction.
type AuditedStore struct {
	inner Store
	audit *audit.Logger
	actor string
}

// NewAuditedStore wraps an existing store with audit logging. The actor
// string identifies who is calling (for example "cli" or "agent") and
// is recorded on every entry.
func NewAuditedStore(inner Store, auditLog *audit.Logger, actor string) *AuditedStore {
	return &AuditedStore{
		inner: inner,
		audit: auditLog,
		actor: actor,
	}
}

// log writes one audit entry. Audit logging is best-effort: a failure
// to log must not fail the credential operation itself, so write
// errors are reported through slog and otherwise dropped.
func (s *AuditedStore) log(action audit.Action, service, account string, opErr error) {
	entry := audit.Entry{
		Action:  action,
		Service: service,
		Account: account,
		Actor:   s.actor,
	}
	if opErr != nil && !errors.Is(opErr, ErrNotFound) {
		entry.Error = opErr.Error()
	}
	if err := s.audit.Log(entry); err != nil {
		slog.Warn("audit log write failed", "action", string(action), "error", err)
	}
}

func (s *AuditedStore) Set(service, account, secret string) error {
	err := s.inner.Set(service, account, secret)
	s.log(audit.ActionWrite, service, account, err)
	return err
}

func (s *AuditedStore) Get(service, account string) (string, error) {
	val, err := s.inner.Get(service, account)
	s.log(audit.ActionRead, service, account, err)
	return val, err
}

func (s *AuditedStore) Delete(service, account string) error {
	err := s.inner.Delete(service, account)
	s.log(audit.ActionDelete, service, account, err)
	return err
}

func (s *AuditedStore) FindPassword(service string) (string, error) {
	val, err := s.inner.FindPassword(service)
	s.log(audit.ActionFind, service, "", err)
	return val, err
}

func (s *AuditedStore) FindCredentials(service string) ([]Credential, error) {
	creds, err := s.inner.FindCredentials(service)
	s.log(audit.ActionFindAll, service, "", err)
	return creds, err
}
