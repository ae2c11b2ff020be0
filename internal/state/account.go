package state

import "slices"

type (
	// Account describes the caller a plan executes on behalf of
	Account struct {
		ID    string   `json:"id"`
		Name  string   `json:"name,omitempty"`
		Roles []string `json:"roles,omitempty"`
	}

	// AccountManager exposes the account of the current execution
	AccountManager struct {
		account *Account
	}
)

// NewAccountManager creates a manager for the given account, which may be
// nil for anonymous executions
func NewAccountManager(a *Account) *AccountManager {
	return &AccountManager{account: a}
}

// Current returns the account, if the execution is authenticated
func (m *AccountManager) Current() (*Account, bool) {
	if m.account == nil || m.account.ID == "" {
		return nil, false
	}
	return m.account, true
}

// HasRole reports whether the current account holds the role
func (m *AccountManager) HasRole(role string) bool {
	a, ok := m.Current()
	return ok && slices.Contains(a.Roles, role)
}
