// Package identity models the operating identity an edit is declared to run
// under. The tool never switches users - real privilege enforcement belongs
// to the host (sudo, run-as, CI service accounts). We only verify that the
// invoking account matches the identity the change script declared, so the
// audit trail names the right actor.
package identity

import (
	"fmt"
	"os/user"
)

// Identity is an OS-level account name.
type Identity string

// Current returns the identity of the invoking process.
func Current() (Identity, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve current user: %w", err)
	}
	return Identity(u.Username), nil
}

// Matches reports whether the invoking identity satisfies the declared one.
// Pure predicate - no privilege switching, no filesystem access.
func Matches(invoker, declared Identity) bool {
	return declared != "" && invoker == declared
}
