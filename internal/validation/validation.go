package validation

import (
	"fmt"

	"xui-vpn-bot/internal/constants"
)

// ValidateMemberName validates a member label before it becomes a panel
// email. Labels travel inside URIs and API paths, so only a conservative
// character set is allowed.
func ValidateMemberName(name string) error {
	if len(name) < constants.MinUsernameLength || len(name) > constants.MaxUsernameLength {
		return fmt.Errorf("name must be between %d and %d characters",
			constants.MinUsernameLength, constants.MaxUsernameLength)
	}

	for _, r := range name {
		if !isValidNameChar(r) {
			return fmt.Errorf("name can only contain letters, numbers, underscores, dots and hyphens")
		}
	}

	return nil
}

// isValidNameChar checks if a character is valid for member names
func isValidNameChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '.' || r == '-'
}
