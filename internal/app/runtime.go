package app

import (
	"os"
	"strings"
)

const testModeEnv = "STOCKBOOK_TEST_MODE"

// InTestMode reports whether STOCKBOOK_TEST_MODE is set to a true value,
// in which case the binary returns before touching the store.
func InTestMode() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(testModeEnv))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
