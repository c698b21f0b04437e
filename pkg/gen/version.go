package gen

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
)

// SettingsVersion is the settings format this build reads.
const SettingsVersion = "1"

var supportedVersion = version.Must(version.NewVersion(SettingsVersion))

// CheckVersion accepts a pack's declared settings version when it equals
// SettingsVersion. "1", "1.0" and "1.0.0" are the same version.
func CheckVersion(declared string) error {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return Malformed("version", "missing")
	}
	v, err := version.NewVersion(declared)
	if err != nil {
		return Malformed("version", "%v", err)
	}
	if !v.Equal(supportedVersion) {
		return fmt.Errorf("%w: pack declares %s, supported %s", ErrIncompatibleVersion, declared, SettingsVersion)
	}
	return nil
}
