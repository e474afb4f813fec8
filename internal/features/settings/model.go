// Package settings stores global key-value settings shared by every school:
// the organization-wide notice, alert, and care-project documents that the
// TV displays render alongside per-school content. Like school content
// fields, the key set is a hard allowlist.
package settings

import "encoding/json"

// settingKeys is the allowlist of global settings. Each value is a JSON
// document edited by an admin and consumed read-only by the displays.
var settingKeys = []string{
	"global_notice",
	"global_alert",
	"global_care",
}

// Keys returns the settings allowlist.
func Keys() []string {
	return settingKeys
}

// isKnownKey reports whether a key is on the allowlist.
func isKnownKey(key string) bool {
	for _, k := range settingKeys {
		if k == key {
			return true
		}
	}
	return false
}

// UpdateRequest is the body of an admin settings write.
type UpdateRequest struct {
	Value json.RawMessage `json:"value"`
}
