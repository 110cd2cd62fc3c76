// Package notify holds the template renderer and the delivery sink boundary
// used by the notification handlers.
package notify

import "strings"

// Render replaces every {{key}} placeholder in pattern with the mapped value.
// Keys absent from vars stay as literal placeholders; vars without a matching
// placeholder are ignored. No escaping is applied; the delivery channel owns
// content safety.
func Render(pattern string, vars map[string]string) string {
	for key, value := range vars {
		pattern = strings.ReplaceAll(pattern, "{{"+key+"}}", value)
	}
	return pattern
}
