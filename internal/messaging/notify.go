package messaging

import "strings"

// renderNotification fills the {sender} placeholder of a template.
func renderNotification(template, sender string) string {
	return strings.NewReplacer("{sender}", sender).Replace(template)
}
