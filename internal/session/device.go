package session

import "strings"

// hintRule pairs the user-agent tokens to probe for with the label they
// produce. Rules are evaluated top to bottom and the first hit wins, so
// mobile platforms must stay above the browser engines: an Android Chrome
// agent is an "Android Device", not a "Chrome Browser".
type hintRule struct {
	tokens []string
	label  string
}

var hintRules = []hintRule{
	{[]string{"iphone", "ipad", "ipod"}, "iOS Device"},
	{[]string{"android"}, "Android Device"},
	{[]string{"mobile", "phone"}, "Mobile Device"},
	{[]string{"edg"}, "Edge Browser"},
	{[]string{"chrome"}, "Chrome Browser"},
	{[]string{"firefox"}, "Firefox Browser"},
	{[]string{"safari"}, "Safari Browser"},
	{[]string{"windows", "win64", "win32"}, "Windows PC"},
	{[]string{"macintosh", "mac os"}, "Mac Computer"},
	{[]string{"linux"}, "Linux PC"},
}

// Classify derives a coarse device label from a raw, untrusted user-agent
// string. Best-effort display hint only, never a security signal.
func Classify(userAgent string) string {
	if userAgent == "" {
		return "Unknown Device"
	}
	ua := strings.ToLower(userAgent)
	for _, rule := range hintRules {
		for _, token := range rule.tokens {
			if strings.Contains(ua, token) {
				return rule.label
			}
		}
	}
	return "Desktop Browser"
}
