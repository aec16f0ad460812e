package respond

import "regexp"

var (
	// most specific first
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9\-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9\-_]{10,}`)

	// apikey=..., apiKey=..., api_key=... in logged URLs
	queryKeyPattern = regexp.MustCompile(`(?i)(api_?key=)[^&\s"]+`)

	// Telegram bot tokens appear in API URLs as bot<id>:<secret>
	telegramTokenPattern = regexp.MustCompile(`bot\d+:[A-Za-z0-9_\-]+`)

	dbPasswordPattern = regexp.MustCompile(`://([^:/]+):([^@]+)@`)
)

// SanitizeError returns err's message with credentials masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = queryKeyPattern.ReplaceAllString(msg, "${1}****")
	msg = telegramTokenPattern.ReplaceAllString(msg, "bot****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
