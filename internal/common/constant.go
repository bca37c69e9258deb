package common

// AccessTokenCookieName is the cookie the Basis server sets on a successful
// login; its value authenticates every subsequent API call.
const AccessTokenCookieName = "access_token"

// Recognized export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ValidFormat reports whether f is one of the recognized export formats.
func ValidFormat(f string) bool {
	return f == FormatCSV || f == FormatJSON
}
