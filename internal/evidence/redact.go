package evidence

import (
	"regexp"

	"github.com/aeoscan/aeoscan/internal/model"
)

// Redaction placeholder tokens. None of them contain digits or an "@",
// so no redaction pass can match the output of another; running the
// passes over already-redacted text changes nothing.
const (
	placeholderEmail      = "[REDACTED-EMAIL]"
	placeholderCreditCard = "[REDACTED-CARD]"
	placeholderPhone      = "[REDACTED-PHONE]"
	placeholderAddress    = "[REDACTED-ADDRESS]"
	placeholderToken      = "[REDACTED-TOKEN]"
)

// Redaction pass patterns. Compiled once at package init.
var (
	// emailPattern matches most valid email addresses.
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// creditCardPattern matches 13-19 digit sequences with optional
	// space or dash separators. This pass runs before the phone pass so
	// card numbers are not partially consumed as phone numbers.
	creditCardPattern = regexp.MustCompile(`\b\d(?:[ \-]?\d){12,18}\b`)

	// phonePattern matches international and North American phone
	// formats with common separators.
	phonePattern = regexp.MustCompile(`(?:\+?\d{1,2}[ .\-]?)?\(?\d{3}\)?[ .\-]?\d{3}[ .\-]?\d{4}\b`)

	// addressPattern matches street addresses of the form
	// "123 Example Street" with common street-type suffixes.
	addressPattern = regexp.MustCompile(`\b\d{1,5} (?:[A-Z][a-zA-Z]* ){1,3}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Way|Place|Pl)\.?\b`)

	// tokenPattern matches query parameters whose names suggest secrets
	// or sessions bound to long opaque values. The parameter name is
	// kept; only the value is replaced.
	tokenPattern = regexp.MustCompile(`(?i)\b(token|api_?key|secret|session(?:_?id)?|auth|sid|access_token|refresh_token)=[A-Za-z0-9._\-]{8,}`)
)

// Redact runs all redaction passes over content in a fixed order and
// returns the sanitized text together with per-category match counts.
//
// Replacement is substitution, not deletion; see the package doc for the
// idempotence argument.
func Redact(content string) (string, model.RedactionCounts) {
	var counts model.RedactionCounts

	content = redactPass(content, emailPattern, placeholderEmail, &counts.Emails)
	content = redactPass(content, creditCardPattern, placeholderCreditCard, &counts.CreditCards)
	content = redactPass(content, phonePattern, placeholderPhone, &counts.Phones)
	content = redactPass(content, addressPattern, placeholderAddress, &counts.Addresses)

	// Token values keep their parameter name for debuggability.
	if matches := tokenPattern.FindAllString(content, -1); len(matches) > 0 {
		counts.Tokens = len(matches)
		content = tokenPattern.ReplaceAllString(content, "$1="+placeholderToken)
	}

	counts.Total = counts.Sum()
	return content, counts
}

// redactPass counts and replaces all matches of one pattern.
func redactPass(content string, pattern *regexp.Regexp, placeholder string, count *int) string {
	matches := pattern.FindAllStringIndex(content, -1)
	if len(matches) == 0 {
		return content
	}
	*count = len(matches)
	return pattern.ReplaceAllString(content, placeholder)
}
