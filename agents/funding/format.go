package funding

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	amountPrinter = message.NewPrinter(language.Vietnamese)
	upperCaser    = cases.Upper(language.Vietnamese)
)

// FormatAmount renders n with "." as thousands separator, e.g. 1000000 as
// "1.000.000".
func FormatAmount(n int64) string {
	return amountPrinter.Sprintf("%d", n)
}

// Upper upper-cases s using Vietnamese casing rules.
func Upper(s string) string {
	return upperCaser.String(s)
}
