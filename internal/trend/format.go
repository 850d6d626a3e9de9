package trend

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Korean)

// WithUnit renders a count followed by its unit, grouping thousands
// ("1,234건").
func WithUnit(value int64, unit string) string {
	return printer.Sprintf("%d", value) + unit
}

// Percent renders a percentage with one decimal ("25.0%").
func Percent(value float64) string {
	return printer.Sprintf("%.1f", value) + "%"
}
