package views

import "golang.org/x/text/language"

var shortMonths = map[string][12]string{
	"pt": {"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
	"es": {"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
	"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// monthNames picks abbreviated month names for the locale's base language,
// falling back to English.
func monthNames(tag language.Tag) [12]string {
	base, _ := tag.Base()
	if names, ok := shortMonths[base.String()]; ok {
		return names
	}
	return shortMonths["en"]
}
