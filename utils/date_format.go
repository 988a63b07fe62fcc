package utils

import (
	"strconv"
	"time"
)

var spanishMonths = []string{
	"enero",
	"febrero",
	"marzo",
	"abril",
	"mayo",
	"junio",
	"julio",
	"agosto",
	"septiembre",
	"octubre",
	"noviembre",
	"diciembre",
}

// FormatDate returns the date formatted with Spanish month names, e.g. "3 de mayo de 2024 14:05".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	localTime := t.In(time.Local)
	monthIndex := int(localTime.Month()) - 1
	if monthIndex < 0 || monthIndex >= len(spanishMonths) {
		return localTime.Format("02/01/2006 15:04")
	}

	return strconv.Itoa(localTime.Day()) + " de " + spanishMonths[monthIndex] +
		" de " + strconv.Itoa(localTime.Year()) + " " + localTime.Format("15:04")
}

// FormatDatePtr returns a formatted date for pointer values.
func FormatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}
