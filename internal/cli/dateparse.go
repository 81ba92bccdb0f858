package cli

import (
	"regexp"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

var dateParser = newDateParser()

// resolveDate accepts either an explicit YYYY-MM-DD value or a natural
// phrase like "yesterday" or "next monday" and normalizes both to
// YYYY-MM-DD. A phrase the parser doesn't recognize is returned
// unchanged so downstream validation can reject it with a clear error.
func resolveDate(raw string) string {
	if raw == "" || isoDateRe.MatchString(raw) {
		return raw
	}
	result, err := dateParser.Parse(raw, time.Now())
	if err != nil || result == nil {
		return raw
	}
	return result.Time.Format("2006-01-02")
}
