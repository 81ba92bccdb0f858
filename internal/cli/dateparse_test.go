package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveDatePassesThroughISOFormat(t *testing.T) {
	assert.Equal(t, "2026-08-01", resolveDate("2026-08-01"))
}

func TestResolveDatePassesThroughEmptyString(t *testing.T) {
	assert.Equal(t, "", resolveDate(""))
}

func TestResolveDateParsesTodayPhrase(t *testing.T) {
	want := time.Now().Format("2006-01-02")
	assert.Equal(t, want, resolveDate("today"))
}

func TestResolveDateParsesYesterdayPhrase(t *testing.T) {
	want := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	assert.Equal(t, want, resolveDate("yesterday"))
}

func TestResolveDateLeavesUnrecognizedPhraseUnchanged(t *testing.T) {
	assert.Equal(t, "not a date", resolveDate("not a date"))
}
