package diagnostics

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes reported by the studio.
const (
	DriverFallback = "DRIVER.FALLBACK"
	DriverWrite    = "DRIVER.WRITE"
	LiveInit       = "LIVE.INIT"
	LiveBadMessage = "LIVE.BAD_MESSAGE"
	LiveFrame      = "LIVE.FRAME"
	PlayerPlay     = "PLAYER.PLAY"
	PlayerStop     = "PLAYER.STOP"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops everything.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// Level maps a severity onto a log level.
func (s Severity) Level() zerolog.Level {
	switch s {
	case Warn:
		return zerolog.WarnLevel
	case Err:
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// Log writes d to the global logger.
func Log(d Diagnostic) {
	e := log.WithLevel(d.Severity.Level()).Str("code", d.Code)
	if d.Detail != "" {
		e = e.Str("detail", d.Detail)
	}
	if len(d.Evidence) > 0 {
		e = e.Interface("evidence", d.Evidence)
	}
	e.Msg(d.Summary)
}
