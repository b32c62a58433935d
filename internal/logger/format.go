package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ModuleFieldName is the field carrying the component a log entry belongs to.
const ModuleFieldName = "module"

// defaultModule is printed when an entry was not tagged with ForModule.
const defaultModule = "App"

// NewConsoleWriter builds the human-readable formatter:
//
//	2026-01-02 15:04:05 ERR [NoteService] note.go:42 > message key=value
//
// The module prefix and the short call site replace the plain field output.
func NewConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: TimeFormat,
		NoColor:    out != os.Stdout,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			ModuleFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		},
		FieldsExclude: []string{ModuleFieldName, "service", "environment"},
		FormatPrepare: func(evt map[string]interface{}) error {
			evt[ModuleFieldName] = FormatModule(evt[ModuleFieldName])
			return nil
		},
		FormatFieldValue: func(i interface{}) string {
			// Non-string values are rendered as JSON.
			if s, ok := i.(string); ok {
				return s
			}
			b, err := json.Marshal(i)
			if err != nil {
				return fmt.Sprintf("%v", i)
			}
			return string(b)
		},
		FormatCaller: func(i interface{}) string {
			caller, ok := i.(string)
			if !ok || caller == "" {
				return ""
			}
			return filepath.Base(caller)
		},
	}
}

// FormatModule renders the module part of a console line.
func FormatModule(i interface{}) string {
	module, ok := i.(string)
	if !ok || strings.TrimSpace(module) == "" {
		module = defaultModule
	}
	return "[" + module + "]"
}

// ForModule returns a child logger tagged with the component name.
// Entries logged through it carry the module field and their call site.
func ForModule(logger *zerolog.Logger, module string) *zerolog.Logger {
	l := logger.With().Str(ModuleFieldName, module).Caller().Logger()
	return &l
}
