// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎨 Format selects how records are written.
type Format string

const (
	FormatText Format = "text" // <timestamp> - <LEVEL> - <message> key=value...
	FormatJSON Format = "json" // one zerolog JSON object per line
)

// timeFormat is the layout of the timestamp part of text records
const timeFormat = "2006-01-02 15:04:05"

// levelNames maps zerolog level values to the names printed in text records
var levelNames = map[string]string{
	zerolog.LevelTraceValue: "TRACE",
	zerolog.LevelDebugValue: "DEBUG",
	zerolog.LevelInfoValue:  "INFO",
	zerolog.LevelWarnValue:  "WARNING",
	zerolog.LevelErrorValue: "ERROR",
	zerolog.LevelFatalValue: "CRITICAL",
	zerolog.LevelPanicValue: "PANIC",
}

// levelColors maps zerolog level values to their console colour
var levelColors = map[string]color.Attribute{
	zerolog.LevelTraceValue: color.FgMagenta,
	zerolog.LevelDebugValue: color.FgBlue,
	zerolog.LevelInfoValue:  color.FgGreen,
	zerolog.LevelWarnValue:  color.FgYellow,
	zerolog.LevelErrorValue: color.FgRed,
	zerolog.LevelFatalValue: color.FgRed,
	zerolog.LevelPanicValue: color.FgRed,
}

// 🔍 ParseFormat parses a log format name. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", errors.Errorf("unknown log format %q", s)
	}
}

// 🏭 New creates a timestamped logger writing to w.
func New(w io.Writer, level zerolog.Level, format Format) zerolog.Logger {
	var out io.Writer = w
	if format != FormatJSON {
		out = NewConsoleWriter(w, NoColor(w))
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// NoColor reports whether records written to w should stay uncoloured: colour
// is only used on terminals, and never when it was disabled globally.
func NoColor(w io.Writer) bool {
	if color.NoColor {
		return true
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return true
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

// 🖥️ NewConsoleWriter returns a writer that renders records as
// "<timestamp> - <LEVEL> - <message>" followed by any fields.
func NewConsoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:     w,
		NoColor: noColor,
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.MessageFieldName,
		},
		FormatTimestamp: formatTimestamp,
		FormatLevel: func(i interface{}) string {
			return formatLevel(i, noColor)
		},
	}
}

func formatTimestamp(i interface{}) string {
	s := fmt.Sprint(i)
	if t, err := time.Parse(zerolog.TimeFieldFormat, s); err == nil {
		s = t.Local().Format(timeFormat)
	}
	return s + " -"
}

func formatLevel(i interface{}, noColor bool) string {
	value, _ := i.(string)
	name, ok := levelNames[value]
	if !ok {
		name = strings.ToUpper(value)
	}
	if !noColor {
		if attr, ok := levelColors[value]; ok {
			name = color.New(attr).Sprint(name)
		}
	}
	return name + " -"
}
