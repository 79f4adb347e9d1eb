package cmd

import (
	"fmt"
	"io"
	"os"
)

// Status marks used at the start of every report line.
const (
	markOK   = "✓"
	markErr  = "✗"
	markWarn = "⚠"
	markSkip = "○"
	markMiss = "-"
	markInfo = "~"
)

// Report lines go to these writers; tests swap them.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// statusLine writes "  <mark>  msg", or "  <mark>  [subject] msg" when subject
// names an icon, a set or a config key.
func statusLine(w io.Writer, mark, subject, msg string) {
	if subject != "" {
		msg = "[" + subject + "] " + msg
	}
	fmt.Fprintf(w, "  %s  %s\n", mark, msg)
}

func printSection(title string) { fmt.Fprintf(stdout, "\n=== %s ===\n", title) }

func printOK(subject, msg string)   { statusLine(stdout, markOK, subject, msg) }
func printErr(subject, msg string)  { statusLine(stderr, markErr, subject, msg) }
func printWarn(subject, msg string) { statusLine(stdout, markWarn, subject, msg) }
func printSkip(subject, msg string) { statusLine(stdout, markSkip, subject, msg) }
func printMiss(subject, msg string) { statusLine(stdout, markMiss, subject, msg) }
func printInfo(subject, msg string) { statusLine(stdout, markInfo, subject, msg) }
