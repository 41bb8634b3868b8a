// Package diag carries the compiler's diagnostics: leveled logging plus a
// bounded ring of recently evaluated expression contexts that is printed
// as a traceback when a critical diagnostic terminates the run.
package diag

import (
	"fmt"
	"io"
	"os"
)

type Level int

const (
	Note Level = iota
	Debug
	Info
	Warning
	Error
	Critical
)

func (l Level) String() string {
	switch l {
	case Note:
		return "NOTE"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

const (
	reset  = "\x1b[0m"
	bold   = "\x1b[1m"
	red    = "\x1b[31m"
	green  = "\x1b[32m"
	yellow = "\x1b[33m"
	blue   = "\x1b[34m"
	purple = "\x1b[35m"
	cyan   = "\x1b[36m"
)

func (l Level) color() string {
	switch l {
	case Note:
		return green
	case Debug:
		return cyan
	case Info:
		return blue
	case Warning:
		return yellow
	case Error:
		return red
	case Critical:
		return purple
	}
	return ""
}

const (
	// maxStack bounds the expression ring; the oldest entry is dropped
	// once it is full.
	maxStack = 100
	// tracebackLimit is how many of the most recent entries a critical
	// diagnostic prints.
	tracebackLimit = 15
)

type stackEntry struct {
	context string
	expr    string
}

// Context is threaded explicitly through the parser and the code
// generator instead of living in a global.
type Context struct {
	Out  io.Writer
	Err  io.Writer
	Exit func(int)

	stack  []stackEntry
	errors int
}

func NewContext() *Context {
	return &Context{
		Out:  os.Stdout,
		Err:  os.Stderr,
		Exit: os.Exit,
	}
}

// PushExpression records an expression context for the traceback.
func (c *Context) PushExpression(context, expr string) {
	c.stack = append(c.stack, stackEntry{context, expr})
	if len(c.stack) > maxStack {
		c.stack = c.stack[1:]
	}
}

// ErrorCount reports how many ERROR or CRITICAL diagnostics were logged.
func (c *Context) ErrorCount() int {
	return c.errors
}

func (c *Context) HadErrors() bool {
	return c.errors > 0
}

func (c *Context) Log(level Level, format string, args ...interface{}) {
	stream := c.Out
	if level >= Warning {
		stream = c.Err
	}
	if level >= Error {
		c.errors++
	}

	fmt.Fprintf(stream, "%s[CEDARC :: %s%s%-8s%s]%s %s\n",
		bold, bold, level.color(), level.String(), reset, reset,
		fmt.Sprintf(format, args...))

	if level == Critical {
		c.printTraceback()
		c.Exit(1)
	}
}

func (c *Context) Notef(format string, args ...interface{})     { c.Log(Note, format, args...) }
func (c *Context) Debugf(format string, args ...interface{})    { c.Log(Debug, format, args...) }
func (c *Context) Infof(format string, args ...interface{})     { c.Log(Info, format, args...) }
func (c *Context) Warnf(format string, args ...interface{})     { c.Log(Warning, format, args...) }
func (c *Context) Errorf(format string, args ...interface{})    { c.Log(Error, format, args...) }
func (c *Context) Criticalf(format string, args ...interface{}) { c.Log(Critical, format, args...) }

func (c *Context) printTraceback() {
	if len(c.stack) == 0 {
		return
	}

	fmt.Fprintf(c.Err, "%sExpressions traceback:%s\n", bold, reset)

	start := 0
	if len(c.stack) > tracebackLimit {
		start = len(c.stack) - tracebackLimit
	}
	for _, entry := range c.stack[start:] {
		fmt.Fprintf(c.Err, "    %s%-8s%s %s\n", cyan, entry.context, reset, entry.expr)
	}
}
