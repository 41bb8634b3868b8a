package diag

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func testContext() (*Context, *bytes.Buffer, *bytes.Buffer, *int) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	exitCode := -1

	c := NewContext()
	c.Out = out
	c.Err = errOut
	c.Exit = func(code int) { exitCode = code }
	return c, out, errOut, &exitCode
}

func TestLevelRouting(t *testing.T) {
	c, out, errOut, _ := testContext()

	c.Notef("a note")
	c.Debugf("a debug")
	c.Infof("an info")
	c.Warnf("a warning")
	c.Errorf("an error")

	for _, want := range []string{"NOTE", "DEBUG", "INFO"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("stdout is missing %s", want)
		}
	}
	for _, want := range []string{"WARNING", "ERROR"} {
		if !strings.Contains(errOut.String(), want) {
			t.Errorf("stderr is missing %s", want)
		}
		if strings.Contains(out.String(), want) {
			t.Errorf("%s leaked to stdout", want)
		}
	}
}

func TestErrorCounting(t *testing.T) {
	c, _, _, _ := testContext()

	c.Notef("x")
	c.Warnf("x")
	if c.HadErrors() {
		t.Error("notes and warnings must not count as errors")
	}

	c.Errorf("x")
	c.Errorf("x")
	if got := c.ErrorCount(); got != 2 {
		t.Errorf("got %d errors, want 2", got)
	}
}

func TestCriticalExitsWithTraceback(t *testing.T) {
	c, _, errOut, exitCode := testContext()

	c.PushExpression("f", "(a PLUS b)")
	c.Criticalf("cannot continue")

	if *exitCode != 1 {
		t.Errorf("exit code %d, want 1", *exitCode)
	}
	if !strings.Contains(errOut.String(), "Expressions traceback:") {
		t.Error("traceback header missing")
	}
	if !strings.Contains(errOut.String(), "(a PLUS b)") {
		t.Error("recorded expression missing from traceback")
	}
}

func TestCriticalWithEmptyStackPrintsNoTraceback(t *testing.T) {
	c, _, errOut, exitCode := testContext()

	c.Criticalf("cannot continue")

	if *exitCode != 1 {
		t.Errorf("exit code %d, want 1", *exitCode)
	}
	if strings.Contains(errOut.String(), "Expressions traceback:") {
		t.Error("traceback printed with no recorded expressions")
	}
}

func TestTracebackPrintsMostRecentEntriesOnly(t *testing.T) {
	c, _, errOut, _ := testContext()

	for i := 0; i < tracebackLimit+10; i++ {
		c.PushExpression("f", fmt.Sprintf("expr%d", i))
	}
	c.Criticalf("cannot continue")

	if strings.Contains(errOut.String(), "expr9 ") || strings.Contains(errOut.String(), "expr9\n") {
		t.Error("an entry older than the traceback window was printed")
	}
	last := fmt.Sprintf("expr%d", tracebackLimit+9)
	if !strings.Contains(errOut.String(), last) {
		t.Error("the most recent entry is missing")
	}

	lines := strings.Count(errOut.String(), "\n    ") // indented traceback entries
	if lines > tracebackLimit {
		t.Errorf("printed %d entries, want at most %d", lines, tracebackLimit)
	}
}

func TestRingDropsOldestBeyondCapacity(t *testing.T) {
	c, _, _, _ := testContext()

	for i := 0; i < maxStack+25; i++ {
		c.PushExpression("f", fmt.Sprintf("expr%d", i))
	}

	if got := len(c.stack); got != maxStack {
		t.Errorf("ring holds %d entries, want %d", got, maxStack)
	}
	if c.stack[0].expr != "expr25" {
		t.Errorf("oldest surviving entry is %s, want expr25", c.stack[0].expr)
	}
}
