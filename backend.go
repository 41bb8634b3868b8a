package main

import (
	"os"
	"os/exec"
	"strings"

	"github.com/cedar-lang/cedarc/diag"
	"github.com/ztrue/tracerr"
)

// Backend drives the external toolchain: opt to optimize the emitted IR
// and clang to produce a native binary. Each stage runs synchronously
// and gates the next on its exit status and on a non-empty output file.
type Backend struct {
	diag *diag.Context

	// Verbose disables output suppression on the first run. When false,
	// a failed command is re-run with its output surfaced so the
	// failure can be diagnosed.
	Verbose bool
}

func NewBackend(dc *diag.Context) *Backend {
	return &Backend{diag: dc}
}

var requiredTools = []string{"opt", "clang"}

// CheckTools verifies the external toolchain is on PATH.
func (b *Backend) CheckTools() error {
	for _, tool := range requiredTools {
		if _, err := exec.LookPath(tool); err != nil {
			b.diag.Errorf("Required utility %q not found. Please install it.", tool)
			return tracerr.Wrap(err)
		}
	}
	return nil
}

// Run takes the IR at <outputBase>.ll through optimization and native
// compilation, leaving the binary at <outputBase>.
func (b *Backend) Run(outputBase string, library bool) error {
	llFile := outputBase + ".ll"
	if !artifactExists(llFile) {
		b.diag.Errorf("IR code not found")
		return tracerr.New("missing IR file: " + llFile)
	}

	optFile, err := b.Optimize(llFile, outputBase+"-opt.ll")
	if err != nil {
		return err
	}

	if _, err := b.Compile(optFile, outputBase, library); err != nil {
		return err
	}
	return nil
}

// Optimize runs opt over the IR file and returns the optimized path.
func (b *Backend) Optimize(llFile, optFile string) (string, error) {
	b.diag.Infof("Optimizing code...")

	if err := b.execute("opt", llFile, "-O3", "-S", "-o", optFile); err != nil {
		b.diag.Errorf("Code optimization failed")
		return "", err
	}

	if !artifactExists(optFile) {
		b.diag.Errorf("Optimized IR code not created")
		return "", tracerr.New("empty or missing artifact: " + optFile)
	}
	return optFile, nil
}

// Compile turns optimized IR into a native artifact and returns its
// path.
func (b *Backend) Compile(optFile, binFile string, library bool) (string, error) {
	b.diag.Infof("Compiling optimized code...")

	args := []string{"-O3", optFile, "-o", binFile}
	if library {
		args = append(args, "-shared", "-fPIC")
	}

	if err := b.execute("clang", args...); err != nil {
		b.diag.Errorf("Binary compilation failed")
		return "", err
	}

	if !artifactExists(binFile) {
		b.diag.Errorf("Binary file %q not created", binFile)
		return "", tracerr.New("empty or missing artifact: " + binFile)
	}
	return binFile, nil
}

// execute runs the command quietly; on failure it prints the command
// line and replays it with output attached.
func (b *Backend) execute(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if b.Verbose {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if !b.Verbose {
		b.diag.Infof("Command: %s %s", name, strings.Join(args, " "))
		rerun := exec.Command(name, args...)
		rerun.Stdout = os.Stdout
		rerun.Stderr = os.Stderr
		rerun.Run()
	}
	return tracerr.Wrap(err)
}

// Cleanup removes the IR intermediates left next to the binary.
func (b *Backend) Cleanup(outputBase string) {
	for _, path := range []string{outputBase + ".ll", outputBase + "-opt.ll"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			b.diag.Warnf("Could not remove file %q", path)
			continue
		}
		b.diag.Debugf("Removed temp file: %s", path)
	}
}

func artifactExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

const forbiddenNameChars = `/\:*?"<>|`

func isValidOutputName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, forbiddenNameChars)
}
