package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/alecthomas/repr"
	"github.com/cedar-lang/cedarc/diag"
	"github.com/cedar-lang/cedarc/reader"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

// maxTokenDump caps the lex command's output on runaway input.
const maxTokenDump = 500

// cedarProject is the optional per-directory project file; its package
// name becomes the default output base.
type cedarProject struct {
	Package string `yaml:"Package"`
}

const projectFile = "cedar.yaml"

func loadProject() cedarProject {
	var project cedarProject

	data, err := ioutil.ReadFile(projectFile)
	if err != nil {
		return project
	}
	yaml.Unmarshal(data, &project)
	return project
}

func readSource(path string, dc *diag.Context) string {
	if path == "" {
		fmt.Println("Enter Cedar code (Ctrl+D to finish):")
		data, _ := ioutil.ReadAll(os.Stdin)
		return string(data)
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		dc.Criticalf("Could not open file: %s", path)
		return ""
	}
	return string(data)
}

func formatToken(token Token) string {
	return fmt.Sprintf("[%3d:%3d] %-20s '%s'", token.Line, token.Column, token.Kind, token.Lexeme)
}

func runLex(dc *diag.Context, source string) error {
	if source == "" {
		dc.Errorf("No source code provided")
		return tracerr.New("empty source")
	}

	lexer := NewLexer(source)
	fmt.Println("\nToken stream:\n----------------------------------------")

	for count := 0; ; count++ {
		token := lexer.ScanToken()
		fmt.Println(formatToken(token))

		if token.Kind == END_OF_FILE {
			return nil
		}
		if token.Kind == ERROR {
			fmt.Fprintf(os.Stderr, "Lexical error: %s\n", token.Lexeme)
		}
		if count > maxTokenDump {
			fmt.Fprintln(os.Stderr, "Token limit exceeded")
			return nil
		}
	}
}

func parseSource(dc *diag.Context, source string) ([]Stmt, error) {
	if source == "" {
		dc.Errorf("No source code provided")
		return nil, tracerr.New("empty source")
	}

	parser := NewParser(NewLexer(source), dc)
	statements := parser.Parse()

	if parser.HadError() {
		dc.Errorf("Parsing failed")
		return statements, tracerr.New("parse errors")
	}
	return statements, nil
}

func main() {
	dc := diag.NewContext()

	app := &cli.App{
		Name:  "cedarc",
		Usage: "compiler for the Cedar language",
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			tracerr.PrintSourceColor(err)
			os.Exit(1)
		},
		Commands: []*cli.Command{
			{
				Name:  "lex",
				Usage: "dump the token stream of a file",
				Action: func(c *cli.Context) error {
					return runLex(dc, readSource(c.Args().First(), dc))
				},
			},
			{
				Name:  "parse",
				Usage: "dump the syntax tree of a file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "raw",
						Usage: "dump the raw node structure instead of the printer output",
					},
				},
				Action: func(c *cli.Context) error {
					statements, err := parseSource(dc, readSource(c.Args().First(), dc))
					if err != nil {
						return err
					}

					if c.Bool("raw") {
						repr.Println(statements)
						return nil
					}
					NewASTPrinter(os.Stdout).Print(statements)
					return nil
				},
			},
			{
				Name:  "build",
				Usage: "compile a file to a native binary",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
					},
					&cli.BoolFlag{
						Name:  "emit-llvm",
						Usage: "write the IR file and stop",
					},
					&cli.BoolFlag{
						Name:  "dump",
						Usage: "print the IR to stdout and stop",
					},
					&cli.BoolFlag{
						Name:  "library",
						Usage: "build a shared library instead of an executable",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "do not suppress backend tool output",
					},
				},
				Action: func(c *cli.Context) error {
					statements, err := parseSource(dc, readSource(c.Args().First(), dc))
					if err != nil {
						return err
					}

					codegen := NewCodeGenerator(dc)
					codegen.Generate(statements)
					if dc.HadErrors() {
						dc.Errorf("Code generation failed")
						return tracerr.New("codegen errors")
					}

					if c.Bool("dump") {
						fmt.Print(codegen.Module().String())
						return nil
					}

					outputBase := c.String("output")
					if outputBase == "" {
						if project := loadProject(); project.Package != "" {
							outputBase = project.Package
						} else {
							outputBase = "a"
						}
					}
					if !isValidOutputName(outputBase) {
						return tracerr.Wrap(&InvalidOutputNameError{Name: outputBase})
					}

					llFile := outputBase + ".ll"
					codegen.WriteToFile(llFile)

					if c.Bool("emit-llvm") {
						dc.Infof("LLVM IR written to %s", llFile)
						return nil
					}

					backend := NewBackend(dc)
					backend.Verbose = c.Bool("verbose")
					if err := backend.CheckTools(); err != nil {
						return err
					}
					if err := backend.Run(outputBase, c.Bool("library")); err != nil {
						dc.Errorf("Compilation failed")
						return err
					}

					backend.Cleanup(outputBase)
					dc.Infof("Compilation successful. Output: %s", outputBase)
					return nil
				},
			},
			{
				Name:  "inspect",
				Usage: "dump the embedded metadata of a built library",
				Action: func(c *cli.Context) error {
					data, err := reader.ReadMeta(c.Args().First())
					if err != nil {
						return tracerr.Wrap(err)
					}

					var meta moduleMeta
					if err := json.Unmarshal([]byte(data), &meta); err != nil {
						return tracerr.Wrap(err)
					}
					repr.Println(meta)
					return nil
				},
			},
			{
				Name:  "check",
				Usage: "verify the external toolchain is installed",
				Action: func(c *cli.Context) error {
					return NewBackend(dc).CheckTools()
				},
			},
		},
	}

	app.Run(os.Args)
}
