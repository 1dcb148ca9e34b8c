// define — command-line front end for versioned scheme definitions.
//
//	define check  [files...]          parse and report diagnostics
//	define fmt    [--write] [files]   canonical formatting
//	define dump   [--format] [file]   parsed AST as JSON or YAML
//	define repl                       interactive scheme checker
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	define "github.com/dcov/cycle-define"
)

const (
	historyFile = ".define_history"
	promptMain  = "==> "
	promptCont  = "... "
)

func main() {
	root := &cobra.Command{
		Use:           "define",
		Short:         "parser and formatter for versioned scheme definitions",
		Version:       define.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(checkCmd(), fmtCmd(), dumpCmd(), replCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// -----------------------------------------------------------------------------
// check
// -----------------------------------------------------------------------------

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [files...]",
		Short: "parse scheme files and report the first diagnostic per file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				src, err := readFile(path)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					failed++
					continue
				}
				if _, err := define.Parse(src); err != nil {
					fmt.Fprintln(os.Stderr, define.WrapErrorWithName(err, path, src))
					failed++
					continue
				}
				fmt.Printf("ok %s\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d file(s) failed", failed)
			}
			return nil
		},
	}
}

// -----------------------------------------------------------------------------
// fmt
// -----------------------------------------------------------------------------

func fmtCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt [files...]",
		Short: "print (or rewrite with --write) files in canonical form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				src, err := readFile(path)
				if err != nil {
					return err
				}
				formatted, err := define.Pretty(src)
				if err != nil {
					return err
				}
				if write {
					if formatted == src {
						continue
					}
					if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
						return err
					}
					fmt.Println(path)
					continue
				}
				fmt.Print(formatted)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite files in place")
	return cmd
}

// -----------------------------------------------------------------------------
// dump
// -----------------------------------------------------------------------------

func dumpCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "print the parsed AST for downstream-generator debugging",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readFile(args[0])
			if err != nil {
				return err
			}
			sch, err := define.Parse(src)
			if err != nil {
				return errors.New(define.WrapErrorWithName(err, args[0], src).Error())
			}
			switch format {
			case "json":
				out, err := json.MarshalIndent(sch, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			case "yaml":
				out, err := yaml.Marshal(sch)
				if err != nil {
					return err
				}
				fmt.Print(string(out))
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "interactively check scheme source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("define %s — scheme checker. Ctrl+D exits.\n", define.Version)

			home, _ := os.UserHomeDir()
			histPath := filepath.Join(home, historyFile)

			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)

			defer func() {
				if f, err := os.Create(histPath); err == nil {
					_, _ = ln.WriteHistory(f)
					_ = f.Close()
				}
			}()

			if f, err := os.Open(histPath); err == nil {
				_, _ = ln.ReadHistory(f)
				_ = f.Close()
			}

			for {
				src, ok := readByParseProbe(ln, promptMain, promptCont)
				if !ok {
					fmt.Println()
					return nil
				}
				if strings.TrimSpace(src) == "" {
					continue
				}

				formatted, err := define.Pretty(src)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					continue
				}
				fmt.Print(formatted)
				ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
			}
		},
	}
}

// readByParseProbe accumulates lines until the scheme parses or fails with
// something other than an empty-input diagnostic. Running out of tokens
// mid-construct means the user is still typing, so keep prompting.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, perr := define.Parse(src)
		if perr == nil {
			return src, true
		}
		if define.IsEmptyInput(perr) {
			continue
		}
		return src, true
	}
}
