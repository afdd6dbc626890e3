package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nicka06/monketer/internal/differ"
	"github.com/nicka06/monketer/internal/generator"
	"github.com/nicka06/monketer/internal/parser"
	"github.com/nicka06/monketer/internal/template"
)

// The engine commands are file-to-file and need no config or storage, so a
// pipeline can parse, edit and render templates without a running server.

var engineOutFile string

var parseCmd = &cobra.Command{
	Use:   "parse <html-file>",
	Short: "Parse email HTML into a template document",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var renderCmd = &cobra.Command{
	Use:   "render <template-file>",
	Short: "Render a template document to email HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var diffCmd = &cobra.Command{
	Use:   "diff <old-file> <new-file>",
	Short: "Diff two template documents",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	for _, cmd := range []*cobra.Command{parseCmd, renderCmd, diffCmd} {
		cmd.Flags().StringVarP(&engineOutFile, "output", "o", "", "Output file (default: stdout)")
	}
	rootCmd.AddCommand(parseCmd, renderCmd, diffCmd)
}

func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func writeOutput(data []byte) error {
	if engineOutFile == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(engineOutFile, data, 0644)
}

func readTemplateFile(path string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	var tpl template.Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("invalid template JSON: %w", err)
	}
	return &tpl, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	var html []byte
	var err error
	if args[0] == "-" {
		html, err = io.ReadAll(os.Stdin)
	} else {
		html, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read HTML: %w", err)
	}

	p := parser.New(cliLogger(), template.NewID)
	tpl, err := p.Parse(string(html))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	out, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}
	out = append(out, '\n')

	return writeOutput(out)
}

func runRender(cmd *cobra.Command, args []string) error {
	tpl, err := readTemplateFile(args[0])
	if err != nil {
		return err
	}
	if err := tpl.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	g := generator.New(cliLogger())
	return writeOutput([]byte(g.Generate(tpl)))
}

func runDiff(cmd *cobra.Command, args []string) error {
	oldTpl, err := readTemplateFile(args[0])
	if err != nil {
		return err
	}
	newTpl, err := readTemplateFile(args[1])
	if err != nil {
		return err
	}

	result, err := differ.Diff(oldTpl, newTpl)
	if err != nil {
		return fmt.Errorf("failed to diff templates: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode diff: %w", err)
	}
	out = append(out, '\n')

	return writeOutput(out)
}
