// Package main 提供离线校验动作批次的命令行工具
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dcfassist/internal/action"
	"dcfassist/internal/logging"
)

// errRejected 开启 --fail-on-reject 且存在被拒绝的动作
var errRejected = errors.New("one or more actions were rejected")

type validateFlags struct {
	format       string
	pretty       bool
	failOnReject bool
	lenientRows  bool
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "actioncheck",
		Short:         "Validate spreadsheet edit actions before they reach a workbook",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)

	rootCmd.AddCommand(newValidateCmd(), newRangeCmd())
	return rootCmd
}

func newValidateCmd() *cobra.Command {
	var flags validateFlags

	cmd := &cobra.Command{
		Use:   "validate [actions.json|actions.yaml|-]",
		Short: "Validate a batch of actions and print the outcome",
		Long: `validate reads an array of actions (JSON or YAML) and prints
{"validated": [...], "errors": [...]}. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "", "Input format: json or yaml (default: by file extension)")
	cmd.Flags().BoolVar(&flags.pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().BoolVar(&flags.failOnReject, "fail-on-reject", false, "Exit non-zero when any action is rejected")
	cmd.Flags().BoolVar(&flags.lenientRows, "lenient-rows", false, "Only check the first row width of range payloads")
	return cmd
}

func runValidate(cmd *cobra.Command, path string, flags validateFlags) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	format, err := inputFormat(flags.format, path)
	if err != nil {
		return err
	}
	if format == "yaml" {
		if data, err = yamlToJSON(data); err != nil {
			return err
		}
	}

	validator := action.NewValidator(action.Options{StrictRows: !flags.lenientRows}, logging.Nop())
	outcome, err := validator.ValidateJSON(data)
	if err != nil {
		return err
	}

	var encoded []byte
	if flags.pretty {
		encoded, err = json.MarshalIndent(outcome, "", "  ")
	} else {
		encoded, err = json.Marshal(outcome)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

	if flags.failOnReject && len(outcome.Rejections) > 0 {
		return errRejected
	}
	return nil
}

// inputFormat 显式指定优先，否则按扩展名判断，默认 JSON
func inputFormat(explicit, path string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(explicit)); f {
	case "json", "yaml":
		return f, nil
	case "yml":
		return "yaml", nil
	case "":
	default:
		return "", fmt.Errorf("invalid format: %s (must be json or yaml)", explicit)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "json", nil
	}
}

// yamlToJSON YAML 文档转为 JSON，交给同一个解码器处理
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return out, nil
}

func newRangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "range [A1:C3]...",
		Short: "Print the dimensions of one or more range expressions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed bool
			for _, expr := range args {
				r, err := action.ParseRange(expr)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", expr, err)
					failed = true
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%dx%d\n", r, r.Rows(), r.Cols())
			}
			if failed {
				return errors.New("invalid range expression")
			}
			return nil
		},
	}
}
