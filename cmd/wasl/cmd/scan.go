package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlasocr/wasl/internal/extract"
	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/utils"
)

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan IMAGE...",
	Short: "Recognize documents without a template",
	Long: `Recognize one or more scanned documents in auto-layout mode.

The layout classifier proposes Arabic and French zones on the page, each
script's engine reads its own zones, and the merged tokens are assembled
into reading-order text together with a document-type guess.

Examples:
  wasl scan page.jpg
  wasl scan *.png --format json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()

		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		if format != outputFormatText && format != outputFormatJSON {
			return fmt.Errorf("invalid output format: %s (must be one of: %s)",
				format, strings.Join([]string{outputFormatText, outputFormatJSON}, ", "))
		}

		outputFile := cfg.Output.File
		if cmd.Flags().Changed("output") {
			outputFile, _ = cmd.Flags().GetString("output")
		}

		eng, err := buildScanEngine(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := eng.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Error closing engine: %v\n", err)
			}
		}()

		var outputs []string
		for _, pth := range args {
			if !utils.IsSupportedImage(pth) {
				return fmt.Errorf("unsupported image format: %s", pth)
			}
			res, err := eng.ScanFile(cmd.Context(), pth)
			if err != nil {
				return fmt.Errorf("scan failed for %s: %w", pth, err)
			}

			rendered, err := renderScanResult(pth, res, format)
			if err != nil {
				return err
			}
			outputs = append(outputs, rendered)
		}

		return writeOutputs(cmd, outputs, outputFile)
	},
}

// renderScanResult formats one scan outcome in the requested format.
func renderScanResult(path string, res *extract.ScanResult, format string) (string, error) {
	if format == outputFormatJSON {
		obj := struct {
			File   string              `json:"file"`
			Result *extract.ScanResult `json:"result"`
		}{File: path, Result: res}
		b, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(b), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", path)
	fmt.Fprintf(&b, "  doc type: %s\n", res.DocType)
	for _, lang := range []string{string(ocr.LangArabic), string(ocr.LangFrench)} {
		fmt.Fprintf(&b, "  %-8s %3d tokens, conf=%5.1f\n", lang, len(res.Raw[lang]), res.AvgConf[lang])
	}
	if res.Text != "" {
		b.WriteString(res.Text)
		if !strings.HasSuffix(res.Text, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	scanCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
}

// GetScanCommand returns the scan command for testing purposes.
func GetScanCommand() *cobra.Command {
	return scanCmd
}
