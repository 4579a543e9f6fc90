package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlasocr/wasl/internal/extract"
	"github.com/atlasocr/wasl/internal/utils"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract IMAGE...",
	Short: "Extract template fields from scanned documents",
	Long: `Extract one or more scanned documents against a declared template.

Each field named by the template is located on the page, recognized with
the script profile the template declares for it, and normalized into its
typed canonical form. Required fields that stay empty or invalid are listed
in the output.

Supported formats: JPEG, PNG, BMP

Examples:
  wasl extract recepisse.png --template assoc_receipt
  wasl extract *.png --template assoc_receipt --format json
  wasl extract scan.jpg --template assoc_receipt --overlay boxes.png`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()

		templateID, _ := cmd.Flags().GetString("template")
		if templateID == "" {
			return errors.New("no template id provided (use --template)")
		}

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

		overlayFile, _ := cmd.Flags().GetString("overlay")
		if overlayFile != "" && len(args) > 1 {
			return errors.New("--overlay requires a single input image")
		}

		eng, err := buildEngine(cfg)
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
			img, err := utils.LoadImage(pth)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", pth, err)
			}
			res, err := eng.ExtractImage(cmd.Context(), img, templateID)
			if err != nil {
				return fmt.Errorf("extraction failed for %s: %w", pth, err)
			}

			if overlayFile != "" {
				if err := writeOverlay(overlayFile, img, res); err != nil {
					return fmt.Errorf("failed to write overlay: %w", err)
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Saved overlay: %s\n", overlayFile); err != nil {
					return err
				}
			}

			rendered, err := renderResult(pth, res, format)
			if err != nil {
				return err
			}
			outputs = append(outputs, rendered)
		}

		return writeOutputs(cmd, outputs, outputFile)
	},
}

// renderResult formats one extraction outcome in the requested format.
func renderResult(path string, res *extract.Result, format string) (string, error) {
	if format == outputFormatJSON {
		obj := struct {
			File   string          `json:"file"`
			Result *extract.Result `json:"result"`
		}{File: path, Result: res}
		b, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(b), nil
	}
	s, err := extract.ToText(res)
	if err != nil {
		return "", fmt.Errorf("format text failed: %w", err)
	}
	return path + ":\n" + s, nil
}

// writeOverlay saves a copy of the page with each field's located region
// outlined: green for fields that validated, red for the rest.
func writeOverlay(path string, img image.Image, res *extract.Result) error {
	dst := utils.ToRGBA(img)
	valid := color.RGBA{G: 170, A: 255}
	invalid := color.RGBA{R: 220, A: 255}
	for _, f := range res.Fields {
		col := invalid
		if f.Valid {
			col = valid
		}
		utils.DrawBox(dst, f.BBox, col, 2)
	}
	return utils.SaveImage(dst, path)
}

// writeOutputs joins the rendered results and sends them to the output file
// or stdout.
func writeOutputs(cmd *cobra.Command, outputs []string, outputFile string) error {
	final := strings.Join(outputs, "\n")
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(final), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", outputFile); err != nil {
			return err
		}
		return nil
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), final); err != nil {
		return fmt.Errorf("failed to write final output: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("template", "t", "", "template id to extract with (required)")
	extractCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	extractCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	extractCmd.Flags().String("overlay", "", "write a copy of the image with located field boxes drawn")
}

// GetExtractCommand returns the extract command for testing purposes.
func GetExtractCommand() *cobra.Command {
	return extractCmd
}
