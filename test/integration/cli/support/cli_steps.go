package support

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/atlasocr/wasl/cmd/wasl/cmd"
	"github.com/atlasocr/wasl/internal/testutil"
)

// resetCommandFlags restores every flag in the command tree to its default.
// The cobra commands are package-level singletons, so values and Changed
// markers from one scenario would otherwise leak into the next.
func resetCommandFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCommandFlags(sub)
	}
}

// theBundledTemplatesAreAvailable resolves the checked-in template file for
// use as {templates} in command lines.
func (testCtx *TestContext) theBundledTemplatesAreAvailable() error {
	path, err := testutil.BundledTemplates()
	if err != nil {
		return fmt.Errorf("failed to locate bundled templates: %w", err)
	}
	testCtx.TemplatesPath = path
	return nil
}

// aRenderedPageImageExists writes a small rendered page into the scenario
// temp directory for use as {page} in command lines.
func (testCtx *TestContext) aRenderedPageImageExists() error {
	cfg := testutil.DefaultDocumentConfig()
	cfg.Size = testutil.PageSize{Width: 320, Height: 240}
	img := testutil.RenderDocument(cfg)

	path := testCtx.GetTempFile(".png")
	f, err := os.Create(path) //nolint:gosec // G304: scenario-scoped path
	if err != nil {
		return fmt.Errorf("failed to create page image: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode page image: %w", err)
	}
	testCtx.PagePath = path
	return nil
}

// substituteCommandVariables fills the placeholders set up by Given steps.
func (testCtx *TestContext) substituteCommandVariables(command string) string {
	if testCtx.TemplatesPath != "" {
		command = strings.ReplaceAll(command, "{templates}", testCtx.TemplatesPath)
	}
	if testCtx.PagePath != "" {
		command = strings.ReplaceAll(command, "{page}", testCtx.PagePath)
	}
	return command
}

// iRunCommand executes a wasl command line in process against the shared
// root command and records the outcome.
func (testCtx *TestContext) iRunCommand(command string) error {
	command = testCtx.substituteCommandVariables(command)

	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}
	if parts[0] != "wasl" {
		return fmt.Errorf("unsupported command: %s", parts[0])
	}

	root := cmd.GetRootCommand()
	resetCommandFlags(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(parts[1:])

	err := root.Execute()

	root.SetOut(nil)
	root.SetErr(nil)

	testCtx.LastOutput = out.String()
	testCtx.LastError = err
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)
	if err != nil {
		testCtx.LastExitCode = 1
	} else {
		testCtx.LastExitCode = 0
	}
	return nil
}

// theCommandShouldSucceed verifies the command succeeded.
func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d: %w\nOutput: %s",
			testCtx.LastExitCode, testCtx.LastError, testCtx.LastOutput)
	}
	return nil
}

// theCommandShouldFail verifies the command failed.
func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

// theCommandMightFail accepts either outcome. Used where the result depends
// on whether a Tesseract installation is present.
func (testCtx *TestContext) theCommandMightFail() error {
	return nil
}

// theOutputShouldContain verifies the output contains specific text.
func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.LastOutput, expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.LastOutput)
	}
	return nil
}

// theErrorShouldMention verifies the failure mentions specific text, checking
// both the captured output and the returned error.
func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	if testCtx.LastError == nil && testCtx.LastExitCode == 0 {
		return fmt.Errorf("no error occurred, but expected error containing '%s'", errorText)
	}

	fullErrorText := testCtx.LastOutput
	if testCtx.LastError != nil {
		fullErrorText += " " + testCtx.LastError.Error()
	}

	if !strings.Contains(strings.ToLower(fullErrorText), strings.ToLower(errorText)) {
		return fmt.Errorf("error does not mention '%s'\nActual error: %s", errorText, fullErrorText)
	}
	return nil
}

// RegisterCLISteps registers command execution and verification steps.
func (testCtx *TestContext) RegisterCLISteps(sc *godog.ScenarioContext) {
	sc.Step(`^the bundled templates are available$`, testCtx.theBundledTemplatesAreAvailable)
	sc.Step(`^a rendered page image exists$`, testCtx.aRenderedPageImageExists)
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the command might fail$`, testCtx.theCommandMightFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
}
