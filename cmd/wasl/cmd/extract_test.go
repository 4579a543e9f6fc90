package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasocr/wasl/internal/config"
	"github.com/atlasocr/wasl/internal/testutil"
)

func TestExtractCommand(t *testing.T) {
	assert.NotNil(t, extractCmd)
	assert.True(t, strings.HasPrefix(extractCmd.Use, "extract"))
	assert.NotEmpty(t, extractCmd.Short)
	assert.NotEmpty(t, extractCmd.Long)
}

func TestExtractCommandFlags(t *testing.T) {
	flags := extractCmd.Flags()

	for _, name := range []string{"template", "format", "output", "overlay"} {
		assert.NotNil(t, flags.Lookup(name), "Expected flag '%s' not found", name)
	}
}

func TestExtractCommandNoArgs(t *testing.T) {
	err := extractCmd.RunE(extractCmd, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestExtractCommandRequiresTemplate(t *testing.T) {
	err := extractCmd.RunE(extractCmd, []string{"page.png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template")
}

func TestExtractCommandRejectsUnknownFormat(t *testing.T) {
	require.NoError(t, extractCmd.Flags().Set("template", "assoc_receipt"))
	require.NoError(t, extractCmd.Flags().Set("format", "xml"))
	t.Cleanup(func() {
		_ = extractCmd.Flags().Set("template", "")
		_ = extractCmd.Flags().Set("format", "text")
	})

	err := extractCmd.RunE(extractCmd, []string{"page.png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestExtractCommandOverlayNeedsSingleImage(t *testing.T) {
	require.NoError(t, extractCmd.Flags().Set("template", "assoc_receipt"))
	require.NoError(t, extractCmd.Flags().Set("overlay", "boxes.png"))
	t.Cleanup(func() {
		_ = extractCmd.Flags().Set("template", "")
		_ = extractCmd.Flags().Set("overlay", "")
	})

	err := extractCmd.RunE(extractCmd, []string{"a.png", "b.png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single input image")
}

func TestExtractCommandMissingTemplatesFile(t *testing.T) {
	require.NoError(t, extractCmd.Flags().Set("template", "assoc_receipt"))
	t.Cleanup(func() {
		_ = extractCmd.Flags().Set("template", "")
	})

	// The default templates path is relative and does not resolve from the
	// test working directory.
	err := extractCmd.RunE(extractCmd, []string{"page.png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load templates")
}

func TestExtractCommandMissingImage(t *testing.T) {
	path, err := testutil.BundledTemplates()
	require.NoError(t, err)

	require.NoError(t, rootCmd.PersistentFlags().Set("templates", path))
	require.NoError(t, extractCmd.Flags().Set("template", "assoc_receipt"))
	t.Cleanup(func() {
		_ = rootCmd.PersistentFlags().Set("templates", config.DefaultTemplatesPath)
		_ = extractCmd.Flags().Set("template", "")
	})

	err = extractCmd.RunE(extractCmd, []string{"/nonexistent/missing.png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load /nonexistent/missing.png")
}

func TestExtractCommandUnsupportedExtension(t *testing.T) {
	path, err := testutil.BundledTemplates()
	require.NoError(t, err)

	require.NoError(t, rootCmd.PersistentFlags().Set("templates", path))
	require.NoError(t, extractCmd.Flags().Set("template", "assoc_receipt"))
	t.Cleanup(func() {
		_ = rootCmd.PersistentFlags().Set("templates", config.DefaultTemplatesPath)
		_ = extractCmd.Flags().Set("template", "")
	})

	err = extractCmd.RunE(extractCmd, []string{"notes.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image format")
}
