package tesseract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasocr/wasl/internal/ocr"
	"github.com/atlasocr/wasl/internal/utils"
)

func TestParseTSV(t *testing.T) {
	data := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"1\t1\t0\t0\t0\t0\t0\t0\t300\t150\t-1\t\n" +
		"2\t1\t1\t0\t0\t0\t12\t10\t276\t40\t-1\t\n" +
		"3\t1\t1\t1\t0\t0\t12\t10\t276\t40\t-1\t\n" +
		"4\t1\t1\t1\t1\t0\t12\t10\t276\t40\t-1\t\n" +
		"5\t1\t1\t1\t1\t1\t12\t10\t80\t40\t91.25\tReçu\n" +
		"5\t1\t1\t1\t1\t2\t100\t10\t120\t40\t87\t2024/1234\n" +
		"5\t1\t1\t1\t1\t3\t230\t10\t40\t40\t-1\tghost\n" +
		"5\t1\t1\t1\t1\t4\t280\t10\t10\t40\t55\t \n"

	tokens := parseTSV(data)
	require.Len(t, tokens, 2)

	assert.Equal(t, "Reçu", tokens[0].Text)
	assert.InDelta(t, 91.25, tokens[0].Confidence, 1e-9)
	assert.Equal(t, utils.NewBox(12, 10, 80, 40), tokens[0].Box)
	assert.Equal(t, 1, tokens[0].Page)

	assert.Equal(t, "2024/1234", tokens[1].Text)
	assert.Equal(t, utils.NewBox(100, 10, 120, 40), tokens[1].Box)
}

func TestParseTSVArabic(t *testing.T) {
	data := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"5\t1\t1\t1\t1\t1\t40\t8\t90\t30\t66.4\tجماعة\n"

	tokens := parseTSV(data)
	require.Len(t, tokens, 1)
	assert.Equal(t, "جماعة", tokens[0].Text)
}

func TestParseTSVEmptyAndGarbage(t *testing.T) {
	assert.Empty(t, parseTSV(""))
	assert.Empty(t, parseTSV("level\tpage_num\n"))
	assert.Empty(t, parseTSV("level\tpage_num\tblock\n5\tnot-enough-columns\n"))
}

func TestBuildArgs(t *testing.T) {
	req := ocr.Request{
		Language:       "ara",
		PSM:            6,
		OEM:            1,
		PreserveSpaces: true,
		Blacklist:      "abc",
	}
	assert.Equal(t, []string{
		"stdin", "stdout",
		"-l", "ara",
		"--psm", "6",
		"--oem", "1",
		"-c", "preserve_interword_spaces=1",
		"-c", "tessedit_char_blacklist=abc",
		"tsv",
	}, buildArgs(req))

	assert.Equal(t, []string{"stdin", "stdout", "tsv"}, buildArgs(ocr.Request{}))
}

func TestNewCLIDefaults(t *testing.T) {
	c := NewCLI(Options{})
	assert.Equal(t, "tesseract", c.binary)
	assert.Equal(t, defaultTimeout, c.timeout)
	assert.Equal(t, "tesseract-cli", c.Name())
	assert.NoError(t, c.Close())

	c = NewCLI(Options{Binary: "/opt/tesseract/bin/tesseract", Timeout: time.Second})
	assert.Equal(t, "/opt/tesseract/bin/tesseract", c.binary)
	assert.Equal(t, time.Second, c.timeout)
}

func TestNewKinds(t *testing.T) {
	backend, err := New(KindCLI, Options{})
	require.NoError(t, err)
	assert.Equal(t, "tesseract-cli", backend.Name())

	backend, err = New(KindAuto, Options{})
	require.NoError(t, err)
	assert.NotNil(t, backend)

	backend, err = New("", Options{})
	require.NoError(t, err)
	assert.NotNil(t, backend)

	_, err = New("imaginary", Options{})
	assert.Error(t, err)
}
