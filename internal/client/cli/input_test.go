package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	assert.Error(t, err)
}

func TestGetTextDefault(t *testing.T) {
	var out bytes.Buffer
	got, err := GetTextDefault(rdr("\n"), "Quiz type", "mcq", &out)
	require.NoError(t, err)
	assert.Equal(t, "mcq", got)
	assert.Contains(t, out.String(), "Quiz type [mcq]")

	got, err = GetTextDefault(rdr("laq\n"), "Quiz type", "mcq", &out)
	require.NoError(t, err)
	assert.Equal(t, "laq", got)
}

func TestGetInt(t *testing.T) {
	var out bytes.Buffer
	n, err := GetInt(rdr("\n"), "Questions", 5, &out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = GetInt(rdr("12\n"), "Questions", 5, &out)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = GetInt(rdr("many\n"), "Questions", 5, &out)
	assert.ErrorContains(t, err, `"many" is not a number`)
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\n\n"), "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)

	got, err = GetMultiline(rdr("tail"), "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "tail", got)
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword("Password", &out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(pw))
	assert.Equal(t, "Password: \n", out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword("Password", &out)
	assert.Error(t, err)
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	for in, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false} {
		got, err := confirm(rdr(in), "Delete?", &out)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}
