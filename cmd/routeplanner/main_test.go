package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCoordinate(t *testing.T) {
	t.Run("valid on first try", func(t *testing.T) {
		out := &bytes.Buffer{}
		v, err := readCoordinate(bufio.NewReader(strings.NewReader("42.5\n")), out, "start x")
		require.NoError(t, err)
		assert.Equal(t, 42.5, v)
		assert.Contains(t, out.String(), "Enter start x")
	})

	t.Run("retries until valid", func(t *testing.T) {
		out := &bytes.Buffer{}
		v, err := readCoordinate(bufio.NewReader(strings.NewReader("abc\n150\n10\n")), out, "end y")
		require.NoError(t, err)
		assert.Equal(t, 10.0, v)
		assert.Equal(t, 2, strings.Count(out.String(), "must be a number"))
	})

	t.Run("last line without newline", func(t *testing.T) {
		v, err := readCoordinate(bufio.NewReader(strings.NewReader("7")), &bytes.Buffer{}, "end x")
		require.NoError(t, err)
		assert.Equal(t, 7.0, v)
	})

	t.Run("eof", func(t *testing.T) {
		_, err := readCoordinate(bufio.NewReader(strings.NewReader("")), &bytes.Buffer{}, "end x")
		assert.Error(t, err)
	})
}
