package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/metron/internal/apperr"
	"github.com/starford/metron/internal/catalog"
	"github.com/starford/metron/internal/engine"
)

func TestPrintConversion(t *testing.T) {
	var buf bytes.Buffer
	req := engine.Request{Category: "length", From: "meter", To: "foot"}
	require.NoError(t, printConversion(&buf, engine.Default(), req, "10", false, false))
	assert.Equal(t, "10 meter = 32.8084 foot\n", buf.String())
}

func TestPrintConversion_Swap(t *testing.T) {
	var buf bytes.Buffer
	req := engine.Request{Category: "temperature", From: "fahrenheit", To: "celsius"}
	require.NoError(t, printConversion(&buf, engine.Default(), req, "25", true, false))
	assert.Equal(t, "25 celsius = 77 fahrenheit\n", buf.String())
}

func TestPrintConversion_Errors(t *testing.T) {
	var buf bytes.Buffer
	req := engine.Request{Category: "length", From: "meter", To: "furlong"}

	err := printConversion(&buf, engine.Default(), req, "abc", false, false)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))

	err = printConversion(&buf, engine.Default(), req, "10", false, false)
	assert.True(t, errors.Is(err, apperr.ErrUnrecognizedUnit))

	require.NoError(t, printConversion(&buf, engine.Default(), req, "10", false, true))
	assert.Equal(t, "10 meter = 10 furlong\n", buf.String())
}

func TestPrintUnits(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUnits(&buf, catalog.Default(), ""))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "CATEGORY"))
	assert.Contains(t, out, "temperature")

	buf.Reset()
	require.NoError(t, printUnits(&buf, catalog.Default(), "Speed"))
	assert.Contains(t, buf.String(), "knot")

	assert.Error(t, printUnits(&buf, catalog.Default(), "bogus"))
}
