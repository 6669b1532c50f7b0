package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{100, "100"},
		{0.5, "0.5"},
		{32.8084, "32.8084"},
		{1.0 / 3.0, "0.333333"},
		{2.0 / 3.0, "0.666667"},
		{2.0000004, "2"},
		{-0.0000001, "0"},
		{-12.25, "-12.25"},
		{1234567.1234567, "1234567.123457"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatValue(tc.in), "FormatValue(%v)", tc.in)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{10, "10"},
		{0.1, "0.1"},
		{-2.5, "-2.5"},
		{123456789, "123456789"},
		{0.0000015, "0.0000015"},
		{1.5e-7, "1.5e-7"},
		{1e21, "1e+21"},
		{math.NaN(), "NaN"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatNumber(tc.in), "FormatNumber(%v)", tc.in)
	}
}

func TestFormula(t *testing.T) {
	req := Request{Category: "temperature", From: "celsius", To: "fahrenheit", Value: 25}
	assert.Equal(t, "25 celsius = 77 fahrenheit", Formula(req, 77))

	req = Request{Category: "length", From: "meter", To: "mile", Value: 1}
	assert.Equal(t, "1 meter = 0.000621 mile", Formula(req, 0.000621371))
}
