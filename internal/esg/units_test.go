package esg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractUnit(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "percent", value: "45%", want: "%"},
		{name: "known token case insensitive", value: "120 KWH", want: "kwh"},
		{name: "token anywhere in text", value: "approx 3 tons total", want: "tons"},
		{name: "list order beats textual order", value: "12 mwh (0.5%)", want: "%"},
		{name: "currency symbol", value: "$4500", want: "$"},
		{name: "fallback run of letters", value: "5 widgets", want: "widgets"},
		{name: "fallback preserves case", value: "9 Units", want: "Units"},
		{name: "no unit", value: "12345", want: ""},
		{name: "empty value", value: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractUnit(tt.value))
		})
	}
}
