package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"(11) 91234-5678", "5511912345678", false},
		{"11 3123-4567", "551131234567", false},
		{"+55 11 91234-5678", "5511912345678", false},
		{"", "", true},
		{"abc", "", true},
		{"12345", "", true},
		{"001 415 555 0100", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SanitizePhone(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Maria", SanitizeInput("  Maria<script>alert(1)</script>\n"))
	assert.Equal(t, "a &amp; b", SanitizeInput("a & b"))
}

func TestFields(t *testing.T) {
	data := map[string]interface{}{
		"name":   "Ana",
		"blank":  "  ",
		"value":  int64(7),
		"text":   "7",
		"active": true,
		"list":   []interface{}{"a"},
	}

	_, ok := StringField(data, "blank")
	assert.False(t, ok)
	assert.Equal(t, "Ana", StringOr(data, "name", "-"))
	assert.Equal(t, "-", StringOr(data, "value", "-"))

	f, ok := FloatField(data, "value")
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)
	_, ok = FloatField(data, "text")
	assert.False(t, ok)

	n, ok := IntField(data, "value")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	assert.True(t, BoolField(data, "active"))
	assert.False(t, BoolField(data, "name"))

	l, ok := ListField(data, "list")
	assert.True(t, ok)
	assert.Len(t, l, 1)
}
