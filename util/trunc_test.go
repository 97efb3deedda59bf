package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRightWithSuffix(t *testing.T) {
	tests := []struct {
		text string
		n    int
		want string
	}{
		{text: "archive.zip", n: 30, want: "archive.zip"},
		{text: "archive.zip", n: 11, want: "archive.zip"},
		{text: "archive.zip", n: 7, want: "archive..."},
		{text: "日本語のファイル.zip", n: 3, want: "日本語..."},
		{text: "abc", n: 0, want: "..."},
		{text: "", n: 0, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateRightWithSuffix(tt.text, tt.n, "..."))
		})
	}
}
