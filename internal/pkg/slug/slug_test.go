package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Whey Protein", "whey-protein"},
		{"  Resistance Bands (Set of 5)  ", "resistance-bands-set-of-5"},
		{"Crème Brûlée Bar", "creme-brulee-bar"},
		{"Kettlebell -- 16kg", "kettlebell-16kg"},
		{"yoga_mat", "yoga-mat"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Make(tt.in), tt.in)
	}
}
