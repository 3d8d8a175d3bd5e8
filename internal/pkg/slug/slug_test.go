package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single word", "Electronics", "electronics"},
		{"spaces and symbols", "Home & Garden", "home-garden"},
		{"digits kept", "4K TVs", "4k-tvs"},
		{"trailing symbols", "C++", "c-"},
		{"repeated separators", "Kids --- Toys", "kids-toys"},
		{"non ascii collapses", "Café Décor", "caf-d-cor"},
		{"already a slug", "men-shoes", "men-shoes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}
