package application

import (
	"fmt"
	"strconv"
	"strings"
)

// DensityMaxTokens keeps lookup responses to the smallest useful payload
const DensityMaxTokens = 10

// DensityPrompt builds the question sent to language-model density lookups
func DensityPrompt(material string) string {
	return fmt.Sprintf("Return density of material '%s' in kg/m3 as integer. Do not include additional characters. For invalid materials return 0.", material)
}

// ParseDensity interprets a lookup response. Only a bare non-negative
// integer is accepted; anything else wraps ErrInvalidDensity.
func ParseDensity(response string) (int, error) {
	s := strings.TrimSpace(response)
	density, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDensity, s)
	}
	if density < 0 {
		return 0, fmt.Errorf("%w: negative density %d", ErrInvalidDensity, density)
	}
	return density, nil
}
