package scanner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"autocut/internal/faults"
)

// ScanConfig parameterizes the detector.
type ScanConfig struct {
	// ErrorThreshold separates matching windows (below) from non-matching ones.
	ErrorThreshold float64 `validate:"gt=0,lt=1"`
	// MinRunWindows is how many consecutive windows must agree before a state change.
	MinRunWindows int `validate:"min=1"`
	// WindowSeconds is the duration of one comparison window.
	WindowSeconds float64 `validate:"gt=0"`
	// CheckHighBits restricts alignment search to offsets sharing a masked value.
	CheckHighBits bool
}

// DefaultConfig returns the stock detector settings.
func DefaultConfig() ScanConfig {
	return ScanConfig{
		ErrorThreshold: 0.22,
		MinRunWindows:  2,
		WindowSeconds:  10,
		CheckHighBits:  true,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports out-of-range settings.
func (c ScanConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
			}
			return fmt.Errorf("%w: scan config: %s", faults.ErrConfiguration, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: scan config: %w", faults.ErrConfiguration, err)
	}
	return nil
}
