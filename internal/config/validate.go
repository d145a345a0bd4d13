package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"autocut/internal/faults"
	"autocut/internal/planner"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report TOML key names so messages match what users edit.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFields(); err != nil {
		return err
	}
	if err := c.validatePatterns(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFields() error {
	err := structValidator.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", faults.ErrConfiguration, err)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldPath(fe)+" "+friendlyMessage(fe))
	}
	return fmt.Errorf("%w: %s", faults.ErrConfiguration, strings.Join(messages, "; "))
}

// fieldPath turns "Config.scan.error_threshold" into "scan.error_threshold".
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must not exceed " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "startswith":
		return "must start with " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// validatePatterns turns unknown sample names into a load-time error rather
// than a failure halfway through a scan.
func (c *Config) validatePatterns() error {
	if len(c.Samples.Files) == 0 {
		return fmt.Errorf("%w: samples.files must name at least one reference sample", faults.ErrConfiguration)
	}
	for _, name := range sortedKeys(c.TransitionPatterns) {
		steps, err := planner.ParseSteps(c.TransitionPatterns[name])
		if err != nil {
			return fmt.Errorf("transition_patterns.%s: %w", name, err)
		}
		for _, step := range steps {
			if _, ok := c.Samples.Files[step.Sample]; !ok {
				return fmt.Errorf("%w: transition_patterns.%s references unknown sample %q (configured: %s)",
					faults.ErrConfiguration, name, step.Sample, strings.Join(c.SampleNames(), ", "))
			}
		}
	}
	for _, name := range sortedKeys(c.CutPatterns) {
		if _, err := planner.ParseSegments(c.CutPatterns[name]); err != nil {
			return fmt.Errorf("cut_patterns.%s: %w", name, err)
		}
	}

	transition, err := c.TransitionPattern("")
	if err != nil {
		return err
	}
	cut, err := c.CutPattern("")
	if err != nil {
		return err
	}
	steps, _ := planner.ParseSteps(transition)
	segments, _ := planner.ParseSegments(cut)
	if err := planner.CheckPatterns(steps, segments); err != nil {
		return fmt.Errorf("autocut.cut_pattern %q does not fit autocut.transition_pattern %q: %w",
			c.Autocut.CutPattern, c.Autocut.TransitionPattern, err)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Backend != "s3" {
		return nil
	}
	if c.Cache.S3.Bucket == "" {
		return fmt.Errorf("%w: cache.s3.bucket must be set when cache.backend is s3", faults.ErrConfiguration)
	}
	if c.Cache.S3.Region == "" {
		return fmt.Errorf("%w: cache.s3.region must be set when cache.backend is s3", faults.ErrConfiguration)
	}
	return nil
}

func lookupPattern(kind string, patterns map[string][]string, name, fallback string) ([]string, error) {
	key := planner.FoldName(name)
	if key == "" {
		key = fallback
	}
	if key == "" {
		return nil, fmt.Errorf("%w: no %s pattern selected and autocut.%s_pattern is empty", faults.ErrConfiguration, kind, kind)
	}
	pattern, ok := patterns[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown %s pattern %q (configured: %s)",
			faults.ErrConfiguration, kind, key, strings.Join(sortedKeys(patterns), ", "))
	}
	return pattern, nil
}
