package policy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var errNotScalar = errors.New("policy: duration must be a scalar")

// Duration is a time.Duration that unmarshals from either a Go duration
// string ("250ms", "1.5s") or a bare integer, which is read as milliseconds
// to match the library's native delay unit.
type Duration time.Duration

// Std converts back to time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errNotScalar
	}

	s := strings.TrimSpace(value.Value)

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(n) * time.Millisecond)

		return nil
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("policy: cannot parse %q as duration: %w", s, err)
	}

	*d = Duration(parsed)

	return nil
}

// MarshalYAML implements yaml.Marshaler, emitting the duration-string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
