package config

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that decodes from a Go duration string
// ("1500ms", "2s") or from a bare integer number of milliseconds.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration: expected a scalar, got %q", value.ShortTag())
	}
	parsed, err := parseDuration(value.Value, value.ShortTag() == "!!int")
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := parseDuration(s, false)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	parsed, err := parseDuration(string(data), true)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func parseDuration(s string, millis bool) (Duration, error) {
	if millis {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("duration: invalid milliseconds %q: %w", s, err)
		}
		return Duration(time.Duration(ms) * time.Millisecond), nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration: %w", err)
	}
	return Duration(v), nil
}

// ByteSize is a byte count that decodes from human-readable sizes such as
// "10MiB", "512 KB" or a bare integer.
type ByteSize int64

func (b ByteSize) String() string {
	if b < 0 {
		return strconv.FormatInt(int64(b), 10)
	}
	return humanize.IBytes(uint64(b))
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("byte size: expected a scalar, got %q", value.ShortTag())
	}
	parsed, err := parseByteSize(value.Value)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *ByteSize) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	parsed, err := parseByteSize(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func parseByteSize(s string) (ByteSize, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("byte size: %w", err)
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("byte size: %q overflows int64", s)
	}
	return ByteSize(n), nil
}
