package records

import (
	"strings"

	"github.com/pkg/errors"
)

type TimestompRule int

const (
	// Flag a record when the $FILE_NAME created time predates the
	// $STANDARD_INFORMATION created time.
	TimestompCreated TimestompRule = iota

	// As above, but also flag a $FILE_NAME modified time that
	// predates the $STANDARD_INFORMATION modified time.
	TimestompCreatedOrModified
)

func (self TimestompRule) String() string {
	switch self {
	case TimestompCreatedOrModified:
		return "created-or-modified"
	default:
		return "created"
	}
}

func ParseTimestompRule(name string) (TimestompRule, error) {
	switch strings.ToLower(name) {
	case "", "created":
		return TimestompCreated, nil
	case "created-or-modified":
		return TimestompCreatedOrModified, nil
	}
	return TimestompCreated, errors.Errorf("Unknown timestomp rule %q", name)
}

type Options struct {
	// Emit rows for DOS 8.3 names too.
	IncludeShortNames bool

	// Copy the $FILE_NAME timestamps even when they match the
	// $STANDARD_INFORMATION ones.
	AlwaysPopulate0x30 bool

	TimestompRule TimestompRule
}

func GetDefaultOptions() Options {
	return Options{
		TimestompRule: TimestompCreated,
	}
}
