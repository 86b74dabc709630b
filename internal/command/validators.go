// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/staranto/vyctl/internal/config"
	"github.com/staranto/vyctl/internal/output"
	"github.com/staranto/vyctl/internal/views"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	if !slices.Contains(output.Formats, value.(string)) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

func URLValidator(value any) error {
	u, err := url.Parse(value.(string))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http(s) URL")
	}
	return nil
}

func SavingMethodValidator(value any) error {
	switch value.(string) {
	case config.SavingConfirmation, config.SavingDirect:
		return nil
	}
	return fmt.Errorf("must be %s or %s", config.SavingConfirmation, config.SavingDirect)
}

func GroupTypeValidator(value any) error {
	s := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := views.GroupTypes[s]; !ok {
		return fmt.Errorf("must be one of %v", views.GroupTypeNames())
	}
	return nil
}

func PortValidator(value any) error {
	p := value.(int)
	if p < 1 || p > 65535 {
		return errors.New("must be between 1 and 65535")
	}
	return nil
}

func LogLevelValidator(value any) error {
	if !slices.Contains(views.SSHLogLevels, strings.ToUpper(value.(string))) {
		return fmt.Errorf("must be one of %v", views.SSHLogLevels)
	}
	return nil
}

func PositiveDurationValidator(value any) error {
	if value.(time.Duration) <= 0 {
		return errors.New("must be positive")
	}
	return nil
}
