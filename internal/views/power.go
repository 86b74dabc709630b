// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package views

import (
	"context"
	"fmt"
)

// Poweroff asks the router to shut down. Callers confirm with the operator
// first.
func (v *Views) Poweroff(ctx context.Context) error {
	if err := v.backend.Poweroff(ctx); err != nil {
		return fmt.Errorf("error sending poweroff command: %w", err)
	}
	return nil
}

func (v *Views) Reboot(ctx context.Context) error {
	if err := v.backend.Reboot(ctx); err != nil {
		return fmt.Errorf("error sending reboot command: %w", err)
	}
	return nil
}
