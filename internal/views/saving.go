// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package views

import (
	"context"
	"fmt"

	"github.com/apex/log"

	"github.com/staranto/vyctl/internal/config"
)

// SavingResult reports what ApplySavingMethod found and did.
type SavingResult struct {
	Method  string `json:"method"`
	Unsaved bool   `json:"unsaved"`
	Saved   bool   `json:"saved"`
}

// ApplySavingMethod checks the backend's unsaved flag. With the direct method
// unsaved changes are saved and the flag is reset; with confirmation they are
// only reported.
func (v *Views) ApplySavingMethod(ctx context.Context) (SavingResult, error) {
	res := SavingResult{Method: v.savingMethod}

	unsaved, err := v.backend.UnsavedChanges(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to confirm if there are unsaved changes: %w", err)
	}
	res.Unsaved = unsaved

	if !unsaved || v.savingMethod != config.SavingDirect {
		return res, nil
	}

	if err := v.backend.Save(ctx, ""); err != nil {
		return res, err
	}
	if err := v.backend.MarkSaved(ctx); err != nil {
		return res, err
	}

	res.Saved, res.Unsaved = true, false
	log.WithField("method", v.savingMethod).Info("configuration saved")
	return res, nil
}
