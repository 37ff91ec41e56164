// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Content must not be empty or whitespace-only
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrValidation)
	}
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is empty", ErrValidation)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return fmt.Errorf("%w: document content is empty", ErrValidation)
	}
	return nil
}

// ValidateLessonPlanParams validates lesson plan input parameters.
//
// Validation rules:
//   - Subject, GradeLevel, Duration, and SourceIEPID must not be empty
//   - Timeframe must be Daily or Weekly
//   - Days must be exactly {"Daily"} when Timeframe is Daily, otherwise a
//     non-empty subset of weekdays
//   - Goals must contain at least one non-empty entry
//
// Materials and Accommodations may be empty. Whether SourceIEPID resolves
// to a live artifact is checked against the registry at generation time,
// not here.
func ValidateLessonPlanParams(params *LessonPlanParams) error {
	if params == nil {
		return fmt.Errorf("%w: lesson plan parameters are nil", ErrValidation)
	}
	if strings.TrimSpace(params.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrValidation)
	}
	if strings.TrimSpace(params.GradeLevel) == "" {
		return fmt.Errorf("%w: grade level is required", ErrValidation)
	}
	if strings.TrimSpace(params.Duration) == "" {
		return fmt.Errorf("%w: duration is required", ErrValidation)
	}
	if strings.TrimSpace(params.SourceIEPID) == "" {
		return fmt.Errorf("%w: source IEP id is required", ErrValidation)
	}

	switch params.Timeframe {
	case TimeframeDaily:
		if len(params.Days) != 1 || params.Days[0] != string(TimeframeDaily) {
			return fmt.Errorf("%w: daily plans must use days [Daily]", ErrValidation)
		}
	case TimeframeWeekly:
		if len(params.Days) == 0 {
			return fmt.Errorf("%w: weekly plans require at least one day", ErrValidation)
		}
		for _, day := range params.Days {
			if !slices.Contains(Weekdays, day) {
				return fmt.Errorf("%w: invalid day %q", ErrValidation, day)
			}
		}
	default:
		return fmt.Errorf("%w: invalid timeframe %q", ErrValidation, params.Timeframe)
	}

	if !hasNonEmptyEntry(params.Goals) {
		return fmt.Errorf("%w: at least one learning goal is required", ErrValidation)
	}

	return nil
}

func hasNonEmptyEntry(items []string) bool {
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			return true
		}
	}
	return false
}
