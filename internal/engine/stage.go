// Package engine drives plugins through the installer lifecycle: it orders
// every stage's event handlers, runs them, and owns the state they share.
package engine

import (
	"fmt"
	"strings"
)

// Stage is one step of the fixed lifecycle. Stages run in ascending order.
type Stage int

const (
	StageBoot Stage = iota
	StageInit
	StageSetup
	StageInternalPackages
	StagePrograms
	StageLateSetup
	StageCustomization
	StageValidation
	StageTransactionBegin
	StageEarlyMisc
	StagePackages
	StageMisc
	StageTransactionEnd
	StageCloseup
	StageCleanup
	StagePreTerminate
	StageTerminate
)

var stageNames = [...]string{
	StageBoot:             "BOOT",
	StageInit:             "INIT",
	StageSetup:            "SETUP",
	StageInternalPackages: "INTERNAL_PACKAGES",
	StagePrograms:         "PROGRAMS",
	StageLateSetup:        "LATE_SETUP",
	StageCustomization:    "CUSTOMIZATION",
	StageValidation:       "VALIDATION",
	StageTransactionBegin: "TRANSACTION_BEGIN",
	StageEarlyMisc:        "EARLY_MISC",
	StagePackages:         "PACKAGES",
	StageMisc:             "MISC",
	StageTransactionEnd:   "TRANSACTION_END",
	StageCloseup:          "CLOSEUP",
	StageCleanup:          "CLEANUP",
	StagePreTerminate:     "PRE_TERMINATE",
	StageTerminate:        "TERMINATE",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("STAGE(%d)", int(s))
	}
	return stageNames[s]
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return s >= StageBoot && s <= StageTerminate
}

// Always reports whether the stage runs even after an earlier failure.
func (s Stage) Always() bool {
	return s >= StageCleanup
}

// Stages returns every stage in execution order.
func Stages() []Stage {
	stages := make([]Stage, 0, len(stageNames))
	for s := StageBoot; s <= StageTerminate; s++ {
		stages = append(stages, s)
	}
	return stages
}

// ParseStage resolves a stage by name, ignoring case.
func ParseStage(name string) (Stage, error) {
	for _, s := range Stages() {
		if strings.EqualFold(s.String(), name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

// Priority orders handlers of one stage that have no explicit relation.
// Lower values run first; offsets such as PriorityHigh-10 are allowed.
type Priority int

const (
	PriorityFirst  Priority = 1000
	PriorityHigh   Priority = 2000
	PriorityMedium Priority = 5000
	PriorityLow    Priority = 7000
	PriorityLast   Priority = 9000
)
