package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// maxStepTicks - верхняя граница для STEP.
const maxStepTicks = 1000

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (c ClientCommand) Validate() error {
	switch c.Action {
	case ActionPause, ActionResume, ActionSave:
		return nil
	case ActionStep:
		if len(c.Payload) == 0 {
			return nil
		}
		var p StepPayload
		if err := json.Unmarshal(c.Payload, &p); err != nil {
			return fmt.Errorf("invalid step payload: %w", err)
		}
		return p.Validate()
	case "":
		return errors.New("action is required")
	}
	return fmt.Errorf("unknown action %q", c.Action)
}

func (p StepPayload) Validate() error {
	if p.Ticks < 1 {
		return errors.New("ticks must be positive")
	}
	if p.Ticks > maxStepTicks {
		return fmt.Errorf("ticks must not exceed %d", maxStepTicks)
	}
	return nil
}

// StepTicks возвращает число тиков для STEP (по умолчанию 1).
func (c ClientCommand) StepTicks() int {
	var p StepPayload
	if len(c.Payload) == 0 || json.Unmarshal(c.Payload, &p) != nil || p.Ticks < 1 {
		return 1
	}
	return p.Ticks
}
