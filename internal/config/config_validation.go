package config

import (
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// ValidateConfig performs schema validation on an entire answer file.
func ValidateConfig(cfg *AnswerFile) error {
	if cfg == nil {
		return kiterrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	return nil
}
