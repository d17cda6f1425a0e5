package config

import (
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/installkit/internal/environment"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	envKeyPattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*(?:\.[A-Za-z0-9_]+)+$`)
)

// validatorInstance configures and returns the shared validator instance used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("env_key", func(fl validator.FieldLevel) bool {
			return envKeyPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("typed_value", func(fl validator.FieldLevel) bool {
			_, err := environment.ParseTyped(fl.Field().String())
			return err == nil
		})

		_ = v.RegisterValidation("abs_path", func(fl validator.FieldLevel) bool {
			return isValidAbsPath(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// GetValidator returns a configured validator instance for use outside the config package.
func GetValidator() *validator.Validate {
	return validatorInstance()
}

// isValidAbsPath performs syntactic validation of directory paths without filesystem access
func isValidAbsPath(path string) bool {
	if path == "" || strings.Contains(path, "\x00") {
		return false
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	return !strings.Contains(path, "/../") && !strings.HasSuffix(path, "/..")
}
