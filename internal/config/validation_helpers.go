package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// convertValidationError normalizes validator errors into installkit validation errors.
func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return kiterrors.NewValidationError(field, msg, err)
	}

	return kiterrors.NewValidationError("config", err.Error(), err)
}

// yamlishFieldName turns "AnswerFile.Log.Dir" into "log.dir". Map keys inside
// brackets keep their case.
func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}

	var b strings.Builder
	depth := 0
	for _, r := range ns {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		}
		if depth == 0 {
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
