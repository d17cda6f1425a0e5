package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/installkit/internal/environment"
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseConfig loads an answer file from disk, validates it, and returns the resulting model.
func ParseConfig(path string) (*AnswerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kiterrors.NewParseError(path, 0, err)
	}
	return Parse(path, data)
}

// Parse decodes and validates answer-file bytes. source names the origin in errors.
func Parse(source string, data []byte) (*AnswerFile, error) {
	var cfg AnswerFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, kiterrors.NewParseError(source, extractLine(err), err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Apply copies the answer file into env. Explicit values overwrite whatever
// defaults are already present.
func (c *AnswerFile) Apply(env *environment.Environment) error {
	if c.Dialect != "" {
		env.Set(environment.DialogDialect, c.Dialect)
	}
	if c.Log.Dir != "" {
		env.Set(environment.LogDir, c.Log.Dir)
	}
	if c.Log.Prefix != "" {
		env.Set(environment.LogFileNamePrefix, c.Log.Prefix)
	}
	if c.Log.RemoveAtExit != nil {
		env.Set(environment.LogRemoveAtExit, *c.Log.RemoveAtExit)
	}

	keys := make([]string, 0, len(c.Environment))
	for key := range c.Environment {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, err := environment.ParseTyped(c.Environment[key])
		if err != nil {
			return kiterrors.NewValidationError("environment."+key, err.Error(), err)
		}
		env.Set(key, value)
	}
	return nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
