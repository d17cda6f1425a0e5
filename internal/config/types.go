package config

// AnswerFile is the YAML document that pre-seeds an installation run.
type AnswerFile struct {
	Version     string            `yaml:"version" validate:"required,semver"`
	Dialect     string            `yaml:"dialect,omitempty" validate:"omitempty,oneof=human machine"`
	Log         LogSettings       `yaml:"log,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty" validate:"omitempty,dive,keys,env_key,endkeys,typed_value"`
}

// LogSettings overrides where the run log is written.
type LogSettings struct {
	Dir          string `yaml:"dir,omitempty" validate:"omitempty,abs_path"`
	Prefix       string `yaml:"prefix,omitempty" validate:"omitempty,min=1,max=64,excludesall=/"`
	RemoveAtExit *bool  `yaml:"remove_at_exit,omitempty"`
}
