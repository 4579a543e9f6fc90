package template

import "fmt"

// ConfigError reports an unusable template file: unreadable, malformed
// JSON, or a declaration that violates the template contract.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("template config: %v", e.Err)
	}
	return fmt.Sprintf("template config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// UnknownTemplateError is returned when a run names a template id the store
// has not loaded.
type UnknownTemplateError struct {
	ID string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template %q", e.ID)
}
