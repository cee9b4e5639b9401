package configbinder

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Bind decodes input (typically a map[string]interface{} from YAML) into target.
// It uses the "yaml" tag for binding and allows weakly typed input (e.g., string to int conversion).
func Bind(input interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		targetType := reflect.TypeOf(target)
		if targetType.Kind() == reflect.Ptr {
			targetType = targetType.Elem()
		}
		return fmt.Errorf("failed to bind properties to struct %s: %w", targetType.Name(), err)
	}
	return nil
}

// BindProperties binds string properties to target; see Bind.
func BindProperties(props map[string]string, target interface{}) error {
	if len(props) == 0 {
		return nil
	}
	intermediate := make(map[string]interface{}, len(props))
	for k, v := range props {
		intermediate[k] = v
	}
	return Bind(intermediate, target)
}

// BindNamed looks up name in configs and binds the entry to target.
func BindNamed(configs map[string]interface{}, name string, target interface{}) error {
	raw, ok := configs[name]
	if !ok {
		return fmt.Errorf("configuration for '%s' not found", name)
	}
	return Bind(raw, target)
}
