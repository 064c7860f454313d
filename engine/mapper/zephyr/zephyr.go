// Package zephyr maps Zephyr Scale records to and from the canonical model.
//
// Dialect notes: steps live in `steps[]` keyed by `index`, timestamps are
// ISO-8601 strings, status and priority are free-form strings, custom fields
// arrive as a flat map, and `labels` carry what canonical calls tags.
package zephyr

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/mapper"
)

// Register installs the Zephyr mappers into the registry.
func Register(r *mapper.Registry) error {
	if err := r.Register(core.SystemZephyr, core.EntityTestCase, &TestCaseMapper{}); err != nil {
		return fmt.Errorf("register zephyr test case mapper: %w", err)
	}
	if err := r.Register(core.SystemZephyr, core.EntityTestExecution, &ExecutionMapper{}); err != nil {
		return fmt.Errorf("register zephyr execution mapper: %w", err)
	}
	return nil
}

func decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("decode zephyr record: %w", err)
	}
	return nil
}
