// load.go reads an optional descriptor override file.
//
// The built-in DefaultSpec is the launch contract; a deployment can adjust
// individual fields (host port, extra mounts, environment) by dropping a
// spill.jsonc next to the project. The file is JSONC — JSON with comments —
// so operators can annotate why a value was changed. Comments are stripped
// with github.com/tidwall/jsonc before parsing with encoding/json.

package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/omersajid9/spill/internal/model"
)

// DefaultDescriptorFile is the override file name looked up in the
// project directory.
const DefaultDescriptorFile = "spill.jsonc"

// specOverride mirrors Spec with pointer/nullable fields so an absent key
// can be told apart from an explicit zero value. Only present fields
// replace the corresponding default.
type specOverride struct {
	Name        *string           `json:"name"`
	Build       *BuildConfig      `json:"build"`
	Ports       []PortBinding     `json:"ports"`
	Volumes     []Mount           `json:"volumes"`
	Environment map[string]string `json:"environment"`
	Restart     *RestartPolicy    `json:"restart"`
	GPU         *GPUReservation   `json:"gpu"`
}

// Load returns the service descriptor for the given project directory:
// the defaults, overlaid with the override file when one exists.
//
// A missing override file is not an error — the defaults are the complete
// contract. A present but malformed file IS an error, because silently
// falling back to defaults would mask an operator mistake.
func Load(descriptorPath string) (*Spec, error) {
	spec := DefaultSpec()

	raw, err := os.ReadFile(descriptorPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return spec, nil
		}
		return nil, model.WrapCLIError(model.ExitDescriptorInvalid,
			fmt.Sprintf("failed to read descriptor %s", descriptorPath), err)
	}

	// Strip JSONC comments and trailing commas, then parse strictly.
	cleanJSON := jsonc.ToJSON(raw)

	var override specOverride
	dec := json.NewDecoder(bytes.NewReader(cleanJSON))
	// Unknown fields are rejected so a typo like "prots" fails loudly
	// instead of being ignored.
	dec.DisallowUnknownFields()
	if err := dec.Decode(&override); err != nil {
		return nil, model.WrapCLIError(model.ExitDescriptorInvalid,
			fmt.Sprintf("failed to parse descriptor %s", descriptorPath), err)
	}

	applyOverride(spec, &override)
	return spec, nil
}

// applyOverride merges the override into the defaults. Slice fields
// replace wholesale rather than merging element-wise: partial list merges
// are impossible to reason about for ordered mounts.
func applyOverride(spec *Spec, o *specOverride) {
	if o.Name != nil {
		spec.Name = *o.Name
	}
	if o.Build != nil {
		spec.Build = *o.Build
	}
	if o.Ports != nil {
		spec.Ports = o.Ports
	}
	if o.Volumes != nil {
		spec.Volumes = o.Volumes
	}
	if o.Environment != nil {
		// Environment merges key-wise: the common case is adding one
		// variable, not restating the GPU visibility flag and bind
		// address every time.
		for k, v := range o.Environment {
			spec.Environment[k] = v
		}
	}
	if o.Restart != nil {
		spec.Restart = *o.Restart
	}
	if o.GPU != nil {
		spec.GPU = o.GPU
	}
}
