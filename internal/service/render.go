// render.go turns a validated service descriptor into the Docker Compose
// YAML consumed by the orchestrator.
//
// The rendered file is a complete compose document for the single spill
// service: build section naming the non-default Dockerfile path, the one
// port binding, the ordered volume mounts, environment injection, restart
// policy, management labels, and the GPU device reservation under
// deploy.resources.reservations. The file is regenerated on every `up`,
// so it carries a do-not-edit header.

package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// composeFile is the YAML shape of the generated compose document.
type composeFile struct {
	// Services maps the service name to its definition. Exactly one
	// entry is ever rendered.
	Services map[string]composeService `yaml:"services"`
}

// composeService is a single service definition in the compose schema.
// Only the fields the descriptor controls are rendered.
type composeService struct {
	Build composeBuild `yaml:"build"`

	// Ports uses the short "host:container" syntax.
	Ports []string `yaml:"ports"`

	// Volumes uses the short "source:target" syntax, in descriptor order
	// so the narrow mount keeps its precedence over the broad one.
	Volumes []string `yaml:"volumes,omitempty"`

	// Environment is rendered as a list of KEY=value strings sorted by
	// key, for deterministic output.
	Environment []string `yaml:"environment,omitempty"`

	Restart string `yaml:"restart"`

	// Labels carry the spill management labels so `spillctl status` can
	// discover the container via Docker API label filters.
	Labels map[string]string `yaml:"labels,omitempty"`

	Deploy *composeDeploy `yaml:"deploy,omitempty"`
}

// composeBuild is the build section. The dockerfile key is always emitted
// because the spill build file is NOT at the context root default path.
type composeBuild struct {
	Context    string `yaml:"context"`
	Dockerfile string `yaml:"dockerfile"`
}

// composeDeploy nests the device reservation the way compose expects:
// deploy.resources.reservations.devices.
type composeDeploy struct {
	Resources composeResources `yaml:"resources"`
}

type composeResources struct {
	Reservations composeReservations `yaml:"reservations"`
}

type composeReservations struct {
	Devices []composeDevice `yaml:"devices"`
}

// composeDevice is one device reservation entry. Count is a string because
// the uncapped reservation renders as the literal `all`.
type composeDevice struct {
	Driver       string   `yaml:"driver,omitempty"`
	Count        string   `yaml:"count,omitempty"`
	Capabilities []string `yaml:"capabilities"`
}

// Render serializes the descriptor into compose YAML with a generated-file
// header. The spec must have been validated; Render does not re-check
// invariants.
func Render(spec *Spec, labels map[string]string) ([]byte, error) {
	svc := composeService{
		Build: composeBuild{
			Context:    spec.Build.Context,
			Dockerfile: spec.Build.Dockerfile,
		},
		Restart: string(spec.Restart),
		Labels:  labels,
	}

	for _, p := range spec.Ports {
		svc.Ports = append(svc.Ports, p.String())
	}

	for _, m := range spec.Volumes {
		svc.Volumes = append(svc.Volumes, m.String())
	}

	// Sort environment keys so the rendered file is reproducible and
	// diffs cleanly between runs.
	keys := make([]string, 0, len(spec.Environment))
	for k := range spec.Environment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		svc.Environment = append(svc.Environment, k+"="+spec.Environment[k])
	}

	if spec.GPU != nil {
		svc.Deploy = &composeDeploy{
			Resources: composeResources{
				Reservations: composeReservations{
					Devices: []composeDevice{
						{
							Driver:       spec.GPU.Driver,
							Count:        deviceCount(spec.GPU.Count),
							Capabilities: spec.GPU.Capabilities,
						},
					},
				},
			},
		}
	}

	doc := composeFile{
		Services: map[string]composeService{
			spec.Name: svc,
		},
	}

	yamlBytes, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize compose YAML: %w", err)
	}

	header := fmt.Sprintf(
		"# Auto-generated by spillctl for service %q\n# DO NOT EDIT - this file is regenerated on each up\n",
		spec.Name,
	)

	return []byte(header + string(yamlBytes)), nil
}

// deviceCount maps the descriptor's device count to the compose string
// form: AllGPUs becomes the literal "all", anything else its decimal form.
func deviceCount(count int) string {
	if count == AllGPUs {
		return "all"
	}
	return fmt.Sprintf("%d", count)
}

// WriteComposeFile writes the rendered YAML to outputPath, creating parent
// directories as needed. 0644 matches the permissions of files a user
// would create by hand.
func WriteComposeFile(outputPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write compose file %s: %w", outputPath, err)
	}
	return nil
}
