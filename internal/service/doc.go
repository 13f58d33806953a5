// Package service owns the declarative service descriptor for the spill
// web service.
//
// Responsibilities:
//   - Define the descriptor model (Spec) and its validation invariants,
//     including the exactly-one GPU capability reservation
//   - Load the optional spill.jsonc override file (JSONC support via
//     github.com/tidwall/jsonc)
//   - Render the descriptor to the Docker Compose YAML the orchestrator
//     consumes (gopkg.in/yaml.v3)
//   - Compute the effective container configuration, including mount
//     shadowing resolution
package service
