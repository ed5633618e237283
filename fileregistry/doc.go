// Package fileregistry provides a filesystem-based definition registry that loads
// YAML manifests on demand (lazy) and caches them. Use New to create a Registry;
// GetDefinition resolves name to {dir}/{name}.yaml, falling back to {dir}/{name}.yml.
package fileregistry
