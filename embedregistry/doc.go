// Package embedregistry provides an embed.FS-based definition registry that loads
// all YAML manifests at construction (eager). Use New with an fs.FS and root path;
// GetDefinition performs an O(1) lookup by file base name.
package embedregistry
