// Package files stores uploaded order payment workbooks and decides which of
// them feed a report.
//
// Store is the storage contract the report service depends on. DirStore keeps
// uploads as files in one directory; MemoryStore keeps them in a map and is
// used by tests and the CLI when reading from explicit paths is not wanted.
//
// Discovery: List returns only .xlsx workbooks, sorted by name. Editor lock
// files ("~$report.xlsx") and in-flight staging files are never listed.
//
// Selection: a SelectionPolicy picks the input files out of a listing:
//
//	policy, err := files.ParseSelectionPolicy("latest")
//	infos, err := store.List(ctx)
//	selected := policy.Select(infos)
package files
