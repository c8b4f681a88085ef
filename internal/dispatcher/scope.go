// Package dispatcher resolves the scope keyword on every RPC operation
// (global, personality, project, both, all) into the corpus store paths it
// names, and fans read operations out across them, merging results by
// relevance and degrading gracefully when one corpus is unavailable.
package dispatcher

import (
	"github.com/mcp-memoria/mcp-memoria/internal/memconfig"
	"github.com/mcp-memoria/mcp-memoria/internal/merrors"
)

// CorpusRef names one corpus and the on-disk path of its store.
type CorpusRef struct {
	Name string
	Path string
}

// ResolveScope expands a read-path scope keyword into the ordered corpora
// to visit. "both" is global+project; "all" is global+personality+project.
// The project leg is silently omitted from "both"/"all" when no project
// directory can be resolved (no project detected is not a fatal condition
// for a cross-corpus read).
func ResolveScope(scope string, paths memconfig.Paths) ([]CorpusRef, error) {
	switch scope {
	case "global":
		return []CorpusRef{{Name: "global", Path: paths.GlobalDB}}, nil
	case "personality":
		return []CorpusRef{{Name: "personality", Path: paths.PersonalityDB}}, nil
	case "project":
		p, err := memconfig.ProjectDBPath()
		if err != nil {
			return nil, merrors.Wrap(merrors.ErrCodeProjectUnresolved, err)
		}
		return []CorpusRef{{Name: "project", Path: p}}, nil
	case "both":
		refs := []CorpusRef{{Name: "global", Path: paths.GlobalDB}}
		if p, err := memconfig.ProjectDBPath(); err == nil {
			refs = append(refs, CorpusRef{Name: "project", Path: p})
		}
		return refs, nil
	case "all":
		refs := []CorpusRef{
			{Name: "global", Path: paths.GlobalDB},
			{Name: "personality", Path: paths.PersonalityDB},
		}
		if p, err := memconfig.ProjectDBPath(); err == nil {
			refs = append(refs, CorpusRef{Name: "project", Path: p})
		}
		return refs, nil
	default:
		return nil, merrors.New(merrors.ErrCodeUnknownScope, "unknown scope: "+scope, nil)
	}
}

// ResolveWriteScope resolves a single-corpus scope for save/delete/compact.
// Each operation supplies its own default (save and delete default to
// "project", compact to "personality") before calling this; an unrecognized,
// non-empty scope value falls back to "project" here, matching the
// original's catch-all save-target resolution.
func ResolveWriteScope(scope string, paths memconfig.Paths) (CorpusRef, error) {
	switch scope {
	case "personality":
		return CorpusRef{Name: "personality", Path: paths.PersonalityDB}, nil
	case "global":
		return CorpusRef{Name: "global", Path: paths.GlobalDB}, nil
	default: // "project" and any unrecognized value
		p, err := memconfig.ProjectDBPath()
		if err != nil {
			return CorpusRef{}, merrors.Wrap(merrors.ErrCodeProjectUnresolved, err)
		}
		return CorpusRef{Name: "project", Path: p}, nil
	}
}
