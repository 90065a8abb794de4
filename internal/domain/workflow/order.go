package workflow

import (
	"sort"

	"github.com/ledgerline/docflow/internal/domain/entity"
)

// NextStatuses computes the candidate target statuses for a document
// currently in `current`, given the full status configuration of its
// type.
//
// Explicit transition edges win: when any edge is defined for
// (type, current), the result is exactly the edge targets that are
// actively configured, plus the cancellation status. Otherwise the
// linear sort-order fallback applies: every active config strictly
// after the current one, skipping initial statuses and truncating at
// (and including) the first final status reached.
//
// The cancellation status, when configured, is always unioned in unless
// the current status is itself final or cancellation.
func NextStatuses(configs []*entity.StatusConfig, edges []*entity.TransitionEdge, current string) []string {
	active := activeByOrder(configs)
	cur := findConfig(active, current)
	if cur != nil && (cur.IsFinal || cur.IsCancellation) {
		return []string{}
	}

	var next []string
	if targets := edgeTargets(edges, current); len(targets) > 0 {
		for _, to := range targets {
			if cfg := findConfig(active, to); cfg != nil && !cfg.IsInitial {
				next = append(next, to)
			}
		}
	} else {
		next = nextByOrder(active, current)
	}

	if cancel := cancellationOf(active); cancel != "" && !contains(next, cancel) && cancel != current {
		next = append(next, cancel)
	}
	if next == nil {
		next = []string{}
	}
	return next
}

// nextByOrder implements the linear-workflow-with-early-exit fallback.
// Intermediate statuses may be skipped forward; a final status is only
// offered when it directly follows the current status, so a document
// cannot jump straight to completion past unvisited stages. The walk
// always stops at the first final row.
func nextByOrder(ordered []*entity.StatusConfig, current string) []string {
	pos := -1
	for i, c := range ordered {
		if c.StatusCode == current {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil
	}

	var next []string
	for _, c := range ordered[pos+1:] {
		if c.IsInitial || c.IsCancellation {
			continue
		}
		if c.IsFinal {
			if len(next) == 0 {
				next = append(next, c.StatusCode)
			}
			break
		}
		next = append(next, c.StatusCode)
	}
	return next
}

// InitialStatus returns the initial status code for the configuration,
// or "" when none is configured. At most one row may be flagged initial;
// on misconfiguration the lowest sort order wins.
func InitialStatus(configs []*entity.StatusConfig) string {
	for _, c := range activeByOrder(configs) {
		if c.IsInitial {
			return c.StatusCode
		}
	}
	return ""
}

func cancellationOf(ordered []*entity.StatusConfig) string {
	for _, c := range ordered {
		if c.IsCancellation {
			return c.StatusCode
		}
	}
	return ""
}

func edgeTargets(edges []*entity.TransitionEdge, from string) []string {
	var targets []string
	for _, e := range edges {
		if e.FromStatus == from {
			targets = append(targets, e.ToStatus)
		}
	}
	return targets
}

func activeByOrder(configs []*entity.StatusConfig) []*entity.StatusConfig {
	active := make([]*entity.StatusConfig, 0, len(configs))
	for _, c := range configs {
		if c.IsActive {
			active = append(active, c)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].SortOrder < active[j].SortOrder
	})
	return active
}

func findConfig(configs []*entity.StatusConfig, code string) *entity.StatusConfig {
	for _, c := range configs {
		if c.StatusCode == code {
			return c
		}
	}
	return nil
}

func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
