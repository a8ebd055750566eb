package helpers

import (
	"sort"
	"strings"

	"github.com/doeshing/cmdai-go/internal/domain"
)

// CommandRanking aggregates the learning entries recorded for one tool/command pair.
type CommandRanking struct {
	Tool           string
	Command        string
	Uses           int
	Successful     int
	MeanConfidence float64
}

// RankCommands groups entries by tool and command and orders them by use
// count, then mean confidence, then command text. A limit <= 0 keeps all.
func RankCommands(entries []domain.LearningEntry, limit int) []CommandRanking {
	type key struct{ tool, command string }
	index := make(map[key]int)
	var rankings []CommandRanking
	for _, entry := range entries {
		k := key{strings.ToLower(entry.Tool), entry.Command}
		i, seen := index[k]
		if !seen {
			i = len(rankings)
			index[k] = i
			rankings = append(rankings, CommandRanking{Tool: k.tool, Command: entry.Command})
		}
		r := &rankings[i]
		r.MeanConfidence += (entry.ConfidenceScore - r.MeanConfidence) / float64(r.Uses+1)
		r.Uses++
		if entry.IsPositive() {
			r.Successful++
		}
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		a, b := rankings[i], rankings[j]
		if a.Uses != b.Uses {
			return a.Uses > b.Uses
		}
		if a.MeanConfidence != b.MeanConfidence {
			return a.MeanConfidence > b.MeanConfidence
		}
		return a.Command < b.Command
	})

	if limit > 0 && len(rankings) > limit {
		return rankings[:limit]
	}
	return rankings
}

// FeedbackRates returns the acceptance rate over all entries and the success
// rate over accepted entries, both as percentages.
func FeedbackRates(stats domain.LearningStats) (acceptance, success float64) {
	return percent(stats.Accepted, stats.Total), percent(stats.Successful, stats.Accepted)
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

var undoHints = map[string]string{
	"git":     "Use `git status`, `git reflog`, or `git restore` to inspect and undo git changes.",
	"az":      "Use `az group list` and `az resource list` to confirm what changed in the subscription.",
	"kubectl": "Use `kubectl rollout undo` or `kubectl get events` to recover from cluster issues.",
	"docker":  "Use `docker ps -a` and `docker logs` to review container history before repeating.",
	"rm":      "Restore files via backups or `git checkout -- <path>` if tracked.",
}

// DeriveUndoHints returns sorted, de-duplicated recovery hints for commands
// the user ran that then failed. The command's binary picks the hint, so
// `rm` under any tool still gets one.
func DeriveUndoHints(entries []domain.LearningEntry) []string {
	picked := make(map[string]bool)
	for _, entry := range entries {
		if !entry.WasAccepted || entry.WasSuccessful {
			continue
		}
		fields := strings.Fields(strings.ToLower(entry.Command))
		if len(fields) == 0 {
			continue
		}
		if _, ok := undoHints[fields[0]]; ok {
			picked[fields[0]] = true
		}
	}

	hints := make([]string, 0, len(picked))
	for binary := range picked {
		hints = append(hints, undoHints[binary])
	}
	sort.Strings(hints)
	return hints
}
