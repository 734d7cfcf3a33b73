// Package report summarises a student's roadmap and assessment history.
package report

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

// SkillLine is one row of the per-skill table.
type SkillLine struct {
	Skill    skill.Skill
	Mastered int
	Total    int
	AvgScore int
}

// Report is the printable summary for one student.
type Report struct {
	Student string
	Skills  []SkillLine
	Logs    []profile.AssessmentLog
}

// Summarize computes per-skill totals in baseline skill order. Logs are
// returned newest first.
func Summarize(points []roadmap.LearningPoint, logs []profile.AssessmentLog) Report {
	var r Report
	for _, sk := range skill.AllSkills() {
		line := SkillLine{Skill: sk}
		sum := 0
		for _, p := range roadmap.BySkill(points, sk) {
			line.Total++
			sum += p.Score
			if p.Status == roadmap.StatusMastered {
				line.Mastered++
			}
		}
		line.AvgScore = int(math.Round(float64(sum) / float64(max(line.Total, 1))))
		r.Skills = append(r.Skills, line)
	}

	r.Logs = slices.Clone(logs)
	slices.SortStableFunc(r.Logs, func(a, b profile.AssessmentLog) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return r
}

// ForProfile summarises a stored profile.
func ForProfile(p profile.Profile) Report {
	r := Summarize(p.Points, p.Logs)
	r.Student = p.Name
	return r
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F43F5E"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
)

// Render writes the report as plain tables. limit caps the number of log
// rows; zero prints them all.
func Render(w io.Writer, r Report, limit int) error {
	var b strings.Builder

	if r.Student != "" {
		b.WriteString(headingStyle.Render("Report for "+r.Student) + "\n\n")
	}

	fmt.Fprintf(&b, "%-12s  %8s  %6s  %9s\n", "Skill", "Mastered", "Total", "Avg Score")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 41))
	for _, l := range r.Skills {
		fmt.Fprintf(&b, "%-12s  %8d  %6d  %9d\n", l.Skill, l.Mastered, l.Total, l.AvgScore)
	}

	logs := r.Logs
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	if len(logs) > 0 {
		b.WriteString("\n" + headingStyle.Render("Assessment history") + "\n")
		for _, l := range logs {
			mark := badStyle.Render("✗")
			if l.Evaluation.IsCorrect {
				mark = goodStyle.Render("✓")
			}
			line := fmt.Sprintf("%s  %s  %-10s  %3d  %s",
				mark,
				l.Timestamp.Local().Format("2006-01-02 15:04"),
				l.Skill,
				l.Evaluation.Score,
				truncate(l.QuestionContent, 40))
			if l.Evaluation.IsOverridden {
				line += dimStyle.Render("  (tutor override)")
			}
			line += dimStyle.Render("  " + l.ID)
			b.WriteString(line + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
