package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/TIMOVIS/mandarin-exam/internal/planner"
	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

// snapshotKeep is how many snapshots are kept per student.
const snapshotKeep = 10

var tutorCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Tutor tools: build tests, review answers and edit the roadmap",
}

var tutorGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a test draft for a student",
	Long: `Generate questions for the selected syllabus topics and write them to a
YAML draft. Edit the draft, then assign it with "mandarin tutor assign".
Use --assign to skip the draft step.`,
	RunE: runTutorGenerate,
}

var tutorAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign a YAML draft to a student, or replace a pending test's questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		draftPath, _ := cmd.Flags().GetString("draft")
		title, _ := cmd.Flags().GetString("title")
		testID, _ := cmd.Flags().GetString("test")

		d, err := planner.LoadDraft(draftPath)
		if err != nil {
			return err
		}
		if title == "" {
			title = d.Title
		}

		return editStudent(cmd, func(e *env, p profile.Profile) (profile.Profile, error) {
			if testID != "" {
				updated, err := profile.UpdateTest(p, testID, title, d.Questions)
				if err == nil {
					fmt.Printf("Updated test %s (%d questions).\n", testID, len(d.Questions))
				}
				return updated, err
			}
			updated, t := profile.AssignTest(p, title, d.Questions, time.Now())
			fmt.Printf("Assigned %q to %s as %s.\n", t.Title, p.Name, t.ID)
			return updated, nil
		})
	},
}

var tutorTestsCmd = &cobra.Command{
	Use:   "tests",
	Short: "List a student's assigned tests",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("student")
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.loadStudent(cmd.Context(), name)
		if err != nil {
			return err
		}
		pending, completed := p.PendingTests(), p.CompletedTests()
		if len(pending)+len(completed) == 0 {
			fmt.Printf("%s has no tests.\n", p.Name)
			return nil
		}
		fmt.Println("Pending")
		for _, t := range pending {
			fmt.Println("  " + testLine(t))
		}
		fmt.Println("\nCompleted")
		for _, t := range completed {
			fmt.Println("  " + testLine(t))
		}
		return nil
	},
}

var tutorDeleteTestCmd = &cobra.Command{
	Use:   "delete-test",
	Short: "Delete an assigned test",
	RunE: func(cmd *cobra.Command, args []string) error {
		testID, _ := cmd.Flags().GetString("test")
		return snapshotAndEdit(cmd, "delete-test", func(p profile.Profile) (profile.Profile, error) {
			return profile.DeleteTest(p, testID)
		})
	},
}

var tutorOverrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Replace the evaluator's score for one answer",
	RunE: func(cmd *cobra.Command, args []string) error {
		logID, _ := cmd.Flags().GetString("log")
		score, _ := cmd.Flags().GetInt("score")
		feedback, _ := cmd.Flags().GetString("feedback")
		return editStudent(cmd, func(e *env, p profile.Profile) (profile.Profile, error) {
			updated, err := profile.OverrideLog(p, logID, score, feedback)
			if errors.Is(err, profile.ErrAlreadyOverridden) {
				return p, fmt.Errorf("answer %s was already reviewed", logID)
			}
			return updated, err
		})
	},
}

var tutorEditPointCmd = &cobra.Command{
	Use:   "edit-point",
	Short: "Set a learning point's score",
	RunE: func(cmd *cobra.Command, args []string) error {
		pointID, _ := cmd.Flags().GetString("point")
		score, _ := cmd.Flags().GetInt("score")
		return editStudent(cmd, func(e *env, p profile.Profile) (profile.Profile, error) {
			return profile.EditPoint(p, pointID, score, e.Deps.Reconciler)
		})
	},
}

var tutorAppealCmd = &cobra.Command{
	Use:   "appeal",
	Short: "Flag a learning point for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		pointID, _ := cmd.Flags().GetString("point")
		return editStudent(cmd, func(e *env, p profile.Profile) (profile.Profile, error) {
			return profile.AppealPoint(p, pointID)
		})
	},
}

var tutorUnlockAllCmd = &cobra.Command{
	Use:   "unlock-all",
	Short: "Open every learning point",
	RunE: func(cmd *cobra.Command, args []string) error {
		return snapshotAndEdit(cmd, "unlock-all", func(p profile.Profile) (profile.Profile, error) {
			return profile.UnlockAll(p), nil
		})
	},
}

var tutorResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the roadmap to the initial syllabus",
	RunE: func(cmd *cobra.Command, args []string) error {
		return snapshotAndEdit(cmd, "reset", func(p profile.Profile) (profile.Profile, error) {
			return profile.ResetPoints(p), nil
		})
	},
}

var tutorUndoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Restore the student's most recent snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("student")
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		snap, err := e.Deps.Snapshots.Latest(ctx, name)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		if snap == nil {
			return fmt.Errorf("no snapshot for %q", name)
		}
		if err := e.Deps.Profiles.Save(ctx, snap.Data); err != nil {
			return fmt.Errorf("restore %s: %w", name, err)
		}
		fmt.Printf("Restored %s to before %q on %s.\n", name, snap.Reason, snap.Timestamp.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

func runTutorGenerate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("student")
	skillNames, _ := cmd.Flags().GetStringSlice("skill")
	stages, _ := cmd.Flags().GetIntSlice("stage")
	perTopic, _ := cmd.Flags().GetInt("per-topic")
	out, _ := cmd.Flags().GetString("out")
	title, _ := cmd.Flags().GetString("title")
	assign, _ := cmd.Flags().GetBool("assign")

	opts := planner.DefaultOptions()
	opts.TasksPerTopic = perTopic
	if len(skillNames) > 0 {
		skills, err := skill.ParseSkills(skillNames)
		if err != nil {
			return err
		}
		opts.Skills = skills
	}
	if len(stages) > 0 {
		for _, s := range stages {
			if !skill.ValidStage(s) {
				return fmt.Errorf("invalid stage %d", s)
			}
		}
		opts.Stages = stages
	}
	tasks, err := planner.BuildTasks(opts)
	if err != nil {
		return err
	}

	e, err := openEnv(cmd, envOptions{Console: true, LLM: true})
	if err != nil {
		return err
	}
	defer e.Close()
	if e.Deps.Generator == nil {
		return errors.New("no LLM provider configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p, err := e.loadStudent(ctx, name)
	if err != nil {
		return err
	}

	pl := &planner.Planner{Generator: e.Deps.Generator, Log: e.Log}
	questions, genErr := pl.Generate(ctx, tasks, p.Name, func(completed, total int, status string) {
		fmt.Printf("\r[%3d/%3d] %-64s", completed, total, status)
	})
	fmt.Println()
	if errors.Is(genErr, planner.ErrBusy) {
		fmt.Println(planner.BusyStatus)
	}
	if genErr != nil && len(questions) == 0 {
		return genErr
	}
	if genErr != nil {
		fmt.Printf("Stopped early (%v); keeping %d questions.\n", genErr, len(questions))
	}

	if assign {
		updated, t := profile.AssignTest(p, title, questions, time.Now())
		if err := e.Deps.Profiles.Save(ctx, updated); err != nil {
			return fmt.Errorf("save %s: %w", p.Name, err)
		}
		fmt.Printf("Assigned %q (%d questions) as %s.\n", t.Title, len(questions), t.ID)
		return nil
	}

	if out == "" {
		out = fmt.Sprintf("%s-%s.yaml", p.Name, time.Now().Format("20060102-1504"))
	}
	if err := planner.SaveDraft(out, planner.Draft{Student: p.Name, Title: title, Questions: questions}); err != nil {
		return err
	}
	fmt.Printf("Wrote %d questions to %s.\n", len(questions), out)
	return nil
}

// editStudent loads --student, applies fn and saves the result.
func editStudent(cmd *cobra.Command, fn func(*env, profile.Profile) (profile.Profile, error)) error {
	name, _ := cmd.Flags().GetString("student")
	e, err := openEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	p, err := e.loadStudent(ctx, name)
	if err != nil {
		return err
	}
	updated, err := fn(e, p)
	if err != nil {
		return err
	}
	updated.UpdatedAt = time.Now()
	if err := e.Deps.Profiles.Save(ctx, updated); err != nil {
		return fmt.Errorf("save %s: %w", p.Name, err)
	}
	fmt.Println("Saved.")
	return nil
}

// snapshotAndEdit is editStudent with a snapshot taken first, for edits
// that can be undone.
func snapshotAndEdit(cmd *cobra.Command, reason string, fn func(profile.Profile) (profile.Profile, error)) error {
	return editStudent(cmd, func(e *env, p profile.Profile) (profile.Profile, error) {
		if err := e.Deps.Snapshot(cmd.Context(), p, reason, snapshotKeep); err != nil {
			return p, err
		}
		return fn(p)
	})
}

func testLine(t profile.AssignedTest) string {
	status := "pending"
	if t.Completed() {
		status = fmt.Sprintf("completed %s, %d/100", t.CompletedAt.Local().Format("2006-01-02"), *t.OverallScore)
	}
	return fmt.Sprintf("%s  %-30s  %2d questions  %s", t.ID, truncate(t.Title, 30), len(t.Questions), status)
}

func init() {
	for _, c := range []*cobra.Command{
		tutorGenerateCmd, tutorAssignCmd, tutorTestsCmd, tutorDeleteTestCmd,
		tutorOverrideCmd, tutorEditPointCmd, tutorAppealCmd,
		tutorUnlockAllCmd, tutorResetCmd, tutorUndoCmd,
	} {
		c.Flags().String("student", "", "Student name (required)")
		_ = c.MarkFlagRequired("student")
		tutorCmd.AddCommand(c)
	}

	tutorGenerateCmd.Flags().StringSlice("skill", nil, "Skills to cover (default all)")
	tutorGenerateCmd.Flags().IntSlice("stage", nil, "Stages to cover, 1-6 (default all)")
	tutorGenerateCmd.Flags().Int("per-topic", 1, "Questions per syllabus topic")
	tutorGenerateCmd.Flags().String("title", "", "Test title")
	tutorGenerateCmd.Flags().StringP("out", "o", "", "Draft file to write")
	tutorGenerateCmd.Flags().Bool("assign", false, "Assign directly instead of writing a draft")

	tutorAssignCmd.Flags().String("draft", "", "YAML draft to assign (required)")
	tutorAssignCmd.Flags().String("title", "", "Test title (defaults to the draft's)")
	tutorAssignCmd.Flags().String("test", "", "Replace the questions of this pending test instead")
	_ = tutorAssignCmd.MarkFlagRequired("draft")

	tutorDeleteTestCmd.Flags().String("test", "", "Test ID (required)")
	_ = tutorDeleteTestCmd.MarkFlagRequired("test")

	tutorOverrideCmd.Flags().String("log", "", "Answer log ID (required)")
	tutorOverrideCmd.Flags().Int("score", 0, "New score, 0-100")
	tutorOverrideCmd.Flags().String("feedback", "", "Tutor feedback")
	_ = tutorOverrideCmd.MarkFlagRequired("log")
	_ = tutorOverrideCmd.MarkFlagRequired("score")

	tutorEditPointCmd.Flags().String("point", "", "Learning point ID, e.g. lp-1-1 (required)")
	tutorEditPointCmd.Flags().Int("score", 0, "New score, 0-100")
	_ = tutorEditPointCmd.MarkFlagRequired("point")
	_ = tutorEditPointCmd.MarkFlagRequired("score")

	tutorAppealCmd.Flags().String("point", "", "Learning point ID (required)")
	_ = tutorAppealCmd.MarkFlagRequired("point")
}
