package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TIMOVIS/mandarin-exam/internal/config"
	"github.com/TIMOVIS/mandarin-exam/internal/grading"
	"github.com/TIMOVIS/mandarin-exam/internal/llm"
	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
	"github.com/TIMOVIS/mandarin-exam/internal/session"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview LLM-generated questions for a skill (no database)",
	Long: `Generate and interactively answer questions for one skill and stage.

This is a stateless developer tool: no database, no roadmap updates, no events.
Useful for evaluating question and grading quality.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("skill", "", "Skill name, e.g. Reading (required)")
	previewCmd.Flags().Int("stage", skill.MinStage, "Syllabus stage, 1-6")
	previewCmd.Flags().String("difficulty", "Medium", "Easy, Medium or Hard")
	previewCmd.Flags().Int("count", 5, "Number of questions to generate")
	_ = previewCmd.MarkFlagRequired("skill")
}

func runPreview(cmd *cobra.Command, args []string) error {
	skillVal, _ := cmd.Flags().GetString("skill")
	stage, _ := cmd.Flags().GetInt("stage")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")

	sk, err := skill.ParseSkill(skillVal)
	if err != nil {
		return err
	}
	if !skill.ValidStage(stage) {
		return fmt.Errorf("invalid stage %d", stage)
	}
	points := roadmap.Filter(roadmap.Syllabus(), []skill.Skill{sk}, []int{stage})
	if len(points) == 0 {
		return fmt.Errorf("no syllabus topic for %s stage %d", sk, stage)
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !cfg.LLMConfigured {
		return errors.New("no LLM provider configured")
	}

	// No EventRepo; logging skipped.
	ctx := context.Background()
	provider, err := llm.NewProvider(ctx, cfg.LLM, nil, nil)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	gen := questiongen.New(provider, questiongen.DefaultConfig())

	tasks := make([]questiongen.Task, 0, count)
	for i := range count {
		lp := points[i%len(points)]
		tasks = append(tasks, questiongen.Task{
			Topic:           lp.Topic,
			Skill:           sk,
			Stage:           stage,
			Difficulty:      skill.ParseDifficulty(difficulty),
			LearningPointID: lp.ID,
		})
	}

	fmt.Printf("Skill: %s, stage %d (%s)\n", sk, stage, strings.Join(topics(points), ", "))
	fmt.Printf("Generating %d questions...\n\n", count)
	questions, err := gen.Generate(ctx, tasks, "Preview")
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	out := cmd.OutOrStdout()
	lines := readLines(cmd.InOrStdin())
	ctrl := &session.Controller{
		Source:    session.PlannedSource{Plan: questions},
		Evaluator: grading.New(provider, nil),
		OnOutcome: func(o session.Outcome) { printOutcome(out, o) },
	}
	final, err := ctrl.Run(ctx, session.NewPlanned(questions), func(ctx context.Context, position int, q questiongen.Question) (session.Submission, error) {
		printQuestion(out, position, len(questions), q, true)
		return awaitAnswer(ctx, lines, q, true)
	})
	if err != nil && !errors.Is(err, errInputClosed) {
		return err
	}

	printSummary(out, session.BuildSummary(final))
	return nil
}

func topics(points []roadmap.LearningPoint) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		out = append(out, p.Topic)
	}
	return out
}
