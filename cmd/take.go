package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/TIMOVIS/mandarin-exam/internal/capture"
	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
	"github.com/TIMOVIS/mandarin-exam/internal/session"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

var errInputClosed = errors.New("input closed")

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Take a baseline or assigned test in plain text mode",
	Long: `Run an assessment session without the TUI.

Answer by typing and pressing Enter. For multiple choice type the option
number or the option text. Prefix an answer with "?" to mark it as unsure,
type "!" to skip, or "@path" to answer with a photo. Speaking questions
take "@path" to a recording instead and do not accept typed answers.`,
	RunE: runTake,
}

func init() {
	takeCmd.Flags().String("student", "", "Student name (required)")
	takeCmd.Flags().String("test", "", "Assigned test ID; baseline when empty")
	takeCmd.Flags().StringSlice("skill", nil, "Restrict a baseline to these skills")
	takeCmd.Flags().Bool("no-timer", false, "Disable per-question time limits")
	_ = takeCmd.MarkFlagRequired("student")
}

func runTake(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("student")
	testID, _ := cmd.Flags().GetString("test")
	skillNames, _ := cmd.Flags().GetStringSlice("skill")
	noTimer, _ := cmd.Flags().GetBool("no-timer")

	e, err := openEnv(cmd, envOptions{LLM: true})
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	student, err := e.loadStudent(ctx, name)
	if err != nil {
		return err
	}
	if e.Deps.Evaluator == nil {
		return errors.New("no LLM provider configured; set GEMINI_API_KEY or see --help")
	}

	var (
		source session.Source
		state  session.State
		title  string
	)
	if testID != "" {
		test, ok := student.FindTest(testID)
		if !ok {
			return fmt.Errorf("%s has no test %q", name, testID)
		}
		if test.Completed() {
			return fmt.Errorf("test %q is already completed", testID)
		}
		source = session.PlannedSource{Plan: test.Questions}
		state = session.NewPlanned(test.Questions)
		title = test.Title
	} else {
		skills := skill.AllSkills()
		if len(skillNames) > 0 {
			if skills, err = skill.ParseSkills(skillNames); err != nil {
				return err
			}
		}
		source = session.GeneratedSource{Generator: e.Deps.Generator, Skills: skills, Student: student.Name, Context: student.Comments}
		state = session.New(skills)
		title = "Baseline Assessment"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s for %s: %d questions\n\n", title, student.Name, state.Total)

	lines := readLines(cmd.InOrStdin())
	ctrl := &session.Controller{
		Source:    source,
		Evaluator: e.Deps.Evaluator,
		Log:       e.Log,
		OnOutcome: func(o session.Outcome) { printOutcome(out, o) },
	}
	answer := func(ctx context.Context, position int, q questiongen.Question) (session.Submission, error) {
		printQuestion(out, position, state.Total, q, noTimer)
		return awaitAnswer(ctx, lines, q, noTimer)
	}

	final, err := ctrl.Run(ctx, state, answer)
	if err != nil {
		if errors.Is(err, errInputClosed) {
			fmt.Fprintln(out, "\nSession abandoned; nothing was saved.")
			return nil
		}
		return err
	}

	if _, err := e.Deps.Finish(ctx, student, final, testID); err != nil {
		return err
	}
	printSummary(out, session.BuildSummary(final))
	return nil
}

// readLines feeds stdin lines into a channel that closes at EOF.
func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

// awaitAnswer waits for one line or the question's time limit.
func awaitAnswer(ctx context.Context, lines <-chan string, q questiongen.Question, noTimer bool) (session.Submission, error) {
	var expired <-chan time.Time
	if !noTimer {
		timer := time.NewTimer(time.Duration(q.Limit()) * time.Second)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return session.Submission{}, ctx.Err()
		case <-expired:
			return session.Submission{
				Answer:     capture.Text{Value: session.TimeoutAnswer},
				Confidence: session.None,
				TimedOut:   true,
			}, nil
		case line, ok := <-lines:
			if !ok {
				return session.Submission{}, errInputClosed
			}
			sub, err := parseAnswer(line, q)
			if err != nil {
				fmt.Fprintln(os.Stderr, "  ", err)
				continue
			}
			return sub, nil
		}
	}
}

// parseAnswer turns a typed line into a submission.
func parseAnswer(line string, q questiongen.Question) (session.Submission, error) {
	line = strings.TrimSpace(line)
	conf := session.Confident

	switch {
	case line == "!":
		return session.Submission{Answer: capture.Text{}, Confidence: session.None}, nil
	case strings.HasPrefix(line, "?"):
		conf = session.Partial
		line = strings.TrimSpace(line[1:])
		if line == "" {
			return session.Submission{Answer: capture.Text{}, Confidence: conf}, nil
		}
	case strings.HasPrefix(line, "@"):
		m, err := fileAnswer(line[1:], q)
		if err != nil {
			return session.Submission{}, err
		}
		return session.Submission{Answer: m, Confidence: conf}, nil
	}

	// Unsure answers are not graded on content, so any skill takes them.
	if conf == session.Confident {
		if err := checkMode(q, capture.InputText); err != nil {
			return session.Submission{}, err
		}
	}

	if q.IsMultipleChoice() {
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(q.Options) {
			line = q.Options[n-1]
		}
	}
	text, err := capture.TextAnswer(line)
	if err != nil {
		return session.Submission{}, fmt.Errorf("%w; type ! to skip", err)
	}
	return session.Submission{Answer: text, Confidence: conf}, nil
}

// fileAnswer loads a photo, or a recording when the skill takes no photos.
func fileAnswer(path string, q questiongen.Question) (capture.Media, error) {
	if checkMode(q, capture.InputImage) == nil {
		var picker capture.ImagePicker
		return picker.Load(path)
	}
	if err := checkMode(q, capture.InputAudio); err != nil {
		return capture.Media{}, err
	}
	return capture.LoadAudio(path)
}

func checkMode(q questiongen.Question, mode capture.InputMode) error {
	if !slices.Contains(capture.AllowedModes(q.Skill), mode) {
		return fmt.Errorf("%w: %s answers are not accepted for %s; type ! to skip", capture.ErrModeNotAllowed, mode, q.Skill)
	}
	return nil
}

func printQuestion(w io.Writer, position, total int, q questiongen.Question, noTimer bool) {
	fmt.Fprintf(w, "── Question %d/%d · %s ──\n", position+1, total, q.Skill)
	if q.AudioScript != "" {
		fmt.Fprintf(w, "(listen) %s\n", q.AudioScript)
	}
	fmt.Fprintln(w, q.Content)
	for i, opt := range q.Options {
		fmt.Fprintf(w, "  %d) %s\n", i+1, opt)
	}
	if !noTimer {
		fmt.Fprintf(w, "[%ds]", q.Limit())
	}
	fmt.Fprint(w, "> ")
}

func printOutcome(w io.Writer, o session.Outcome) {
	mark := "✗"
	if o.IsCorrect {
		mark = "✓"
	}
	fmt.Fprintf(w, "%s %d/100  %s\n", mark, o.Score, o.Feedback)
	if !o.IsCorrect && o.Question.CorrectAnswer != "" {
		fmt.Fprintf(w, "  Model answer: %s\n", o.Question.CorrectAnswer)
	}
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, sum session.Summary) {
	fmt.Fprintf(w, "── Summary: %d/%d correct (%.0f%%) ──\n", sum.TotalCorrect, sum.TotalQuestions, sum.Accuracy*100)
	for _, sr := range sum.SkillResults {
		fmt.Fprintf(w, "  %-10s %3d%%  (%d/%d)\n", sr.Skill, sr.Percent, sr.Correct, sr.Attempted)
	}
}
