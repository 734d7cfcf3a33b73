// Package planner builds tutor-assigned tests by generating questions for
// selected syllabus topics in small batches.
package planner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/TIMOVIS/mandarin-exam/internal/logger"
	"github.com/TIMOVIS/mandarin-exam/internal/questiongen"
	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

// ChunkSize is the number of tasks sent to the generator per call.
const ChunkSize = 5

var (
	ErrNoSelection = errors.New("select at least one skill and one stage")
	ErrNoTopics    = errors.New("no syllabus topics match the selection")
	ErrCancelled   = errors.New("generation cancelled")
	ErrBusy        = errors.New("question generation failed")
)

// BusyStatus is the progress status reported when a chunk fails.
const BusyStatus = "Generation encountered an error. The model might be busy."

// statusMessages rotate through the progress callback while chunks run.
var statusMessages = []string{
	"Bulk-processing IGCSE-aligned reading passages...",
	"Synthesizing custom audio scripts for listening tasks...",
	"Generating context-aware grammar challenges...",
	"Filtering vocabulary for Year 9 proficiency levels...",
	"Optimizing question difficulty mix...",
	"Constructing multi-modal assessment tasks...",
	"Finalizing Chinese-English bilingual instructions...",
}

// Options selects what to generate.
type Options struct {
	Skills        []skill.Skill
	Stages        []int
	TasksPerTopic int
	Difficulties  []skill.Difficulty
}

// DefaultOptions selects every skill and stage, one Medium task per topic
// with Hard on the second.
func DefaultOptions() Options {
	return Options{
		Skills:        skill.AllSkills(),
		Stages:        skill.AllStages(),
		TasksPerTopic: 1,
		Difficulties:  []skill.Difficulty{skill.Medium, skill.Hard},
	}
}

// Progress is told how many questions exist so far out of the number of
// tasks, with a status line.
type Progress func(completed, total int, status string)

// BuildTasks expands the selection into generation tasks, TasksPerTopic per
// matching syllabus topic, cycling through the difficulty mix.
func BuildTasks(opts Options) ([]questiongen.Task, error) {
	if len(opts.Skills) == 0 || len(opts.Stages) == 0 {
		return nil, ErrNoSelection
	}
	if opts.TasksPerTopic <= 0 {
		opts.TasksPerTopic = 1
	}
	if len(opts.Difficulties) == 0 {
		opts.Difficulties = DefaultOptions().Difficulties
	}

	points := roadmap.Filter(roadmap.Syllabus(), opts.Skills, opts.Stages)
	if len(points) == 0 {
		return nil, ErrNoTopics
	}

	tasks := make([]questiongen.Task, 0, len(points)*opts.TasksPerTopic)
	for _, p := range points {
		for i := range opts.TasksPerTopic {
			tasks = append(tasks, questiongen.Task{
				Topic:           p.Topic,
				Skill:           p.Skill,
				Stage:           p.Stage,
				Difficulty:      opts.Difficulties[i%len(opts.Difficulties)],
				LearningPointID: p.ID,
			})
		}
	}
	return tasks, nil
}

// Planner runs chunked generation.
type Planner struct {
	Generator questiongen.Generator
	Log       *zap.Logger
}

// Generate runs the tasks through the generator ChunkSize at a time, in
// order. Cancellation is checked before every chunk and returns the
// questions so far with ErrCancelled. A generator failure stops the run
// and returns the questions so far with an error wrapping both ErrBusy and
// the cause.
func (p *Planner) Generate(ctx context.Context, tasks []questiongen.Task, student string, progress Progress) ([]questiongen.Question, error) {
	log := logger.OrNop(p.Log)
	if progress == nil {
		progress = func(int, int, string) {}
	}

	total := len(tasks)
	var out []questiongen.Question
	for i, chunk := 0, 0; i < total; i, chunk = i+ChunkSize, chunk+1 {
		if ctx.Err() != nil {
			progress(len(out), total, "Generation cancelled.")
			return out, ErrCancelled
		}

		end := min(i+ChunkSize, total)
		progress(len(out), total, statusMessages[chunk%len(statusMessages)])

		qs, err := p.Generator.Generate(ctx, tasks[i:end], student)
		if err != nil {
			log.Warn("chunk generation failed",
				zap.Int("chunk", chunk),
				zap.Int("collected", len(out)),
				zap.Error(err))
			progress(len(out), total, BusyStatus)
			return out, fmt.Errorf("%w: %w", ErrBusy, err)
		}
		out = append(out, qs...)
		progress(len(out), total, statusMessages[chunk%len(statusMessages)])
	}

	progress(len(out), total, "Generation Complete!")
	log.Info("test generated", zap.Int("tasks", total), zap.Int("questions", len(out)))
	return out, nil
}
