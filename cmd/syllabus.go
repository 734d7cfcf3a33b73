package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TIMOVIS/mandarin-exam/internal/roadmap"
	"github.com/TIMOVIS/mandarin-exam/internal/skill"
)

var syllabusCmd = &cobra.Command{
	Use:   "syllabus",
	Short: "List the learning points of the roadmap (optionally filtered by skill or stage)",
	RunE: func(cmd *cobra.Command, args []string) error {
		skillNames, _ := cmd.Flags().GetStringSlice("skill")
		stages, _ := cmd.Flags().GetIntSlice("stage")

		skills := skill.AllSkills()
		if len(skillNames) > 0 {
			var err error
			if skills, err = skill.ParseSkills(skillNames); err != nil {
				return err
			}
		}
		if len(stages) == 0 {
			stages = skill.AllStages()
		}

		points := roadmap.Filter(roadmap.Syllabus(), skills, stages)
		if len(points) == 0 {
			return fmt.Errorf("no learning points match")
		}

		fmt.Printf("%-8s  %5s  %-10s  %s\n", "ID", "Stage", "Skill", "Topic")
		fmt.Println(strings.Repeat("─", 80))
		for _, p := range points {
			fmt.Printf("%-8s  %5d  %-10s  %s\n", p.ID, p.Stage, p.Skill, p.Topic)
		}
		fmt.Printf("\n%d learning points\n", len(points))
		return nil
	},
}

func init() {
	syllabusCmd.Flags().StringSlice("skill", nil, "Filter by skill (e.g. Reading)")
	syllabusCmd.Flags().IntSlice("stage", nil, "Filter by stage, 1-6")
}
