package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
	"github.com/TIMOVIS/mandarin-exam/internal/store"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the student roster",
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all students",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		roster, err := e.Deps.Profiles.Roster(cmd.Context())
		if err != nil {
			return fmt.Errorf("list students: %w", err)
		}
		if len(roster) == 0 {
			fmt.Println("No students yet.")
			return nil
		}

		fmt.Printf("%-24s  %4s  %6s  %s\n", "Name", "Age", "Tests", "Comments")
		fmt.Println(strings.Repeat("─", 72))
		for _, r := range roster {
			fmt.Printf("%-24s  %4d  %6d  %s\n", truncate(r.Name, 24), r.Age, r.TestsCount, r.Comments)
		}
		fmt.Printf("\n%d students\n", len(roster))
		return nil
	},
}

var rosterAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a new student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		age, _ := cmd.Flags().GetInt("age")
		comments, _ := cmd.Flags().GetString("comments")

		p, err := profile.New(args[0], age)
		if err != nil {
			return err
		}
		p.Comments = comments

		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.Deps.Profiles.Create(cmd.Context(), p); err != nil {
			if errors.Is(err, store.ErrDuplicateName) {
				return fmt.Errorf("a student named %q already exists", p.Name)
			}
			return fmt.Errorf("create student: %w", err)
		}
		fmt.Printf("Added %s (age %d) with %d learning points.\n", p.Name, p.Age, len(p.Points))
		return nil
	},
}

var rosterDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a student and all their data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		p, err := e.loadStudent(ctx, args[0])
		if err != nil {
			return err
		}
		if err := e.Deps.Snapshot(ctx, p, "delete", snapshotKeep); err != nil {
			return err
		}
		if err := e.Deps.Profiles.Delete(ctx, p.Name); err != nil {
			return fmt.Errorf("delete student: %w", err)
		}
		fmt.Printf("Deleted %s.\n", p.Name)
		return nil
	},
}

func init() {
	rosterAddCmd.Flags().Int("age", 14, "Student age")
	rosterAddCmd.Flags().String("comments", "", "Tutor notes")

	rosterCmd.AddCommand(rosterListCmd)
	rosterCmd.AddCommand(rosterAddCmd)
	rosterCmd.AddCommand(rosterDeleteCmd)
}
