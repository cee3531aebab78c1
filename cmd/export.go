package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursegen/internal/course"
	"github.com/abhisek/coursegen/internal/export"
	"github.com/abhisek/coursegen/internal/progress"
)

var exportCmd = &cobra.Command{
	Use:   "export <course-id>",
	Short: "Export a course and a learner's progress as an xlsx workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		user, _ := cmd.Flags().GetString("user")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		docs, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer docs.Close()

		ctx := cmd.Context()
		c, err := course.NewFileRepository(docs).LoadCourse(ctx, args[0])
		if err != nil {
			return err
		}
		if user == "" {
			user = c.UserID
		}
		p, err := progress.NewFileStore(docs).LoadProgress(ctx, c.ID, user)
		if err != nil && !errors.Is(err, progress.ErrNotFound) {
			return err
		}

		if out == "" {
			out = c.ID + ".xlsx"
		}
		var w io.Writer = os.Stdout
		if out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}
		if err := export.Write(w, c, p); err != nil {
			return err
		}
		if out != "-" {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file, or - for stdout (default: <course-id>.xlsx)")
	exportCmd.Flags().String("user", "", "Learner whose progress to include (default: the course owner)")
}
