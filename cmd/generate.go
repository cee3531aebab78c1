package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursegen/internal/course"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a course from the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		hours, _ := cmd.Flags().GetInt("hours")
		difficulty, _ := cmd.Flags().GetString("difficulty")
		user, _ := cmd.Flags().GetString("user")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.LLM.Validate(); err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		docs, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer docs.Close()

		ctx := cmd.Context()
		svc, err := buildServices(ctx, cfg, docs, log)
		if err != nil {
			return err
		}

		c, err := svc.courses.Generate(ctx, user, course.GenerateRequest{
			Topic:         topic,
			DurationHours: hours,
			Difficulty:    course.CourseDifficulty(difficulty),
		})
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		}

		fmt.Printf("Course:     %s\n", c.Title)
		fmt.Printf("ID:         %s\n", c.ID)
		fmt.Printf("Owner:      %s\n", c.UserID)
		fmt.Printf("Difficulty: %s, %d hours\n", c.Difficulty, c.DurationHours)
		fmt.Printf("Model:      %s\n", svc.provider.ModelID())
		fmt.Println()
		for i, m := range c.Modules {
			fmt.Printf("%d. %s\n", i+1, m.Title)
			for j, l := range m.Lessons {
				fmt.Printf("   %d.%d %-40s  %-10s  %d questions\n", i+1, j+1, truncate(l.Title, 40), l.BloomLevel, len(l.Quiz))
			}
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringP("topic", "t", "", "Course topic (3-200 characters)")
	generateCmd.Flags().Int("hours", 10, "Target duration in hours (1-100)")
	generateCmd.Flags().StringP("difficulty", "d", "Intermediate", "Beginner, Intermediate or Advanced")
	generateCmd.Flags().String("user", "", "Owner user ID (default: default_user)")
	generateCmd.Flags().Bool("json", false, "Print the full course as JSON")
	_ = generateCmd.MarkFlagRequired("topic")
}
