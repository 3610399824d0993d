package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	askSession string
	askJSON    bool
	askTrace   bool
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Answer a single query and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer rt.Close()

		sessionID := askSession
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		query := strings.Join(args, " ")
		res := rt.engine.Process(cmd.Context(), query, sessionID)

		if askJSON {
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Println(res.FinalResponse)
		if res.Warning != "" {
			fmt.Fprintf(os.Stderr, "warning: %s\n", res.Warning)
		}
		if askTrace {
			fmt.Println(res.Summary())
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askSession, "session", "", "Run the query inside an existing session")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the full run result as JSON")
	askCmd.Flags().BoolVar(&askTrace, "trace", false, "Print the run trace after the reply")
}
