package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	chatSession   string
	chatShowTrace bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive storefront conversation",
	Long: `Start an interactive conversation. Each line is processed as one query
against the same session, so follow-up questions see prior context.

Type "exit" or "quit" to leave, "new" to start a fresh session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := newRuntime(ctx, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		sessionID := chatSession
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		fmt.Printf("concierge ready (model %s, session %s)\n", rt.model, sessionID)

		s := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("you> ")
			if !s.Scan() {
				break
			}
			line := strings.TrimSpace(s.Text())
			switch line {
			case "":
				continue
			case "exit", "quit":
				return nil
			case "new":
				sessionID = uuid.NewString()
				fmt.Printf("started session %s\n", sessionID)
				continue
			}

			res := rt.engine.Process(ctx, line, sessionID)
			fmt.Println(res.FinalResponse)
			if res.Warning != "" {
				fmt.Fprintf(os.Stderr, "warning: %s\n", res.Warning)
			}
			if chatShowTrace {
				fmt.Println(res.Summary())
			}
			fmt.Println()

			if ctx.Err() != nil {
				return nil
			}
		}
		return s.Err()
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "Resume an existing session id")
	chatCmd.Flags().BoolVar(&chatShowTrace, "trace", false, "Print the run trace after each reply")
}
