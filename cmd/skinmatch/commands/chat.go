package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ashureev/skinmatch/internal/agent"
	"github.com/ashureev/skinmatch/internal/session"
)

const cliSessionID = "cli"

var exitWords = []string{"exit", "quit", "keluar"}

func newChatCommand(opts *options) *cobra.Command {
	var showIntent bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in the terminal",
		Long:  "Reads one message per line from stdin and prints each reply. Type exit or quit to leave.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lx, rec, catalog, err := opts.recommender(cmd)
			if err != nil {
				return err
			}
			engine := agent.NewEngine(lx, rec,
				agent.WithDefaultPageSize(opts.cfg.Recommend.DefaultPageSize),
				agent.WithMaxPageSize(opts.cfg.Recommend.MaxPageSize),
			)
			svc := agent.NewService(engine, session.NewStore(catalog))
			defer svc.Close()

			out := cmd.OutOrStdout()
			prompt := color.New(color.FgCyan, color.Bold)
			bot := color.New(color.FgGreen)
			label := color.New(color.Faint)

			fmt.Fprintf(out, "Skinmatch siap membantu (%d produk). Ketik 'exit' untuk keluar.\n", catalog.Len())
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				prompt.Fprint(out, "kamu> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if isExit(line) {
					break
				}
				resp, err := svc.Chat(cmd.Context(), agent.ChatRequest{SessionID: cliSessionID, Message: line})
				if err != nil {
					return fmt.Errorf("chat: %w", err)
				}
				if showIntent {
					label.Fprintf(out, "[%s]\n", resp.Intent)
				}
				bot.Fprintln(out, resp.Reply)
			}
			return scanner.Err()
		},
	}
	cmd.Flags().BoolVar(&showIntent, "show-intent", false, "print the classified intent before each reply")
	return cmd
}

func isExit(line string) bool {
	for _, w := range exitWords {
		if strings.EqualFold(line, w) {
			return true
		}
	}
	return false
}
