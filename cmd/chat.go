package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bizpulse/bizdash/internal"
	"github.com/bizpulse/bizdash/internal/api"
	"github.com/bizpulse/bizdash/internal/assistant"
	"github.com/bizpulse/bizdash/pkg/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the conversational data assistant",
	Long: `Interactive session against the natural-language query endpoint.
Type a question and press enter. Commands: /prompts lists quick prompts,
/p N submits quick prompt N, /quit exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}

	_, client, err := signIn(cfg)
	if err != nil {
		return err
	}

	sess := assistant.NewSession(api.NewAssistantClient(client), logger.L())
	defer sess.Close()

	fmt.Println("Ask me anything about your business data. /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit":
			return nil
		case line == "/prompts":
			for i, p := range assistant.QuickPrompts {
				fmt.Printf("  %d. %s\n", i+1, p)
			}
			continue
		case strings.HasPrefix(line, "/p "):
			n, convErr := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/p ")))
			if convErr != nil || n < 1 || n > len(assistant.QuickPrompts) {
				fmt.Println("unknown prompt number")
				continue
			}
			submit(cfg, sess, assistant.QuickPrompts[n-1], true)
			continue
		case line == "":
			continue
		}

		submit(cfg, sess, line, false)
	}
}

func submit(cfg *internal.Config, sess *assistant.Session, text string, quick bool) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.RequestTimeout)
	defer cancel()

	var err error
	if quick {
		err = sess.AskPrompt(ctx, text)
	} else {
		err = sess.Ask(ctx, text)
	}
	if err != nil {
		if errors.Is(err, internal.ErrQueryPending) {
			fmt.Println("(still thinking, hold on)")
			return
		}
		fmt.Printf("(%v)\n", err)
		return
	}

	transcript := sess.Transcript()
	if len(transcript) == 0 {
		return
	}
	last := transcript[len(transcript)-1]
	fmt.Println(last.Text)

	if last.SQL != "" {
		fmt.Printf("  sql: %s\n", last.SQL)
	}

	if table, ok := assistant.TableFor(last); ok {
		fmt.Printf("  %s\n", strings.Join(table.Columns, " | "))
		for _, row := range table.Rows {
			fmt.Printf("  %s\n", strings.Join(row, " | "))
		}
		if table.Truncated > 0 {
			fmt.Printf("  (showing first %d of %d rows, %d more)\n",
				len(table.Rows), table.TotalRows, table.Truncated)
		}
	}
}
