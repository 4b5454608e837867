package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"glowdesk/internal/chat"
	"glowdesk/internal/db"
	"glowdesk/internal/models"
	"glowdesk/internal/server"
	"glowdesk/internal/styles"
	"glowdesk/internal/ui"
	"glowdesk/internal/view"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runInteractive(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	var resumed []models.Message
	if resumeChatID != 0 {
		if resumed, err = a.loadChat(resumeChatID); err != nil {
			return err
		}
		a.logger.Info("resuming chat", zap.Int64("chat_id", resumeChatID), zap.Int("messages", len(resumed)))
	}

	// only the first session resumes; Ctrl+N starts fresh ones
	chatID := resumeChatID
	factory := func(r view.Renderer) *chat.Session {
		s := a.newSession(r, resumed, chatID)
		resumed, chatID = nil, 0
		return s
	}

	p := ui.NewProgram(ui.Options{
		NewSession:  factory,
		Logger:      a.logger,
		ModelName:   a.cfg.LLM.Model,
		Greeting:    a.cfg.Chat.Greeting,
		PendingText: a.cfg.Chat.PendingText,
	})
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat interface failed: %w", err)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	buf := &view.Buffer{}
	session := a.newSession(buf, nil, 0)
	_, err = session.Submit(ctx, strings.Join(args, " "))

	out := cmd.OutOrStdout()
	for _, it := range buf.Items() {
		switch it.Class {
		case view.ClassUser:
			fmt.Fprintln(out, styles.UserLabelStyle.Render("You:")+" "+it.Text)
		default:
			fmt.Fprintln(out, styles.AiLabelStyle.Render("AI:")+" "+it.Text)
		}
	}
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Validate already rejected a malformed TTL
	ttl, _ := a.cfg.SessionTTL()
	srv := server.New(server.Options{
		NewSession: func(r view.Renderer) *chat.Session {
			return a.newSession(r, nil, 0)
		},
		Logger:         a.logger,
		RequestTimeout: a.timeout,
		SessionTTL:     ttl,
		MaxSessions:    a.cfg.Server.MaxSessions,
	})
	return srv.Run(ctx, addr)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store == nil {
		return errors.New("transcript archive is disabled")
	}
	if historyLimit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", historyLimit)
	}

	total, chats, err := a.store.RecentChats(historyLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list chats: %w", err)
	}

	out := cmd.OutOrStdout()
	if total == 0 {
		fmt.Fprintln(out, "No archived chats yet.")
		return nil
	}
	for _, c := range chats {
		updated := time.Unix(c.UpdatedAtUnix, 0).Format("2006-01-02 15:04")
		prompt := ui.TruncateWidth(db.PromptPreview(c.LastUserPrompt), 60)
		fmt.Fprintf(out, "%5d  %s  %-12s  %s\n", c.ID, updated, c.ModelID, prompt)
	}
	if total > len(chats) {
		fmt.Fprintf(out, "(%d of %d chats)\n", len(chats), total)
	}
	fmt.Fprintln(out, "Resume one with: glowdesk --resume <id>")
	return nil
}
