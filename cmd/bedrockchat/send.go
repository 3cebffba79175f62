package main

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/a-h/bedrockchat/client"
	"github.com/a-h/bedrockchat/models"
)

type SendCommand struct {
	ServerURL    string   `help:"The URL of the chat server." env:"CHAT_SERVER_URL" default:"http://localhost:9020"`
	ServerAPIKey string   `help:"The API key for the chat server." env:"CHAT_SERVER_API_KEY" default:""`
	Model        string   `help:"The model to use. The server default is used if empty." env:"MODEL" default:""`
	File         []string `help:"Files to attach to the message." short:"f"`
	Message      string   `arg:"" help:"The message to send."`
	LogLevel     string   `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c SendCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)
	rsc := client.New(c.ServerURL, c.ServerAPIKey)

	req := models.ChatPostRequest{
		Message: c.Message,
		ModelID: c.Model,
	}
	var resp models.ChatPostResponse
	if len(c.File) == 0 {
		resp, err = rsc.ChatPost(ctx, req)
	} else {
		var attachments []models.Attachment
		if attachments, err = readAttachments(c.File); err != nil {
			return err
		}
		log.Debug("sending attachments", slog.Int("count", len(attachments)))
		resp, err = rsc.ChatPostMultipart(ctx, req, attachments)
	}
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	fmt.Println(resp.Response)
	return nil
}

func readAttachments(names []string) (attachments []models.Attachment, err error) {
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment: %w", err)
		}
		attachments = append(attachments, models.Attachment{
			Name:      filepath.Base(name),
			MediaType: mime.TypeByExtension(filepath.Ext(name)),
			Data:      data,
		})
	}
	return attachments, nil
}
