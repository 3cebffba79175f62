package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/a-h/bedrockchat/client"
)

type ModelsCommand struct {
	ServerURL    string `help:"The URL of the chat server." env:"CHAT_SERVER_URL" default:"http://localhost:9020"`
	ServerAPIKey string `help:"The API key for the chat server." env:"CHAT_SERVER_API_KEY" default:""`
}

func (c ModelsCommand) Run(ctx context.Context) (err error) {
	rsc := client.New(c.ServerURL, c.ServerAPIKey)
	resp, err := rsc.ModelsGet(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPROVIDER")
	for _, m := range resp.Models {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, m.Name, m.Provider)
	}
	return tw.Flush()
}
