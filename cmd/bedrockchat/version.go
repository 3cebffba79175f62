package main

import (
	"context"
	"fmt"

	"github.com/a-h/bedrockchat"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(bedrockchat.Version)
	return nil
}
