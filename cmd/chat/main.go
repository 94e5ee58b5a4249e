package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"food-rag-be/pkg/chatclient"
	"food-rag-be/pkg/store"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	userID := flag.String("user", "", "user id whose stored preferences apply")
	mealType := flag.String("meal", "", "meal type filter (breakfast, lunch, dinner, snack, dessert)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := chatclient.New(*baseURL, nil)
	sessionID := uuid.NewString()

	color.Cyan("Food assistant at %s (session %s). Empty line to quit.", *baseURL, sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		color.New(color.FgYellow, color.Bold).Print("\nyou> ")
		if !scanner.Scan() {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			return
		}

		req := chatclient.Request{
			Message:   text,
			UserID:    *userID,
			SessionID: sessionID,
			MealType:  *mealType,
		}

		color.New(color.FgGreen, color.Bold).Print("assistant> ")
		printed := 0
		reply, err := client.Stream(ctx, req, func(m store.Message) {
			if !m.Failed && len(m.Content) > printed {
				fmt.Print(m.Content[printed:])
				printed = len(m.Content)
			}
		})
		fmt.Println()
		msg := reply.Message
		if reply.Dropped > 0 {
			color.New(color.Faint).Printf("(%d malformed frames skipped)\n", reply.Dropped)
		}

		switch {
		case errors.Is(err, chatclient.ErrIncomplete):
			color.Yellow("(reply was cut off)")
		case err != nil:
			color.Red("%s (%v)", chatclient.Apology, err)
		case msg.Failed:
			color.Red("%s", chatclient.Apology)
		}
		if ctx.Err() != nil {
			return
		}
	}
}
