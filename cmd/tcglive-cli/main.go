package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/peterkuimelis/tcglive/internal/game"
	tcgnet "github.com/peterkuimelis/tcglive/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "join":
		runJoin(os.Args[2:])
	case "cards":
		runCards(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  tcglive-cli join [--addr ADDR] [--game ID] [--role streamer|viewers] [--catalog FILE]")
	fmt.Println("  tcglive-cli cards [--catalog FILE]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  join    Connect to a game server and play one side of a game")
	fmt.Println("  cards   Print the card catalog")
}

func loadCatalog(path string) *game.Catalog {
	var (
		cat *game.Catalog
		err error
	)
	if path == "" {
		cat, err = game.DefaultCatalog()
	} else {
		cat, err = game.LoadCatalog(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cat
}

func runJoin(args []string) {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", "localhost:9000", "server address to connect to")
	gameID := fs.String("game", "lobby", "game ID to join (created if it does not exist)")
	role := fs.String("role", "streamer", "side to play: streamer or viewers")
	catalogFile := fs.String("catalog", "", "card catalog YAML used for card names (default: built in)")
	fs.Parse(args)

	r, err := game.ParseRole(*role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cat := loadCatalog(*catalogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Joining game %q as %s. Type help for commands.\n", *gameID, r)
	if err := tcgnet.Connect(ctx, *addr, *gameID, r, cat, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCards(args []string) {
	fs := flag.NewFlagSet("cards", flag.ExitOnError)
	catalogFile := fs.String("catalog", "", "card catalog YAML (default: built in)")
	fs.Parse(args)

	cat := loadCatalog(*catalogFile)
	for _, id := range cat.IDs() {
		c, _ := cat.Lookup(id)
		stats := ""
		if c.Type == game.CardTypeCreature {
			stats = fmt.Sprintf(" %d/%d", c.Attack, c.Health)
		}
		keywords := ""
		if len(c.Keywords) > 0 {
			kw := make([]string, len(c.Keywords))
			for i, k := range c.Keywords {
				kw[i] = string(k)
			}
			keywords = " [" + strings.Join(kw, ", ") + "]"
		}
		fmt.Printf("%-16s %s %-16s (%d)%s%s  %s\n", c.ID, c.Emoji, c.Name, c.Cost, stats, keywords, c.Effect)
	}
}
