package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"shudao.quest/internal/persistence/backup"
	"shudao.quest/internal/persistence/store"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "player":
			playerCmd(os.Args[2:])
			return
		case "board":
			boardCmd(os.Args[2:])
			return
		case "purge":
			purgeCmd(os.Args[2:])
			return
		case "backup":
			backupCmd(os.Args[2:])
			return
		case "restore":
			restoreCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func openStore(path string) *store.Store {
	s, err := store.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	return s
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dbPath := fs.String("db", "./data/store/shudao.sqlite", "sqlite store path")
	_ = fs.Parse(args)

	s := openStore(*dbPath)
	defer s.Close()

	err := s.ForEachPlayer(func(playerID string, data []byte) error {
		fmt.Printf("%s\t%d bytes\n", playerID, len(data))
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(1)
	}
}

func playerCmd(args []string) {
	fs := flag.NewFlagSet("player", flag.ExitOnError)
	dbPath := fs.String("db", "./data/store/shudao.sqlite", "sqlite store path")
	id := fs.String("id", "", "player id")
	_ = fs.Parse(args)

	if strings.TrimSpace(*id) == "" {
		fmt.Fprintln(os.Stderr, "missing -id")
		os.Exit(2)
	}

	s := openStore(*dbPath)
	defer s.Close()

	data, found, err := s.LoadPlayer(*id)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load:", err)
		os.Exit(1)
	}
	if !found {
		fmt.Fprintln(os.Stderr, "no save for", *id)
		os.Exit(1)
	}

	var pretty map[string]any
	if err := json.Unmarshal(data, &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Println(string(data))
}

func boardCmd(args []string) {
	fs := flag.NewFlagSet("board", flag.ExitOnError)
	dbPath := fs.String("db", "./data/store/shudao.sqlite", "sqlite store path")
	_ = fs.Parse(args)

	s := openStore(*dbPath)
	defer s.Close()

	entries, err := s.Leaderboard()
	if err != nil {
		fmt.Fprintln(os.Stderr, "leaderboard:", err)
		os.Exit(1)
	}
	for i, e := range entries {
		fmt.Printf("%3d  %-24s realm=%d exp=%d\n", i+1, e.PlayerName, e.Realm, e.Exp)
	}
}

func purgeCmd(args []string) {
	fs := flag.NewFlagSet("purge", flag.ExitOnError)
	dbPath := fs.String("db", "./data/store/shudao.sqlite", "sqlite store path")
	_ = fs.Parse(args)

	s := openStore(*dbPath)
	defer s.Close()

	n, err := s.PurgeExpired()
	if err != nil {
		fmt.Fprintln(os.Stderr, "purge:", err)
		os.Exit(1)
	}
	fmt.Printf("purged %d expired saves\n", n)
}

func backupCmd(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	dbPath := fs.String("db", "./data/store/shudao.sqlite", "sqlite store path")
	out := fs.String("out", "./data/backups/saves.json.zst", "output archive path")
	_ = fs.Parse(args)

	s := openStore(*dbPath)
	defer s.Close()

	if err := backup.Export(s, *out); err != nil {
		fmt.Fprintln(os.Stderr, "backup:", err)
		os.Exit(1)
	}
	fmt.Println("wrote", *out)
}

func restoreCmd(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	dbPath := fs.String("db", "./data/store/shudao.sqlite", "sqlite store path")
	in := fs.String("in", "", "archive path to restore from")
	_ = fs.Parse(args)

	if strings.TrimSpace(*in) == "" {
		fmt.Fprintln(os.Stderr, "missing -in")
		os.Exit(2)
	}

	arch, err := backup.Read(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read archive:", err)
		os.Exit(1)
	}

	s := openStore(*dbPath)
	defer s.Close()

	restored := 0
	for _, sv := range arch.Players {
		if err := s.SavePlayer(sv.PlayerID, sv.Data); err != nil {
			fmt.Fprintf(os.Stderr, "restore %s: %v\n", sv.PlayerID, err)
			continue
		}
		restored++
	}
	fmt.Printf("restored %d of %d saves (archive from %s)\n", restored, len(arch.Players), arch.CreatedAt.Format("2006-01-02 15:04:05"))
}
