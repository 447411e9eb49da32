package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/kjardine00/Fantasy-Sports-APP-sub000/go/internal/dbconfig"
)

// Seed is the fixture layout: a player pool plus leagues with their members.
type Seed struct {
	Players []Player `json:"players"`
	Leagues []League `json:"leagues"`
}

type Player struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Position string    `json:"position"`
	TeamAbbr string    `json:"team_abbr"`
}

type League struct {
	ID      uuid.UUID `json:"id"`
	Members []Member  `json:"members"`
}

type Member struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"`
	TeamName string    `json:"team_name"`
}

type counts struct {
	total, inserted, skipped, errs int
}

func (c *counts) record(rows int64, err error) {
	c.total++
	switch {
	case err != nil:
		c.errs++
		fmt.Fprintf(os.Stderr, "insert error: %v\n", err)
	case rows == 1:
		c.inserted++
	default:
		c.skipped++
	}
}

func main() {
	path := flag.String("file", "go/internal/assets/draft_seed.json", "seed fixture")
	schema := flag.String("schema", "go/internal/draft/db/schema.sql", "schema applied before seeding; empty to skip")
	flag.Parse()

	ctx := context.Background()

	// 1) Load the fixture
	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *path, err)
		os.Exit(1)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal seed: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect to DB
	pool, err := dbconfig.NewConfigFromEnv().Connect(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Apply the schema; every statement in it is idempotent
	if *schema != "" {
		ddl, err := os.ReadFile(*schema)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read schema: %v\n", err)
			os.Exit(1)
		}
		if _, err := pool.Exec(ctx, string(ddl)); err != nil {
			fmt.Fprintf(os.Stderr, "apply schema: %v\n", err)
			os.Exit(1)
		}
	}

	// 4) Seed players
	var pc counts
	for _, p := range seed.Players {
		tag, err := pool.Exec(ctx, `
            INSERT INTO players (id, full_name, position, team_abbr)
            VALUES ($1,$2,$3,$4)
            ON CONFLICT (id) DO NOTHING
        `, p.ID, p.FullName, p.Position, p.TeamAbbr)
		pc.record(tag.RowsAffected(), err)
	}
	fmt.Printf("Players seed: total=%d inserted=%d skipped=%d errors=%d\n", pc.total, pc.inserted, pc.skipped, pc.errs)

	// 5) Seed league members
	var mc counts
	for _, l := range seed.Leagues {
		for _, m := range l.Members {
			role := m.Role
			if role == "" {
				role = "member"
			}
			tag, err := pool.Exec(ctx, `
                INSERT INTO league_members (id, league_id, user_id, role, team_name)
                VALUES ($1,$2,$3,$4,$5)
                ON CONFLICT (league_id, user_id) DO NOTHING
            `, m.ID, l.ID, m.UserID, role, m.TeamName)
			mc.record(tag.RowsAffected(), err)
		}
	}
	fmt.Printf("League members seed: total=%d inserted=%d skipped=%d errors=%d\n", mc.total, mc.inserted, mc.skipped, mc.errs)
}
