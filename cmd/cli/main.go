package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/thammystudio/studio-crm/internal/config"
	"github.com/thammystudio/studio-crm/internal/lead"
	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/internal/repository"
	"github.com/thammystudio/studio-crm/internal/scheduler"
	"github.com/thammystudio/studio-crm/pkg/logger"
	"github.com/thammystudio/studio-crm/pkg/pg"
)

const usage = `usage: cli [--env=<file>] <command> [args]

commands:
  migrate [--dir=<dir>] <up|down|status|redo|reset|version|create NAME sql>
  score   --name=<name> --phone=<phone> [--email=..] [--service=..] [--notes=..] [--source=..]
  sweep   report the reminder backlog once`

func main() {
	global := flag.NewFlagSet("cli", flag.ExitOnError)
	envPath := global.String("env", ".env", "dotenv file")
	global.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	_ = global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "migrate":
		err = runMigrate(*envPath, args[1:])
	case "score":
		err = runScore(args[1:])
	case "sweep":
		err = runSweep(*envPath)
	default:
		global.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", args[0], "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func loadConfig(envPath string) error {
	return config.Load(config.EnvPathFromArgs(nil, envPath))
}

func runMigrate(envPath string, args []string) error {
	if err := loadConfig(envPath); err != nil {
		return err
	}
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dir := fs.String("dir", config.Get().MigrationsDir, "migrations directory")
	_ = fs.Parse(args)

	command, rest := "up", []string(nil)
	if fs.NArg() > 0 {
		command, rest = fs.Arg(0), fs.Args()[1:]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	logger.Info("running migrations", "command", command, "dir", *dir)
	return pg.Migrate(ctx, config.Get().PostgresWrite(), *dir, command, rest...)
}

// runScore prints how a contact-form submission would be scored, without
// touching the database.
func runScore(args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	var in model.LeadInput
	var source string
	fs.StringVar(&in.Name, "name", "", "customer name")
	fs.StringVar(&in.Phone, "phone", "", "customer phone")
	fs.StringVar(&in.Email, "email", "", "customer e-mail")
	fs.StringVar(&in.ServiceInterest, "service", "", "service slug")
	fs.StringVar(&in.Notes, "notes", "", "free-text notes")
	fs.StringVar(&source, "source", string(model.LeadSourceWebsite), "lead source")
	_ = fs.Parse(args)
	in.Source = model.LeadSource(source)

	out := struct {
		Score       int                `json:"score"`
		Priority    model.LeadPriority `json:"priority"`
		ValidPhone  bool               `json:"valid_phone"`
		PhoneFormat string             `json:"formatted_phone"`
		Warnings    []string           `json:"warnings,omitempty"`
	}{
		Score:       lead.Score(in),
		Priority:    lead.Priority(in),
		ValidPhone:  lead.ValidatePhone(in.Phone),
		PhoneFormat: lead.FormatPhone(in.Phone),
		Warnings:    lead.Warnings(in),
	}
	if !model.LeadSource(source).Valid() {
		out.Warnings = append(out.Warnings, fmt.Sprintf("unknown source %q", source))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runSweep(envPath string) error {
	if err := loadConfig(envPath); err != nil {
		return err
	}
	cfg := config.Get()

	db, err := pg.CreateReadWrite(cfg.PostgresRead(), cfg.PostgresWrite(), false)
	if err != nil {
		return err
	}
	defer db.Close()

	s := scheduler.NewReminderSweeper(repository.NewReminderRepository(db), nil, scheduler.SweepConfig{
		UpcomingHours: cfg.ReminderUpcomingHours,
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := s.Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("open=%d overdue=%d upcoming(%dh)=%d\n", res.Open, res.Overdue, cfg.ReminderUpcomingHours, res.Upcoming)
	if res.Oldest != nil {
		fmt.Printf("oldest overdue: %s (%s) due %s\n", res.Oldest.CustomerName, lead.FormatPhone(res.Oldest.CustomerPhone), res.Oldest.ScheduledAt.Format(time.RFC3339))
	}
	return nil
}
