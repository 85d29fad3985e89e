// Command taskdesk is a thin front end over the task repository: it adds,
// lists, toggles, and deletes tasks and projects, and prints aggregate
// statistics. All state lives in the configured backing store.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/taskdesk/taskdesk/internal/config"
	"github.com/taskdesk/taskdesk/internal/kv"
	"github.com/taskdesk/taskdesk/internal/model"
	"github.com/taskdesk/taskdesk/internal/query"
	"github.com/taskdesk/taskdesk/internal/store"
)

const usage = `usage: taskdesk [flags] <command> [args]

commands:
  add <title>       create a task
  list              list tasks (filter/sort flags)
  toggle <id>       flip a task's completion
  rm <id>           delete a task
  clear             remove all completed tasks
  projects          list projects
  project-add <name>  create a project
  project-rm <id>   delete a project (tasks move to the default project)
  stats             print task statistics
`

func main() {
	cfg := parseFlags()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	backing, err := openStore(cfg.App)
	if err != nil {
		slog.Error("could not open storage", "err", err)
		os.Exit(1)
	}

	repo := store.New(backing, store.WithDefaultProjectName(cfg.App.DefaultProject))
	defer repo.Close()

	if err := run(repo, cfg.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return kv.NewSQLiteStore(cfg.Storage.Path)
	case config.BackendFile:
		return kv.NewFileStore(cfg.Storage.Path)
	case config.BackendMemory:
		return kv.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func run(repo *store.Repository, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "add":
		return cmdAdd(repo, args[1:])
	case "list":
		return cmdList(repo, args[1:])
	case "toggle":
		return cmdToggle(repo, args[1:])
	case "rm":
		return cmdRemove(repo, args[1:])
	case "clear":
		n, err := repo.ClearCompletedTasks()
		if err != nil {
			return err
		}
		fmt.Printf("removed %d completed task(s)\n", n)
		return nil
	case "projects":
		return cmdProjects(repo)
	case "project-add":
		return cmdProjectAdd(repo, args[1:])
	case "project-rm":
		return cmdProjectRemove(repo, args[1:])
	case "stats":
		return cmdStats(repo, args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func cmdAdd(repo *store.Repository, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	desc := fs.String("desc", "", "Description.")
	priority := fs.String("priority", "", "Priority (low | medium | high).")
	project := fs.String("project", "", "Project id.")
	due := fs.String("due", "", "Due date (YYYY-MM-DD).")
	tags := fs.String("tags", "", "Comma-separated tags.")
	fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("add: title required")
	}

	in := model.TaskInput{
		Title:       strings.Join(fs.Args(), " "),
		Description: *desc,
		Priority:    *priority,
		ProjectID:   *project,
		Tags:        splitTags(*tags),
	}
	if *due != "" {
		d, err := time.ParseInLocation("2006-01-02", *due, time.Local)
		if err != nil {
			return fmt.Errorf("add: bad due date %q: %w", *due, err)
		}
		in.DueDate = &d
	}

	t, err := repo.CreateTask(in)
	if err != nil {
		return err
	}
	fmt.Printf("created %s  %s\n", t.ID, t.Title)
	return nil
}

func cmdList(repo *store.Repository, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	q := fs.String("q", "", "Search title, description, and tags.")
	status := fs.String("status", "", "Status filter (todo | in_progress | completed).")
	priority := fs.String("priority", "", "Priority filter (low | medium | high).")
	project := fs.String("project", "", "Project id filter.")
	due := fs.String("due", "", "Due bucket (today | tomorrow | thisWeek | nextWeek | overdue | noDueDate).")
	tags := fs.String("tags", "", "Comma-separated tags (matches any).")
	hideDone := fs.Bool("hide-completed", false, "Hide completed tasks.")
	sortBy := fs.String("sort", query.SortCreatedDate, "Sort key (createdDate | updatedDate | dueDate | title | priority | status).")
	desc := fs.Bool("desc", false, "Sort descending.")
	fs.Parse(args)

	f := query.Filter{
		Query:         *q,
		Status:        *status,
		Priority:      *priority,
		ProjectID:     *project,
		Due:           *due,
		Tags:          splitTags(*tags),
		HideCompleted: *hideDone,
	}
	s := query.Sort{Key: *sortBy, Descending: *desc}

	for _, t := range query.Apply(repo.Tasks(), f, s, time.Now()) {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %-8s %-11s %s", mark, t.Priority, t.Status, t.Title)
		if t.DueDate != nil {
			line += "  (due " + t.DueDate.Format("2006-01-02") + ")"
		}
		if len(t.Tags) > 0 {
			line += "  #" + strings.Join(t.Tags, " #")
		}
		fmt.Println(t.ID + "  " + line)
	}
	return nil
}

func cmdToggle(repo *store.Repository, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("toggle: task id required")
	}
	t, err := repo.ToggleTask(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s is now %s\n", t.Title, t.Status)
	return nil
}

func cmdRemove(repo *store.Repository, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("rm: task id required")
	}
	removed, err := repo.DeleteTask(args[0])
	if err != nil {
		return err
	}
	if !removed {
		fmt.Println("no such task")
	}
	return nil
}

func cmdProjects(repo *store.Repository) error {
	for _, p := range repo.Projects() {
		mark := " "
		if p.IsDefault {
			mark = "*"
		}
		fmt.Printf("%s %s  %-10s %s\n", mark, p.ID, p.Color, p.Name)
	}
	return nil
}

func cmdProjectAdd(repo *store.Repository, args []string) error {
	fs := flag.NewFlagSet("project-add", flag.ExitOnError)
	desc := fs.String("desc", "", "Description.")
	color := fs.String("color", "", "Color from the palette.")
	fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("project-add: name required")
	}
	p, err := repo.CreateProject(model.ProjectInput{
		Name:        strings.Join(fs.Args(), " "),
		Description: *desc,
		Color:       *color,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created %s  %s\n", p.ID, p.Name)
	return nil
}

func cmdProjectRemove(repo *store.Repository, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("project-rm: project id required")
	}
	return repo.DeleteProject(args[0])
}

func cmdStats(repo *store.Repository, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	project := fs.String("project", "", "Scope to one project id.")
	fs.Parse(args)

	s := repo.TaskStats(*project)
	fmt.Printf("total: %d\ncompleted: %d\npending: %d\noverdue: %d\nhigh priority: %d\n",
		s.Total, s.Completed, s.Pending, s.Overdue, s.HighPriority)
	return nil
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
