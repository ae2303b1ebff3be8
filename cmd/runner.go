package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/justmusik/jmk/internal/player"
	"github.com/justmusik/jmk/internal/repositories"
	"github.com/justmusik/jmk/internal/services"
	"github.com/justmusik/jmk/internal/session"
	"github.com/justmusik/jmk/internal/shared"
	"github.com/justmusik/jmk/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	client     *services.Client
	session    *session.Store
	songs      *services.SongService
	favorites  *services.FavoritesService
	cache      *repositories.SongCacheRepository
	player     *player.Controller
	engine     *tasks.Engine
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Client     *services.Client
	Session    *session.Store
	Songs      *services.SongService
	Favorites  *services.FavoritesService
	Cache      *repositories.SongCacheRepository
	Player     *player.Controller
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		client:     opts.Client,
		session:    opts.Session,
		songs:      opts.Songs,
		favorites:  opts.Favorites,
		cache:      opts.Cache,
		player:     opts.Player,
		engine:     tasks.NewEngine(opts.Songs, opts.Logger),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

// SetLogger swaps the runner's logger, used by the TUI to redirect to a file.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, songsCommand, favoritesCommand, adminCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireSession guards commands that need an authenticated user.
func (r *Runner) requireSession() error {
	if !r.session.Authenticated() {
		return fmt.Errorf("%w: run 'jmk auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

// requireAdmin locally gates admin commands on the restored session's roles.
// The server enforces authorization regardless; this just fails fast with a
// clear message.
func (r *Runner) requireAdmin() error {
	if err := r.requireSession(); err != nil {
		return err
	}
	if !r.session.Current().IsAdmin() {
		return fmt.Errorf("%w: %s is not an admin", shared.ErrForbidden, r.session.Current().Username)
	}
	return nil
}

// confirm prompts on the runner's input and accepts y/yes (case-insensitive).
func (r *Runner) confirm(prompt string) bool {
	r.writePlain("%s [y/N]: ", prompt)
	var answer string
	if _, err := fmt.Fscanln(r.input, &answer); err != nil {
		return false
	}
	return answer == "y" || answer == "Y" || answer == "yes" || answer == "Yes"
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
