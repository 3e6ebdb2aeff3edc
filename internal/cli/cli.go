// Package cli implements the todoctl operator commands over the shared storage.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"todo-notes/internal/app"
	"todo-notes/internal/domain"
	"todo-notes/internal/service"
	"todo-notes/internal/storage"
)

var ErrUsage = errors.New("usage")

// readTerminalPassword is swapped in tests to avoid touching a real terminal.
var readTerminalPassword = term.ReadPassword

const usage = `usage: todoctl <command> [args]

commands:
  signup <username> <email>   create an account and sign in
  login <email|username>      sign in
  logout                      end the current session
  whoami                      show the signed-in account
  users                       list registered accounts
  clear-users                 delete every account
  seed <file>                 register accounts from a JSON seed file
  theme [light|dark|toggle]   show or change the theme
  keys                        list storage keys`

type Runner struct {
	App *app.App
	In  *bufio.Reader
	Out io.Writer
	// tty is the descriptor of In when it is a terminal, otherwise -1.
	tty int
}

func NewRunner(a *app.App, in io.Reader, out io.Writer) *Runner {
	tty := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		tty = int(f.Fd())
	}
	return &Runner{App: a, In: bufio.NewReader(in), Out: out, tty: tty}
}

// password prompts on Out and reads without echo from a terminal, or reads a
// plain line when In is a pipe or file.
func (r *Runner) password(prompt string) (string, error) {
	fmt.Fprint(r.Out, prompt)
	if r.tty < 0 {
		pw, err := readLine(r.In)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return pw, nil
	}
	pw, err := readTerminalPassword(r.tty)
	fmt.Fprintln(r.Out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(r.Out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "signup":
		return r.signup(ctx, rest)
	case "login":
		return r.login(ctx, rest)
	case "logout":
		if err := r.App.Sessions.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(r.Out, "signed out")
		return nil
	case "whoami":
		return r.whoami()
	case "users":
		return r.users(ctx)
	case "clear-users":
		if err := r.App.Users.ClearUsers(ctx); err != nil {
			return err
		}
		fmt.Fprintln(r.Out, "all accounts removed")
		return nil
	case "seed":
		if len(rest) != 1 {
			return fmt.Errorf("%w: seed <file>", ErrUsage)
		}
		seeds, err := app.LoadSeedFile(rest[0])
		if err != nil {
			return err
		}
		n, err := r.App.Users.SeedUsers(ctx, seeds)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.Out, "seeded %d accounts\n", n)
		return nil
	case "theme":
		return r.theme(ctx, rest)
	case "keys":
		return r.keys(ctx)
	case "help", "-h", "--help":
		fmt.Fprintln(r.Out, usage)
		return nil
	default:
		fmt.Fprintln(r.Out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (r *Runner) signup(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: signup <username> <email>", ErrUsage)
	}
	pw, err := r.password("Password: ")
	if err != nil {
		return err
	}
	confirm, err := r.password("Confirm password: ")
	if err != nil {
		return err
	}

	res := r.App.Sessions.Signup(ctx, service.SignupInput{
		Username:        args[0],
		Email:           args[1],
		Password:        pw,
		ConfirmPassword: confirm,
	})
	return r.report(res)
}

func (r *Runner) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: login <email|username>", ErrUsage)
	}
	pw, err := r.password("Password: ")
	if err != nil {
		return err
	}
	return r.report(r.App.Sessions.Login(ctx, args[0], pw))
}

func (r *Runner) report(res service.Result) error {
	if !res.Success {
		return errors.New(res.Message)
	}
	fmt.Fprintln(r.Out, res.Message)
	return nil
}

func (r *Runner) whoami() error {
	user := r.App.Sessions.Current()
	if user == nil {
		fmt.Fprintln(r.Out, "not signed in")
		return nil
	}
	fmt.Fprintln(r.Out, describe(*user))
	return nil
}

func (r *Runner) users(ctx context.Context) error {
	users := r.App.Users.ListUsers(ctx)
	if len(users) == 0 {
		fmt.Fprintln(r.Out, "no accounts")
		return nil
	}
	for _, u := range users {
		fmt.Fprintln(r.Out, describe(u))
	}
	return nil
}

func (r *Runner) theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(r.Out, r.App.Themes.Theme(ctx))
		return nil
	}
	if args[0] == "toggle" {
		next, err := r.App.Themes.Toggle(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.Out, next)
		return nil
	}
	if err := r.App.Themes.SetTheme(ctx, domain.Theme(args[0])); err != nil {
		return err
	}
	fmt.Fprintln(r.Out, args[0])
	return nil
}

func (r *Runner) keys(ctx context.Context) error {
	lister, ok := r.App.Store.(storage.Lister)
	if !ok {
		return fmt.Errorf("storage driver %q cannot list keys", r.App.Config.Storage.Driver)
	}
	keys, err := lister.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(r.Out, k)
	}
	return nil
}

func describe(u domain.User) string {
	state := "legacy"
	if u.Versioned() {
		state = u.Credential.Algorithm
	}
	line := fmt.Sprintf("%s\t%s", u.ID, u.Username)
	if u.Email != "" {
		line += "\t" + u.Email
	}
	if u.Credential != nil || u.LegacyPassword != "" {
		line += "\t" + state
	}
	return line
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
