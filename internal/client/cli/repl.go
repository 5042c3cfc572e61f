package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/usermgr/internal/client/models"
	"github.com/dmitrijs2005/usermgr/internal/client/nav"
	"github.com/dmitrijs2005/usermgr/internal/client/workflow"
)

// errQuit ends the REPL.
var errQuit = errors.New("quit")

// runREPL reads commands until exit, quit, end of input or cancellation of
// ctx. A command read after ctx was cancelled is not run. After every
// command pending navigation is settled and the current screen rendered.
//
// Commands
//
//	Everywhere:
//	  - help             show the commands of the current screen
//	  - go <route>       open a route, e.g. "go /users"
//	  - exit | quit      leave the program
//
//	/ (landing):
//	  - enter            continue to the list or to sign-in
//
//	/signin:
//	  - signin | login   ask for email and password and sign in
//
//	/users:
//	  - refresh          reload the list
//	  - create           open the create form and fill it in
//	  - close            close the create form
//	  - edit <id>        open the edit form of a user
//	  - delete <id>      delete a user after confirmation
//	  - logout | sair    end the session
//
//	/users/<id>:
//	  - save             fill in the form and save it
//	  - reload           load the user again
//	  - cancel           back to the list
func runREPL(ctx context.Context, a *App) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(a.out, "usermgr %s> ", a.status(ctx))
		line, err := readLine(a.reader)
		if ctxErr := ctx.Err(); ctxErr != nil {
			fmt.Fprintln(a.out)
			return ctxErr
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		err = a.execute(ctx, parts[0], parts[1:])
		if errors.Is(err, errQuit) {
			fmt.Fprintln(a.out, "Bye!")
			return nil
		}
		if err != nil {
			a.report(ctx, err)
		}

		a.settle(ctx)
		a.render()
	}
}

func (a *App) execute(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "exit", "quit":
		return errQuit
	case "help":
		fmt.Fprintln(a.out, a.help())
		return nil
	case "go":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "Usage: go <route>")
			return nil
		}
		to, ok := nav.Parse(args[0])
		if !ok {
			fmt.Fprintln(a.out, "Unknown route:", args[0])
			return nil
		}
		a.Navigate(to)
		return nil
	}

	switch {
	case a.route == nav.Home:
		return a.homeCommand(ctx, cmd)
	case a.signIn != nil:
		return a.signInCommand(ctx, cmd)
	case a.list != nil:
		return a.listCommand(ctx, cmd, args)
	case a.edit != nil:
		return a.editCommand(ctx, cmd)
	}
	return a.unknown(cmd)
}

func (a *App) unknown(cmd string) error {
	fmt.Fprintln(a.out, "Unknown command:", cmd)
	return nil
}

func (a *App) help() string {
	common := "help, go <route>, exit"
	switch {
	case a.route == nav.Home:
		return "Available commands: enter, " + common
	case a.signIn != nil:
		return "Available commands: signin, " + common
	case a.list != nil:
		if a.list.State().IsAdmin() {
			return "Available commands: refresh, create, close, edit <id>, delete <id>, logout, " + common
		}
		return "Available commands: refresh, logout, " + common
	case a.edit != nil:
		return "Available commands: save, reload, cancel, " + common
	}
	return "Available commands: " + common
}

func (a *App) homeCommand(ctx context.Context, cmd string) error {
	switch cmd {
	case "enter", "entrar":
		_, err := workflow.Landing(ctx, a.store, a)
		return err
	}
	return a.unknown(cmd)
}

func (a *App) signInCommand(ctx context.Context, cmd string) error {
	switch cmd {
	case "signin", "login", "entrar":
		email, err := GetSimpleText(a.reader, "Email", a.out)
		if err != nil {
			return err
		}
		password, err := GetPassword(a.reader, a.inFd, "Senha", a.out)
		if err != nil {
			return err
		}
		a.signIn.SetEmail(email)
		a.signIn.SetPassword(password)
		return a.signIn.Submit(ctx)
	}
	return a.unknown(cmd)
}

func (a *App) listCommand(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "refresh":
		return a.list.Refresh(ctx)

	case "logout", "sair":
		return a.list.Logout(ctx)

	case "create":
		m, err := a.list.OpenModal()
		if err != nil {
			return err
		}
		if err := a.fillCreate(m); err != nil {
			return err
		}
		return m.Submit(ctx)

	case "close":
		a.list.CloseModal()
		return nil

	case "edit", "delete":
		if len(args) != 1 {
			fmt.Fprintf(a.out, "Usage: %s <id>\n", cmd)
			return nil
		}
		id := models.UserID(args[0])
		if cmd == "delete" {
			return a.list.Delete(ctx, id)
		}
		if !a.list.State().IsAdmin() {
			return workflow.ErrAdminOnly
		}
		a.Navigate(nav.UserRoute(id))
		return nil
	}
	return a.unknown(cmd)
}

func (a *App) fillCreate(m *workflow.CreateUser) error {
	st := m.State()

	name, err := GetWithDefault(a.reader, "Nome", st.Name, a.out)
	if err != nil {
		return err
	}
	email, err := GetWithDefault(a.reader, "Email", st.Email, a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.inFd, "Senha", a.out)
	if err != nil {
		return err
	}
	if password == "" {
		password = st.Password
	}
	typ, err := GetWithDefault(a.reader, "Tipo (regular/admin)", string(st.Type), a.out)
	if err != nil {
		return err
	}

	if name != st.Name {
		m.SetName(name)
	}
	if email != st.Email {
		m.SetEmail(email)
	}
	if password != st.Password {
		m.SetPassword(password)
	}
	if t := models.UserType(typ); t != st.Type {
		m.SetType(t)
	}
	return nil
}

func (a *App) editCommand(ctx context.Context, cmd string) error {
	switch cmd {
	case "save":
		if a.edit.State().Phase != workflow.EditReady {
			return workflow.ErrNotEditable
		}
		if err := a.fillEdit(a.edit); err != nil {
			return err
		}
		return a.edit.Submit(ctx)

	case "reload":
		return a.edit.Load(ctx)

	case "cancel", "cancelar":
		a.edit.Cancel()
		return nil
	}
	return a.unknown(cmd)
}

func (a *App) fillEdit(w *workflow.EditUser) error {
	st := w.State()

	name, err := GetWithDefault(a.reader, "Nome", st.Name, a.out)
	if err != nil {
		return err
	}
	email, err := GetWithDefault(a.reader, "Email", st.Email, a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, a.inFd, "Nova Senha ("+workflow.PasswordHint+")", a.out)
	if err != nil {
		return err
	}
	typ, err := GetWithDefault(a.reader, "Tipo (regular/admin)", string(st.Type), a.out)
	if err != nil {
		return err
	}

	if name != st.Name {
		w.SetName(name)
	}
	if email != st.Email {
		w.SetEmail(email)
	}
	if password != st.NewPassword {
		w.SetNewPassword(password)
	}
	if t := models.UserType(typ); t != st.Type {
		w.SetType(t)
	}
	return nil
}
