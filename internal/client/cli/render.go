package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/usermgr/internal/client/nav"
	"github.com/dmitrijs2005/usermgr/internal/client/workflow"
)

// render prints the mounted screen.
func (a *App) render() {
	switch {
	case a.route == nav.Home:
		renderHome(a.out)
	case a.signIn != nil:
		renderSignIn(a.out, a.signIn.State())
	case a.list != nil:
		renderList(a.out, a.list.State())
		if m := a.list.Modal(); m != nil {
			renderCreate(a.out, m.State())
		}
	case a.edit != nil:
		renderEdit(a.out, a.edit.State())
	}
}

func renderHome(w io.Writer) {
	fmt.Fprintf(w, "== %s ==\n[%s]\n", workflow.LandingTitle, workflow.LandingAction)
}

func renderSignIn(w io.Writer, s workflow.SignInState) {
	fmt.Fprintln(w, "== Entrar ==")
	if s.Error != "" {
		fmt.Fprintf(w, "! %s\n", s.Error)
	}
	if s.Submitting {
		fmt.Fprintln(w, "Signing in...")
	}
}

func renderList(w io.Writer, s workflow.UserListState) {
	if s.LoadingOnly() {
		fmt.Fprintln(w, workflow.MsgLoadingUsers)
		return
	}

	actions := make([]string, 0, len(s.HeaderActions()))
	for _, act := range s.HeaderActions() {
		actions = append(actions, "["+act+"]")
	}
	fmt.Fprintf(w, "== %s ==  %s\n", workflow.ListTitle, strings.Join(actions, " "))

	if s.Error != "" {
		fmt.Fprintf(w, "! %s\n", s.Error)
	}
	if !s.ShowTable() {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(s.Columns(), "\t"))
	for _, r := range s.Rows() {
		last := r.Message
		if len(r.Actions) > 0 {
			last = strings.Join(r.Actions, " | ")
		}
		fmt.Fprintln(tw, strings.Join(append(append([]string(nil), r.Cells...), last), "\t"))
	}
	_ = tw.Flush()
}

func renderCreate(w io.Writer, s workflow.CreateUserState) {
	fmt.Fprintf(w, "-- %s -- (close)\n", workflow.CreateTitle)
	if s.Error != "" {
		fmt.Fprintf(w, "! %s\n", s.Error)
	}
	fmt.Fprintf(w, "  Nome:  %s\n", s.Name)
	fmt.Fprintf(w, "  Email: %s\n", s.Email)
	fmt.Fprintf(w, "  Senha: %s\n", strings.Repeat("*", len(s.Password)))
	fmt.Fprintf(w, "  Tipo:  %s\n", s.Type)

	fields := make([]string, 0, len(s.FieldErrors))
	for f := range s.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(w, "  ! %s: %s\n", f, s.FieldErrors[f])
	}
	fmt.Fprintf(w, "  [%s]\n", s.SubmitLabel())
}

func renderEdit(w io.Writer, s workflow.EditUserState) {
	if s.Phase != workflow.EditReady {
		fmt.Fprintln(w, s.Notice())
		return
	}

	fmt.Fprintf(w, "== %s ==\n", workflow.EditTitle)
	if s.Error != "" {
		fmt.Fprintf(w, "! %s\n", s.Error)
	}
	pw := "(" + workflow.PasswordHint + ")"
	if s.NewPassword != "" {
		pw = strings.Repeat("*", len(s.NewPassword))
	}
	fmt.Fprintf(w, "  Nome:       %s\n", s.Name)
	fmt.Fprintf(w, "  Email:      %s\n", s.Email)
	fmt.Fprintf(w, "  Nova Senha: %s\n", pw)
	fmt.Fprintf(w, "  Tipo:       %s\n", s.Type)
	fmt.Fprintf(w, "  [%s] [%s]\n", workflow.LabelSave, workflow.LabelCancel)
}
