// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/connectapp/connect/internal/auth"
)

func (c *cli) openApp(ctx context.Context) (*app, func(), int) {
	cfg, _, err := c.loadConfig()
	if err != nil {
		return nil, nil, c.fail(err)
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return nil, nil, c.fail(err)
	}
	return a, func() { _ = a.Close(context.WithoutCancel(ctx)) }, 0
}

func (c *cli) runLogin(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("connect login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	email := fs.String("email", "", "account email")
	senha := fs.String("senha", "", "account password")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	a, done, code := c.openApp(ctx)
	if a == nil {
		return code
	}
	defer done()

	res, err := a.authClient().Login(ctx, auth.Credentials{Email: *email, Senha: *senha})
	if err != nil {
		fmt.Fprintf(c.stderr, "Erro: %s\n", auth.UserMessage(err))
		return 1
	}
	if err := a.provider.SetUser(ctx, res.User, res.Token); err != nil {
		return c.fail(err)
	}
	if res.Message != "" {
		fmt.Fprintln(c.stdout, res.Message)
	}
	id, _ := a.provider.Current()
	fmt.Fprintf(c.stdout, "Bem-vindo, %s (participante %s)\n", id.Name, id.ID)
	return 0
}

func (c *cli) runRegister(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("connect register", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	email := fs.String("email", "", "account email")
	senha := fs.String("senha", "", "account password (at least 6 characters)")
	confirm := fs.String("confirmar-senha", "", "repeat the password")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	a, done, code := c.openApp(ctx)
	if a == nil {
		return code
	}
	defer done()

	msg, err := a.authClient().Register(ctx, auth.Registration{Email: *email, Senha: *senha, ConfirmSenha: *confirm})
	if err != nil {
		fmt.Fprintf(c.stderr, "Erro: %s\n", auth.UserMessage(err))
		return 1
	}
	fmt.Fprintln(c.stdout, msg)
	return 0
}

func (c *cli) runLogout(ctx context.Context, _ []string) int {
	a, done, code := c.openApp(ctx)
	if a == nil {
		return code
	}
	defer done()

	id, ok := a.provider.Current()
	if err := a.provider.Logout(ctx); err != nil {
		return c.fail(err)
	}
	if ok {
		if svc, err := a.history(); err == nil {
			_ = svc.Forget(ctx, id.ID)
		}
	}
	fmt.Fprintln(c.stdout, "Sessão encerrada")
	return 0
}

func (c *cli) runWhoami(ctx context.Context, _ []string) int {
	a, done, code := c.openApp(ctx)
	if a == nil {
		return code
	}
	defer done()

	id, ok := a.provider.Current()
	if !ok {
		fmt.Fprintln(c.stderr, "Nenhum participante conectado")
		return 1
	}
	fmt.Fprintf(c.stdout, "%s <%s> (participante %s)\n", id.Name, id.Email, id.ID)
	return 0
}
