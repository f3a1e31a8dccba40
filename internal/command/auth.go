package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
)

const (
	paramName     = "name"
	paramEmail    = "email"
	paramPassword = "password"
)

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     paramEmail,
			Aliases:  []string{"e"},
			EnvVars:  []string{"TASKBOARD_EMAIL"},
			Required: true,
		},
		&cli.StringFlag{
			Name:     paramPassword,
			Aliases:  []string{"p"},
			EnvVars:  []string{"TASKBOARD_PASSWORD"},
			Required: true,
		},
	}
}

func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account and sign in",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: paramName, Aliases: []string{"n"}, Required: true},
		}, credentialFlags()...),
		Action: func(ctx *cli.Context) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			res, err := c.Register(ctx.Context, ctx.String(paramName), ctx.String(paramEmail), ctx.String(paramPassword))
			if err != nil {
				return err
			}
			if err := writeToken(ctx.String(paramSessionFile), res.Token); err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "Welcome, %s. You are signed in.\n", res.User.Name)
			return nil
		},
	}
}

func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and remember the session",
		Flags: credentialFlags(),
		Action: func(ctx *cli.Context) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			res, err := c.Login(ctx.Context, ctx.String(paramEmail), ctx.String(paramPassword))
			if err != nil {
				return err
			}
			if err := writeToken(ctx.String(paramSessionFile), res.Token); err != nil {
				return err
			}
			fmt.Fprintf(ctx.App.Writer, "Signed in as %s until %s.\n", res.User.Email, res.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
}

func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Revoke the session and forget the token",
		Action: func(ctx *cli.Context) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			if !c.Session().Authenticated() {
				return errors.New("not signed in")
			}
			if err := c.Logout(ctx.Context); err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, "Signed out.")
			return nil
		},
	}
}
