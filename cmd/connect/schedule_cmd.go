// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/connectapp/connect/internal/history"
	"github.com/connectapp/connect/internal/presenca"
	"github.com/connectapp/connect/internal/schedule"
)

func (c *cli) runSchedule(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("connect schedule", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	tipo := fs.String("tipo", schedule.AllTypes, "activity type filter")
	query := fs.String("q", "", "search title, description and speakers")
	id := fs.String("id", "", "show a single activity")
	types := fs.Bool("types", false, "list the available activity types")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	a, done, code := c.openApp(ctx)
	if a == nil {
		return code
	}
	defer done()
	client := a.schedule()

	if *id != "" {
		act := client.ActivityByID(ctx, *id)
		if act == nil {
			fmt.Fprintln(c.stderr, "Atividade não encontrada")
			return 1
		}
		c.printActivity(*act)
		return 0
	}

	list, err := client.Fetch(ctx, *tipo)
	if err != nil {
		fmt.Fprintf(c.stderr, "Erro ao carregar programação: %v\n", err)
		return 1
	}
	if *types {
		for _, t := range schedule.Types(list) {
			fmt.Fprintln(c.stdout, t)
		}
		return 0
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tINÍCIO\tTIPO\tTÍTULO\tLOCAL")
	for _, act := range schedule.Filter(list, *tipo, *query) {
		start := "-"
		if t, ok := act.Start(); ok {
			start = t.Format("02/01 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", act.ID, start, act.Type, act.Title, act.Location)
	}
	_ = tw.Flush()
	return 0
}

func (c *cli) printActivity(act schedule.Activity) {
	fmt.Fprintf(c.stdout, "%s [%s]\n", act.Title, act.Type)
	fmt.Fprintf(c.stdout, "Local: %s\n", act.Location)
	for _, s := range act.Slots {
		fmt.Fprintf(c.stdout, "Horário: %s - %s\n", s.Start, s.End)
	}
	if len(act.Speakers) > 0 {
		names := make([]string, 0, len(act.Speakers))
		for _, s := range act.Speakers {
			names = append(names, s.Name)
		}
		fmt.Fprintf(c.stdout, "Palestrantes: %s\n", strings.Join(names, ", "))
	}
	if act.Description != "" {
		fmt.Fprintln(c.stdout, act.Description)
	}
}

func (c *cli) runHistory(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("connect history", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	refresh := fs.Bool("refresh", false, "ignore the local copy and fetch now")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	a, done, code := c.openApp(ctx)
	if a == nil {
		return code
	}
	defer done()

	id, ok := a.provider.CurrentParticipantID()
	if !ok {
		fmt.Fprintln(c.stderr, presenca.MsgUnauthenticated)
		return 1
	}
	svc, err := a.history()
	if err != nil {
		return c.fail(err)
	}

	var res history.Result
	if *refresh {
		res, err = svc.Refresh(ctx, id)
	} else {
		res, err = svc.Records(ctx, id)
	}
	if err != nil {
		var pe *presenca.Error
		if errors.As(err, &pe) && pe.Message != "" {
			fmt.Fprintf(c.stderr, "Erro: %s\n", pe.Message)
			return 1
		}
		return c.fail(err)
	}
	if res.Stale {
		fmt.Fprintln(c.stderr, "Sem conexão: exibindo presenças salvas")
	}
	if len(res.Records) == 0 {
		fmt.Fprintln(c.stdout, "Nenhuma presença registrada")
		return 0
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PALESTRA\tREGISTRADA EM")
	for _, r := range res.Records {
		at := r.RegisteredAt
		if at == "" {
			at = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\n", r.PalestraID, at)
	}
	_ = tw.Flush()
	return 0
}
