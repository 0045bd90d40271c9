package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"leadcall_backend/internal/callqueue"
	callstransport "leadcall_backend/internal/calls/transport"
	"leadcall_backend/internal/callsession"
	"leadcall_backend/internal/telephony/twilio"
	"leadcall_backend/platform/config"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/validator"

	"github.com/google/uuid"
)

// CallLogger records call outcomes.
type CallLogger interface {
	Create(ctx context.Context, req callstransport.CreateCallRequest) (callstransport.CreateCallResponse, error)
}

type console struct {
	out   io.Writer
	lines <-chan string
}

func newConsole(in io.Reader, out io.Writer) *console {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- strings.TrimSpace(sc.Text())
		}
	}()
	return &console{out: out, lines: lines}
}

// ask prints prompt and waits for one line. Closed input yields io.EOF.
func (c *console) ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

type dialer struct {
	ctrl  *callsession.Controller // nil: numbers are dialed by hand
	calls CallLogger
	val   *validator.Validator
	queue *callqueue.Queue
	con   *console
	log   *logger.Logger
}

type callResult struct {
	placed   bool
	duration int
	sid      string
}

func runDialer(ctx context.Context, args []string, cfg *config.Config, log *logger.Logger, val *validator.Validator, queue *callqueue.Queue, calls CallLogger) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	phone := fs.String("phone", os.Getenv("DIALER_OPERATOR_PHONE"), "operator phone rung first and bridged to each lead")
	poll := fs.Duration("poll", twilio.DefaultPollInterval, "call status poll interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if queue.Len() == 0 {
		fmt.Println("call queue is empty; fill it with: dialer queue")
		return nil
	}

	d := &dialer{calls: calls, val: val, queue: queue, con: newConsole(os.Stdin, os.Stdout), log: log}

	client := twilio.NewClient(cfg, log)
	ctrl := callsession.New(
		twilio.Capability{Client: client, OperatorNumber: *phone, PollInterval: *poll},
		twilio.TokenSource{Client: client},
		cfg.GetAdminUsername(),
		log,
	)
	for _, n := range ctrl.Start(ctx) {
		d.notify(n)
	}
	if ctrl.CanDial() {
		d.ctrl = ctrl
		defer func() { _ = ctrl.Close(context.WithoutCancel(ctx)) }()
	} else {
		fmt.Fprintf(d.con.out, "telephony %s; numbers are shown for manual dialing\n", ctrl.State())
	}

	return d.loop(ctx)
}

func (d *dialer) loop(ctx context.Context) error {
	out := d.con.out
	for {
		entry, ok := d.queue.Current()
		if !ok {
			fmt.Fprintln(out, "call queue is empty")
			return nil
		}
		d.describe(entry)

		answer, err := d.con.ask(ctx, "[enter] call  [s]kip  [b]ack  [r]emove  [q]uit: ")
		if err != nil {
			return quiet(err)
		}
		switch strings.ToLower(answer) {
		case "":
		case "q":
			return nil
		case "s":
			if !d.queue.Next() {
				fmt.Fprintln(out, "end of queue")
				return nil
			}
			continue
		case "b":
			d.queue.Previous()
			continue
		case "r":
			if err := d.queue.Remove(ctx, entry.ID); err != nil {
				return err
			}
			continue
		default:
			fmt.Fprintln(out, "unknown choice")
			continue
		}

		res, err := d.call(ctx, entry)
		if err != nil {
			return quiet(err)
		}
		if err := d.logOutcome(ctx, entry, res); err != nil {
			return quiet(err)
		}
		if !d.queue.Next() {
			fmt.Fprintln(out, "end of queue")
			return nil
		}
	}
}

func (d *dialer) describe(e callqueue.Entry) {
	out := d.con.out
	fmt.Fprintf(out, "\n[%d/%d] %s\n", d.queue.Index()+1, d.queue.Len(), e.CompanyName)
	if e.ContactName != nil {
		contact := *e.ContactName
		if e.Salutation != nil {
			contact = *e.Salutation + " " + contact
		}
		fmt.Fprintf(out, "  contact:  %s\n", contact)
	}
	fmt.Fprintf(out, "  phone:    %s\n", e.Phone)
	if e.Industry != nil {
		fmt.Fprintf(out, "  industry: %s\n", *e.Industry)
	}
	if e.City != nil {
		fmt.Fprintf(out, "  city:     %s\n", *e.City)
	}
	fmt.Fprintf(out, "  status:   %s (%d attempts)\n", e.Status, e.CallAttempts)
	if e.Notes != nil && *e.Notes != "" {
		fmt.Fprintf(out, "  notes:    %s\n", *e.Notes)
	}
}

// call dials the entry and blocks until the call ends or the operator presses enter.
func (d *dialer) call(ctx context.Context, e callqueue.Entry) (callResult, error) {
	out := d.con.out
	if d.ctrl == nil {
		fmt.Fprintf(out, "dial manually: %s\n", e.Phone)
		_, err := d.con.ask(ctx, "press enter when the call is over: ")
		return callResult{}, err
	}

	for _, n := range d.ctrl.Dial(ctx, e.Phone) {
		d.notify(n)
	}
	call := d.ctrl.Call()
	if call == nil {
		return callResult{}, nil
	}

	res := callResult{placed: true, sid: call.SID()}
	fmt.Fprintln(out, "calling... press enter to hang up")

	callCtx, hangUp := context.WithCancel(ctx)
	defer hangUp()
	done := make(chan struct{})
	go func() {
		select {
		case <-d.con.lines:
			hangUp()
		case <-done:
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	_ = callsession.Drive(callCtx, d.ctrl, call.Events(), ticker.C, func(n callsession.Notification) {
		if n.Kind == callsession.CallEnded {
			res.duration = n.Duration
		}
		d.notify(n)
	})
	close(done)

	return res, ctx.Err()
}

func (d *dialer) logOutcome(ctx context.Context, e callqueue.Entry, res callResult) error {
	out := d.con.out
	for {
		answer, err := d.con.ask(ctx, "outcome [r]eached [n]ot reached [v]oicemail, [enter] skips logging: ")
		if err != nil {
			return err
		}
		if answer == "" {
			return nil
		}
		outcome, ok := parseOutcome(answer)
		if !ok {
			fmt.Fprintln(out, "unknown outcome")
			continue
		}

		status, err := d.con.ask(ctx, "new status (new, contacted, interested, not_interested, booked; enter keeps it): ")
		if err != nil {
			return err
		}
		note, err := d.con.ask(ctx, "note (optional): ")
		if err != nil {
			return err
		}

		req := buildCallRequest(e.ID, outcome, res, status, note)
		if err := d.val.Struct(req); err != nil {
			fmt.Fprintln(out, "invalid input:", strings.Join(validator.Messages(err), "; "))
			continue
		}

		resp, err := d.calls.Create(ctx, req)
		if err != nil {
			d.log.Error("failed to log call", "leadId", e.ID, "error", err)
			fmt.Fprintln(out, "call could not be logged; try again or press enter to skip")
			continue
		}
		if !resp.LeadUpdated {
			fmt.Fprintln(out, "call logged, but the lead could not be updated:", resp.LeadUpdateError)
			return nil
		}
		fmt.Fprintf(out, "logged %s\n", resp.Outcome)
		return nil
	}
}

func (d *dialer) notify(n callsession.Notification) {
	out := d.con.out
	switch n.Kind {
	case callsession.Progress:
		fmt.Fprintf(out, "\r  %s", formatDuration(n.Duration))
	case callsession.CallStarted:
		fmt.Fprintln(out, "connected")
	case callsession.Ringing:
		fmt.Fprintln(out, "ringing...")
	case callsession.CallEnded:
		fmt.Fprintf(out, "\ncall ended after %s\n", formatDuration(n.Duration))
	default:
		fmt.Fprintf(out, "%s: %s\n", n.Kind, n.Message)
	}
}

func buildCallRequest(leadID uuid.UUID, outcome string, res callResult, status, note string) callstransport.CreateCallRequest {
	req := callstransport.CreateCallRequest{LeadID: leadID, Outcome: outcome}
	if res.placed {
		duration := res.duration
		req.DurationSeconds = &duration
	}
	if res.sid != "" {
		sid := res.sid
		req.ExternalSID = &sid
	}
	if status = strings.TrimSpace(status); status != "" {
		req.UpdateStatus = true
		req.Status = &status
	}
	if note = strings.TrimSpace(note); note != "" {
		req.Note = &note
	}
	return req
}

func parseOutcome(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "reached":
		return callstransport.OutcomeReached, true
	case "n", "not reached", "not_reached":
		return callstransport.OutcomeNotReached, true
	case "v", "voicemail":
		return callstransport.OutcomeVoicemail, true
	}
	return "", false
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func quiet(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
