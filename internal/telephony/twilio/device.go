package twilio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"leadcall_backend/internal/callsession"
)

// DefaultPollInterval is how often a REST call's status is fetched.
const DefaultPollInterval = time.Second

// Device places calls through the REST API. It rings the operator's own phone
// and, once answered, dials the lead from the configured caller ID.
type Device struct {
	client         *Client
	operatorNumber string
	pollInterval   time.Duration

	mu    sync.Mutex
	calls map[string]*restCall
}

// NewDevice creates a REST device bridging operatorNumber to every dialed lead.
func NewDevice(client *Client, operatorNumber string, pollInterval time.Duration) *Device {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Device{
		client:         client,
		operatorNumber: CleanNumber(operatorNumber),
		pollInterval:   pollInterval,
		calls:          make(map[string]*restCall),
	}
}

// Register checks the credentials against the account resource.
func (d *Device) Register(ctx context.Context) error {
	account, err := d.client.FetchAccount(ctx)
	if err != nil {
		return err
	}
	if account.Status != "" && account.Status != "active" {
		return fmt.Errorf("twilio account is %s", account.Status)
	}
	return nil
}

// Connect starts the bridge call and begins polling its status.
func (d *Device) Connect(ctx context.Context, to string) (callsession.Call, error) {
	twiml, err := d.client.VoiceResponse(to)
	if err != nil {
		return nil, err
	}
	res, err := d.client.CreateCall(ctx, d.operatorNumber, twiml)
	if err != nil {
		return nil, err
	}

	call := &restCall{
		client: d.client,
		sid:    res.SID,
		events: make(chan callsession.Event, 8),
		stop:   make(chan struct{}),
		done:   func() { d.forget(res.SID) },
	}

	d.mu.Lock()
	d.calls[res.SID] = call
	d.mu.Unlock()

	go call.poll(d.pollInterval, res.Status)
	return call, nil
}

// DisconnectAll hangs up every call placed by this device.
func (d *Device) DisconnectAll(ctx context.Context) error {
	d.mu.Lock()
	calls := make([]*restCall, 0, len(d.calls))
	for _, c := range d.calls {
		calls = append(calls, c)
	}
	d.mu.Unlock()

	var errs []error
	for _, c := range calls {
		if err := c.Disconnect(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Destroy hangs up everything. The device must not be used afterwards.
func (d *Device) Destroy(ctx context.Context) error {
	return d.DisconnectAll(ctx)
}

func (d *Device) forget(sid string) {
	d.mu.Lock()
	delete(d.calls, sid)
	d.mu.Unlock()
}

type restCall struct {
	client *Client
	sid    string
	events chan callsession.Event
	stop   chan struct{}
	once   sync.Once
	done   func()
}

func (c *restCall) SID() string { return c.sid }

func (c *restCall) Events() <-chan callsession.Event { return c.events }

func (c *restCall) Disconnect(ctx context.Context) error {
	c.halt()
	return c.client.HangUpCall(ctx, c.sid)
}

func (c *restCall) halt() {
	c.once.Do(func() { close(c.stop) })
}

// poll fetches the call status until it is terminal or the call is halted,
// translating each status change into at most one session event.
func (c *restCall) poll(interval time.Duration, initial string) {
	defer close(c.events)
	defer c.done()

	last := initial
	if ev, terminal, ok := statusEvent(initial); ok {
		if !c.emit(ev) || terminal {
			return
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
		}

		res, err := c.client.FetchCall(context.Background(), c.sid)
		if err != nil {
			c.emit(callsession.Event{Kind: callsession.EventErrored, Err: err})
			return
		}
		if res.Status == last {
			continue
		}
		last = res.Status

		ev, terminal, ok := statusEvent(res.Status)
		if !ok {
			continue
		}
		if !c.emit(ev) || terminal {
			return
		}
	}
}

func (c *restCall) emit(ev callsession.Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.stop:
		return false
	}
}

// statusEvent maps a REST call status onto a session event.
func statusEvent(status string) (ev callsession.Event, terminal, ok bool) {
	switch status {
	case StatusRinging:
		return callsession.Event{Kind: callsession.EventRinging}, false, true
	case StatusInProgress:
		return callsession.Event{Kind: callsession.EventAccepted}, false, true
	case StatusCompleted:
		return callsession.Event{Kind: callsession.EventDisconnected}, true, true
	case StatusBusy, StatusNoAnswer:
		return callsession.Event{Kind: callsession.EventRejected}, true, true
	case StatusCanceled:
		return callsession.Event{Kind: callsession.EventCancelled}, true, true
	case StatusFailed:
		return callsession.Event{Kind: callsession.EventErrored, Err: errors.New("call failed")}, true, true
	default:
		return callsession.Event{}, false, false
	}
}

// Capability provides REST calling to hosts without a browser, such as the dialer CLI.
type Capability struct {
	Client         *Client
	OperatorNumber string
	PollInterval   time.Duration
}

// Load fails when there is no operator number to ring.
func (c Capability) Load(context.Context) (callsession.DeviceFactory, error) {
	if CleanNumber(c.OperatorNumber) == "" {
		return nil, errors.New("operator phone number is required for REST calling")
	}
	return func(string) (callsession.Device, error) {
		return NewDevice(c.Client, c.OperatorNumber, c.PollInterval), nil
	}, nil
}

// TokenSource issues session tokens from the local client.
type TokenSource struct {
	Client *Client
}

// Token answers callsession.ErrNotConfigured when the REST credentials are
// missing. REST calling needs no access token, so one is only minted when
// the API key set is present.
func (t TokenSource) Token(_ context.Context, identity string) (string, error) {
	if !t.Client.RESTConfigured() {
		return "", callsession.ErrNotConfigured
	}
	if !t.Client.Configured() {
		return "", nil
	}
	return t.Client.AccessToken(identity)
}

var (
	_ callsession.Device      = (*Device)(nil)
	_ callsession.Call        = (*restCall)(nil)
	_ callsession.Capability  = Capability{}
	_ callsession.TokenSource = TokenSource{}
)
