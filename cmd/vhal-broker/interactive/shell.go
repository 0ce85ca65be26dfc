// Package interactive provides the vhal-broker command shell. The shell
// registers itself as a broker client and prints everything delivered to it.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chzyer/readline"

	"github.com/carprop/vhal-go/pkg/broker"
	"github.com/carprop/vhal-go/pkg/bulk"
	"github.com/carprop/vhal-go/pkg/hardware"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

// syncWriter serializes writes from sink callbacks and the command loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Shell is an interactive broker client.
type Shell struct {
	broker *broker.Broker
	names  Names
	fake   *hardware.Fake // nil unless the fake backend is in use
	out    io.Writer
	rl     *readline.Instance

	id     vehicle.ClientID
	nextID atomic.Int64
}

// New creates a shell on the terminal and registers it with b. fake may be
// nil, which disables the inject command.
func New(b *broker.Broker, names Names, fake *hardware.Fake) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "vhal> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	s, err := newShell(b, names, fake, rl.Stdout())
	if err != nil {
		rl.Close()
		return nil, err
	}
	s.rl = rl
	return s, nil
}

func newShell(b *broker.Broker, names Names, fake *hardware.Fake, out io.Writer) (*Shell, error) {
	s := &Shell{
		broker: b,
		names:  names,
		fake:   fake,
		out:    &syncWriter{w: out},
	}
	id, err := b.RegisterClient(s)
	if err != nil {
		return nil, fmt.Errorf("failed to register shell client: %w", err)
	}
	s.id = id
	return s, nil
}

// Stdout returns a writer that coordinates with the prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// ClientID returns the shell's broker client id.
func (s *Shell) ClientID() vehicle.ClientID {
	return s.id
}

// Run reads commands until quit, EOF or ctx is done, then calls cancel.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()
	defer cancel()

	s.printHelp()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return
		}
		if !s.Execute(ctx, line) {
			return
		}
	}
}

// Execute runs one command line. It returns false when the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "get", "g":
		s.cmdGet(ctx, args)
	case "set", "s":
		s.cmdSet(ctx, args)
	case "sub":
		s.cmdSub(ctx, args)
	case "unsub":
		s.cmdUnsub(ctx, args)
	case "subs":
		s.cmdSubs()
	case "inject":
		s.cmdInject(args)
	case "configs", "c":
		s.cmdConfigs(args)
	case "pending", "status":
		s.cmdStatus()
	case "timeout":
		s.cmdTimeout(args)
	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return false
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Vehicle Property Broker Commands:
  Values:
    get <prop> [area]            - Read a property
    set <prop> <area> <v...>     - Write a property
    inject <prop> <area> <v...>  - Push a value from the simulated hardware

  Subscriptions:
    sub <prop> [rate] [areas...] - Subscribe (rate in Hz, 0 = on change)
    unsub <prop>                 - Unsubscribe
    subs                         - List this shell's subscriptions

  Broker:
    configs [prop]               - Show property configurations
    status                       - Show clients, pending requests and timers
    timeout [duration]           - Show or set the request timeout

  General:
    help                         - Show this help
    quit                         - Exit

  Properties can be given by catalog name or id, e.g. HVAC_FAN_SPEED or 0x15400500.`)
}

func (s *Shell) requestID() int64 {
	return s.nextID.Add(1)
}

func (s *Shell) cmdGet(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: get <prop> [area]")
		return
	}
	prop, err := parseProperty(s.names, args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	var area int32
	if len(args) > 1 {
		if area, err = parseArea(args[1]); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
	}

	req := vehicle.GetValueRequest{
		RequestID: s.requestID(),
		Prop:      vehicle.PropertyValue{Property: prop, AreaID: area},
	}
	if err := s.broker.GetValues(ctx, s.id, bulk.Inline(req)); err != nil {
		fmt.Fprintf(s.out, "get rejected: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "get #%d sent\n", req.RequestID)
}

func (s *Shell) cmdSet(ctx context.Context, args []string) {
	if len(args) < 3 {
		fmt.Fprintln(s.out, "Usage: set <prop> <area> <v...>")
		return
	}
	value, err := s.parsePropertyValue(args)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	req := vehicle.SetValueRequest{RequestID: s.requestID(), Value: value}
	if err := s.broker.SetValues(ctx, s.id, bulk.Inline(req)); err != nil {
		fmt.Fprintf(s.out, "set rejected: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "set #%d sent\n", req.RequestID)
}

func (s *Shell) cmdInject(args []string) {
	if s.fake == nil {
		fmt.Fprintln(s.out, "inject is only available with the fake hardware backend")
		return
	}
	if len(args) < 3 {
		fmt.Fprintln(s.out, "Usage: inject <prop> <area> <v...>")
		return
	}
	value, err := s.parsePropertyValue(args)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	s.fake.InjectEvent(value)
	fmt.Fprintf(s.out, "injected %s = %s\n", s.keyName(value.Key()), value.Value)
}

// parsePropertyValue parses "<prop> <area> <v...>".
func (s *Shell) parsePropertyValue(args []string) (vehicle.PropertyValue, error) {
	prop, err := parseProperty(s.names, args[0])
	if err != nil {
		return vehicle.PropertyValue{}, err
	}
	area, err := parseArea(args[1])
	if err != nil {
		return vehicle.PropertyValue{}, err
	}
	raw, err := parseValue(prop.Type(), args[2:])
	if err != nil {
		return vehicle.PropertyValue{}, err
	}
	return vehicle.PropertyValue{Property: prop, AreaID: area, Value: raw}, nil
}

func (s *Shell) cmdSub(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: sub <prop> [rate] [areas...]")
		return
	}
	prop, err := parseProperty(s.names, args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	opts := vehicle.SubscribeOptions{Property: prop}
	if len(args) > 1 {
		rate, err := strconv.ParseFloat(args[1], 32)
		if err != nil {
			fmt.Fprintf(s.out, "Error: invalid rate %q\n", args[1])
			return
		}
		opts.SampleRate = float32(rate)
	}
	for _, a := range args[min(2, len(args)):] {
		area, err := parseArea(a)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
		opts.AreaIDs = append(opts.AreaIDs, area)
	}

	if err := s.broker.Subscribe(ctx, s.id, []vehicle.SubscribeOptions{opts}); err != nil {
		fmt.Fprintf(s.out, "subscribe rejected: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "subscribed to %s\n", s.names.Name(prop))
}

func (s *Shell) cmdUnsub(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: unsub <prop>")
		return
	}
	prop, err := parseProperty(s.names, args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if err := s.broker.Unsubscribe(ctx, s.id, []vehicle.PropertyID{prop}); err != nil {
		fmt.Fprintf(s.out, "unsubscribe rejected: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "unsubscribed from %s\n", s.names.Name(prop))
}

func (s *Shell) cmdSubs() {
	subs := s.broker.Subscriptions(s.id)
	if len(subs) == 0 {
		fmt.Fprintln(s.out, "No subscriptions")
		return
	}
	sort.Slice(subs, func(i, j int) bool { return uint32(subs[i].Property) < uint32(subs[j].Property) })
	for _, sub := range subs {
		mode := "on change"
		if sub.SampleRate > 0 {
			mode = fmt.Sprintf("%gHz", sub.SampleRate)
		}
		areas := "all areas"
		if len(sub.AreaIDs) > 0 {
			areas = fmt.Sprintf("areas %v", sub.AreaIDs)
		}
		fmt.Fprintf(s.out, "  %-24s %-10s %s\n", s.names.Name(sub.Property), mode, areas)
	}
}

func (s *Shell) cmdConfigs(args []string) {
	var batch bulk.Batch[vehicle.PropertyConfig]
	var err error
	if len(args) > 0 {
		props := make([]vehicle.PropertyID, 0, len(args))
		for _, a := range args {
			p, perr := parseProperty(s.names, a)
			if perr != nil {
				fmt.Fprintf(s.out, "Error: %v\n", perr)
				return
			}
			props = append(props, p)
		}
		batch, err = s.broker.PropertyConfigs(props)
	} else {
		batch, err = s.broker.AllPropertyConfigs()
	}
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	configs, err := bulk.Unpack(batch)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	for _, c := range configs {
		fmt.Fprintf(s.out, "%s (%s)\n", s.names.Name(c.Property), c.Property)
		fmt.Fprintf(s.out, "    type %s, access %s, %s\n", c.Property.Type(), c.Access, c.ChangeMode)
		if c.ChangeMode == vehicle.ChangeModeContinuous {
			fmt.Fprintf(s.out, "    sample rate %g..%gHz\n", c.MinSampleRate, c.MaxSampleRate)
		}
		if !c.IsGlobal() {
			fmt.Fprintf(s.out, "    areas %v\n", c.AreaIDs())
		}
	}
}

func (s *Shell) cmdStatus() {
	fmt.Fprintln(s.out, "\nBroker Status")
	fmt.Fprintln(s.out, "-------------------------------------------")
	fmt.Fprintf(s.out, "  Client ID:        %s\n", s.id)
	fmt.Fprintf(s.out, "  Clients:          %d\n", s.broker.ClientCount())
	fmt.Fprintf(s.out, "  Pending requests: %d\n", s.broker.CountPending())
	fmt.Fprintf(s.out, "  Subscriptions:    %d\n", s.broker.SubscriptionCount())
	fmt.Fprintf(s.out, "  Sampling timers:  %d\n", s.broker.SamplerCount())
	fmt.Fprintf(s.out, "  Request timeout:  %s\n", s.broker.Timeout())
}

func (s *Shell) cmdTimeout(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(s.out, "Request timeout: %s\n", s.broker.Timeout())
		return
	}
	d, err := time.ParseDuration(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: invalid duration %q\n", args[0])
		return
	}
	if err := s.broker.SetTimeout(d); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Request timeout set to %s\n", d)
}

func (s *Shell) keyName(k vehicle.Key) string {
	return fmt.Sprintf("%s/%d", s.names.Name(k.Property), k.AreaID)
}
