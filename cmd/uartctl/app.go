package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/uartctl/internal/config"
	"github.com/danmuck/uartctl/internal/payload"
	"github.com/danmuck/uartctl/internal/protocol"
	"github.com/danmuck/uartctl/internal/server"
	"github.com/danmuck/uartctl/internal/session"
	"github.com/danmuck/uartctl/internal/transport"
)

// ErrNavigateExit signals caller-intent to exit the interactive client.
var ErrNavigateExit = errors.New("navigate exit")

// App hosts interactive state for one operator session. Port enumeration
// and opening are injectable so menu flow is testable without hardware.
type App struct {
	reader    *bufio.Reader
	cfg       config.Config
	prefsPath string
	prefs     prefsFile

	sess     *session.Session
	producer payload.Producer

	listPorts func() ([]string, error)
	openPort  func(name string, cfg transport.Config) (transport.Transport, error)
	now       func() time.Time

	clearScreen bool
}

func NewApp(cfg config.Config, prefsPath string, sess *session.Session, producer payload.Producer) *App {
	return &App{
		reader:    bufio.NewReader(os.Stdin),
		cfg:       cfg,
		prefsPath: prefsPath,
		sess:      sess,
		producer:  producer,
		listPorts: transport.ListPorts,
		openPort: func(name string, cfg transport.Config) (transport.Transport, error) {
			return transport.OpenSerial(name, cfg)
		},
		now: time.Now,
	}
}

// Run drives port selection, then the test menu, then teardown. The
// serial handle is released exactly once, on every exit path.
func (a *App) Run() error {
	if err := a.loadPrefs(); err != nil {
		return err
	}
	a.printBanner()
	a.startStatusServer()

	for {
		port, err := a.selectPort()
		if err != nil {
			if errors.Is(err, ErrNavigateExit) {
				fmt.Println("Exiting program.")
				return a.exit()
			}
			return a.exitWith(err)
		}
		if err := a.connect(port); err != nil {
			color.Yellow("Could not open port. Try a different port.")
			continue
		}
		break
	}

	if err := a.runTestMenu(); err != nil && !errors.Is(err, ErrNavigateExit) {
		return a.exitWith(err)
	}
	fmt.Println("Exiting program.")
	return a.exit()
}

// exit saves preferences and releases the transport; it is the single
// teardown path.
func (a *App) exit() error {
	if err := a.savePrefs(); err != nil {
		log.Warn().Err(err).Msg("save prefs on exit failed")
	}
	if err := a.sess.Close(); err != nil {
		return err
	}
	color.Cyan("Connection closed.")
	return nil
}

func (a *App) exitWith(err error) error {
	if closeErr := a.exit(); closeErr != nil {
		log.Warn().Err(closeErr).Msg("teardown failed")
	}
	return err
}

func (a *App) printBanner() {
	fmt.Println("=====================================")
	fmt.Println("uartctl - UART framing conformance tool")
	fmt.Printf("Date: %s\n", a.now().Format("2006-01-02 15:04:05"))
	fmt.Println("=====================================")
}

func (a *App) startStatusServer() {
	if a.cfg.Status.Addr == "" {
		return
	}
	srv := server.New(a.cfg.Status.Addr, func() string {
		return a.sess.State().String()
	})
	log.Info().Str("addr", a.cfg.Status.Addr).Msg("status sidecar listening")
	go func() {
		if err := srv.Run(); err != nil {
			log.Error().Err(err).Msg("status sidecar stopped")
		}
	}()
}

// selectPort enumerates serial ports until the user picks one, refreshes,
// or quits.
func (a *App) selectPort() (string, error) {
	for {
		ports, err := a.listPorts()
		if err != nil && !errors.Is(err, transport.ErrNoPorts) {
			return "", err
		}

		fmt.Println()
		fmt.Println("=== Available COM ports ===")
		if len(ports) == 0 {
			fmt.Println("  (none detected)")
		}
		for i, port := range ports {
			marker := " "
			if port == a.prefs.LastPort {
				marker = "*"
			}
			fmt.Printf(" %s%d. %s\n", marker, i+1, port)
		}
		fmt.Println()
		fmt.Println("  0. Refresh list")
		fmt.Println("  q. Quit")

		// The last-port shortcut only applies while that port is still
		// enumerated; a stale name would be guaranteed to fail open.
		prompt := "Select a port number"
		hasLast := a.prefs.LastPort != "" && slices.Contains(ports, a.prefs.LastPort)
		if hasLast {
			prompt = fmt.Sprintf("Select a port number (enter = %s)", a.prefs.LastPort)
		}
		line, err := a.promptLine(prompt)
		if err != nil {
			return "", err
		}
		choice := strings.ToLower(strings.TrimSpace(line))
		switch {
		case choice == "q":
			return "", ErrNavigateExit
		case choice == "0":
			continue
		case choice == "" && hasLast:
			return a.prefs.LastPort, nil
		}
		idx, err := strconv.Atoi(choice)
		if err != nil {
			fmt.Println("Please enter a valid number.")
			continue
		}
		if idx < 1 || idx > len(ports) {
			fmt.Println("Invalid selection. Try again.")
			continue
		}
		return ports[idx-1], nil
	}
}

func (a *App) connect(port string) error {
	tr, err := a.openPort(port, transport.Config{
		BaudRate:    a.cfg.Serial.BaudRate,
		ReadTimeout: a.cfg.Serial.ReadTimeout(),
	})
	if err != nil {
		color.Red("Failed to open port %s: %v", port, err)
		return err
	}
	if err := a.sess.Connect(tr); err != nil {
		_ = tr.Close()
		return err
	}
	a.prefs.LastPort = port
	if err := a.savePrefs(); err != nil {
		log.Warn().Err(err).Msg("save prefs failed")
	}
	color.Green("Connected to %s at %d baud.", port, a.cfg.Serial.BaudRate)
	return nil
}

func (a *App) printTestMenu() {
	fmt.Println()
	fmt.Println("=== UART Test Menu ===")
	fmt.Println("  1) Start marker missing")
	fmt.Println("  2) End marker missing")
	fmt.Println("  3) Wrong length field")
	fmt.Println("  4) Wrong CRC")
	fmt.Println("  5) Payload length different from length field")
	fmt.Printf("  6) Payload length too high (~%d bytes)\n", a.cfg.Protocol.OversizeTarget)
	fmt.Println("  r) Send a VALID (control) message")
	fmt.Println("  p) Repeat last frame")
	fmt.Println("  q) Quit test menu")
}

// runTestMenu loops over fault and control sends until the user quits.
func (a *App) runTestMenu() error {
	for {
		a.printTestMenu()
		line, err := a.promptLine("Enter choice")
		if err != nil {
			return err
		}
		choice := strings.ToLower(strings.TrimSpace(line))
		a.clearIfEnabled()

		switch choice {
		case "q":
			return nil
		case "r":
			if err := a.sendControlFrame(); err != nil {
				log.Error().Err(err).Msg("control send failed")
			}
			continue
		case "p":
			if err := a.repeatLast(); err != nil {
				log.Error().Err(err).Msg("repeat send failed")
			}
			continue
		}

		variant, ok := variantForChoice(choice)
		if !ok {
			fmt.Println("Invalid choice.")
			continue
		}
		if err := a.sendFault(variant, choice); err != nil {
			log.Error().Err(err).Msg("fault send failed")
		}
	}
}

// sendControlFrame builds and sends one well-formed frame with user text.
func (a *App) sendControlFrame() error {
	text, err := a.promptLine("Enter text to send in a VALID frame (or enter for default)")
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = payload.ControlText(a.now())
	}
	body, err := a.producer.Build(text)
	if err != nil {
		return err
	}
	report, err := a.sess.SendFrame(body)
	if err != nil {
		if errors.Is(err, session.ErrPayloadTooLarge) {
			color.Red("Payload too large: %v", err)
			return nil
		}
		if errors.Is(err, session.ErrWriteFailed) {
			color.Red("Serial write error: %v", err)
			return nil
		}
		return err
	}
	fmt.Printf("Sent %d bytes. %s\n", report.Bytes, report.Label)
	return nil
}

// repeatLast re-sends the exact bytes of the previous send, valid or
// faulty.
func (a *App) repeatLast() error {
	report, err := a.sess.RepeatLast()
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNothingSent):
			fmt.Println("Nothing sent yet.")
			return nil
		case errors.Is(err, session.ErrWriteFailed):
			color.Red("Serial write error: %v", err)
			return nil
		}
		return err
	}
	fmt.Printf("Sent %d bytes. %s\n", report.Bytes, report.Label)
	return nil
}

// sendFault sends one malformed frame, then offers an exact repeat of the
// same bytes.
func (a *App) sendFault(v protocol.Variant, choice string) error {
	body, err := a.producer.Build(payload.TestText(choice, a.now()))
	if err != nil {
		return err
	}
	if v == protocol.VariantOversizedPayload {
		sub, err := a.promptLine("Use repeated payload (r) or filler (f)? [f]")
		if err != nil {
			return err
		}
		if strings.ToLower(strings.TrimSpace(sub)) != "r" {
			body = nil
		}
	}

	report, err := a.sess.SendFault(v, body)
	if err != nil {
		if errors.Is(err, session.ErrWriteFailed) {
			color.Red("Serial write error: %v", err)
		} else {
			return err
		}
	} else {
		fmt.Printf("Sent %d bytes. %s\n", report.Bytes, report.Label)
	}

	rep, err := a.promptLine("Send same test again? (y/N)")
	if err != nil {
		return err
	}
	if strings.ToLower(strings.TrimSpace(rep)) == "y" {
		report, err := a.sess.RepeatLast()
		if err != nil {
			if errors.Is(err, session.ErrWriteFailed) {
				color.Red("Serial write error: %v", err)
				return nil
			}
			return err
		}
		fmt.Printf("Sent %d bytes. %s\n", report.Bytes, report.Label)
	}
	return nil
}

// variantForChoice maps a menu digit to its fault variant.
func variantForChoice(choice string) (protocol.Variant, bool) {
	switch choice {
	case "1":
		return protocol.VariantMissingStart, true
	case "2":
		return protocol.VariantMissingEnd, true
	case "3":
		return protocol.VariantLengthMismatchRandom, true
	case "4":
		return protocol.VariantChecksumCorrupted, true
	case "5":
		return protocol.VariantLengthPayloadInconsistent, true
	case "6":
		return protocol.VariantOversizedPayload, true
	}
	return 0, false
}

func (a *App) promptLine(label string) (string, error) {
	if strings.TrimSpace(label) != "" {
		fmt.Printf("%s: ", label)
	}
	line, err := a.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) clearIfEnabled() {
	if !a.clearScreen {
		return
	}
	fmt.Print("\033[H\033[2J")
}
